package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/fanflow/components"
)

// Initial distribution weights (cumulative).
const (
	spawnFanPool    = 0.3 // Fraction seeded around the fan
	spawnWallPool   = 0.6 // Cumulative fraction after the wall pool
	seedRadii       = 3.0 // Fan pool radius in fan radii
	stratumBand     = 3.0 // ft, floor and ceiling strata
	stratumFloor    = 0.4 // Cumulative probability of the floor stratum
	stratumMid      = 0.7 // Cumulative probability of the mid-room stratum
	initialAgeRange = 100.0
	respawnNearFan  = 0.7 // Fraction of resets placed inside the influence radius
)

// SpawnKind selects the placement pool for a new particle.
type SpawnKind uint8

const (
	SpawnFan SpawnKind = iota
	SpawnWall
	SpawnRoom
)

// PickSpawnKind draws a placement pool using the initial distribution weights.
func PickSpawnKind(rng *rand.Rand) SpawnKind {
	r := rng.Float64()
	switch {
	case r < spawnFanPool:
		return SpawnFan
	case r < spawnWallPool:
		return SpawnWall
	default:
		return SpawnRoom
	}
}

// Spawn initializes a particle for a freshly built field.
// Age is seeded randomly so the population does not reset in lockstep.
func (f *FlowField) Spawn(kind SpawnKind, pos *components.Position, vel *components.Velocity, part *components.Particle, rng *rand.Rand) {
	switch kind {
	case SpawnFan:
		f.placeNearFan(pos, rng)
	case SpawnWall:
		f.placeAtWall(pos, rng)
	default:
		f.placeInRoom(pos, rng)
	}
	f.clampPosition(pos)

	f.randomize(vel, part, rng)
	part.Age = rng.Float64() * initialAgeRange
	part.Resets = 0
	part.Zone = f.Classify(pos)
}

// Respawn resets a particle: age 0, new position, velocity and coefficients.
func (f *FlowField) Respawn(pos *components.Position, vel *components.Velocity, part *components.Particle, rng *rand.Rand) {
	if rng.Float64() < respawnNearFan {
		r := rng.Float64() * f.InfluenceRadius
		angle := rng.Float64() * 2 * math.Pi
		pos.X = f.Center.X + r*math.Cos(angle)
		pos.Y = f.Center.Y + r*math.Sin(angle)
		pos.Z = rng.Float64() * f.Room.Height
	} else {
		f.placeInRoom(pos, rng)
	}
	f.clampPosition(pos)

	f.randomize(vel, part, rng)
	part.Age = 0
	part.Resets++
}

// randomize assigns a small random velocity, fresh coefficients and a new reset age.
func (f *FlowField) randomize(vel *components.Velocity, part *components.Particle, rng *rand.Rand) {
	s := f.Motion.InitialSpeed
	vel.X = (rng.Float64()*2 - 1) * s
	vel.Y = (rng.Float64()*2 - 1) * s
	vel.Z = (rng.Float64()*2 - 1) * s

	part.Turbulence = rng.Float64() * f.Motion.TurbulenceIntensity
	part.Vorticity = rng.Float64() * f.Motion.VorticityFactor
	part.Thermal = rng.Float64() * f.Motion.ThermalGradient
	part.MaxAge = f.Motion.MinAge + rng.Float64()*(f.Motion.MaxAge-f.Motion.MinAge)
}

// placeNearFan seeds within the fan pool cylinder. Outside one fan radius the
// height is stratified toward the floor and ceiling where the circulation runs.
func (f *FlowField) placeNearFan(pos *components.Position, rng *rand.Rand) {
	d := rng.Float64() * f.Radius * seedRadii
	angle := rng.Float64() * 2 * math.Pi
	pos.X = f.Center.X + d*math.Cos(angle)
	pos.Y = f.Center.Y + d*math.Sin(angle)

	h := f.Room.Height
	if d < f.Radius {
		pos.Z = rng.Float64() * h
		return
	}

	band := min(stratumBand, h/3)
	switch p := rng.Float64(); {
	case p < stratumFloor:
		pos.Z = rng.Float64() * band
	case p < stratumMid:
		pos.Z = band + rng.Float64()*(h-2*band)
	default:
		pos.Z = h - band + rng.Float64()*band
	}
}

// placeAtWall seeds inside the band along one of the four walls.
func (f *FlowField) placeAtWall(pos *components.Position, rng *rand.Rand) {
	band := f.Motion.WallBand
	l, w := f.Room.Length, f.Room.Width

	switch rng.Intn(4) {
	case 0:
		pos.X = rng.Float64() * band
		pos.Y = rng.Float64() * w
	case 1:
		pos.X = l - rng.Float64()*band
		pos.Y = rng.Float64() * w
	case 2:
		pos.X = rng.Float64() * l
		pos.Y = rng.Float64() * band
	default:
		pos.X = rng.Float64() * l
		pos.Y = w - rng.Float64()*band
	}
	pos.Z = rng.Float64() * f.Room.Height
}

func (f *FlowField) placeInRoom(pos *components.Position, rng *rand.Rand) {
	pos.X = rng.Float64() * f.Room.Length
	pos.Y = rng.Float64() * f.Room.Width
	pos.Z = rng.Float64() * f.Room.Height
}
