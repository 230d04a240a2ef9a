package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fanflow/components"
	"github.com/pthm-cable/fanflow/config"
)

// Fan field coefficients (ft/frame at full influence).
const (
	influenceRadii   = 3.0  // Influence radius in fan radii
	intakePull       = 0.05 // Lateral pull toward the axis on the intake side
	intakeAxial      = 0.02 // Axial draw through the fan disc on the intake side
	dischargeAxial   = 0.15 // Axial jet on the discharge side
	dischargeSpread  = 0.1  // Lateral spread near the discharge surface
	spreadDistance   = 5.0  // ft from the discharge surface where spreading starts
	boundaryDamping  = 0.9  // Fraction of the normal component removed at the surface
	boundaryPush     = 0.08 // Tangential push inside the boundary layer
	buoyancyLift     = 0.01 // Upward bias in the lower half of the room
	buoyancySink     = 0.005
	turbulenceScale  = 0.04
	swirlScale       = 0.05
	swirlRangeRadii  = 1.5 // Swirl range in influence radii
	floorZoneHeight  = 1.0
	ceilingZoneDepth = 2.0
	wallZoneWidth    = 1.5 // ft
)

// PowerFactor scales fan-driven velocities relative to the baseline operating point.
func PowerFactor(fan config.FanConfig, motion config.MotionConfig) float64 {
	return (fan.RPM / motion.BaselineRPM) * (fan.CFM / motion.BaselineCFM)
}

// FlowField is the per-step snapshot of everything the motion rules read.
// Build one per configuration with NewFlowField; it is not mutated by Advance.
type FlowField struct {
	Room   config.RoomConfig
	Motion config.MotionConfig

	Center          r3.Vec
	Radius          float64
	InfluenceRadius float64
	PowerFactor     float64
	MaxSpeed        float64
	Direction       config.Direction
}

// NewFlowField derives a flow field from the room, fan and motion settings.
func NewFlowField(room config.RoomConfig, fan config.FanConfig, motion config.MotionConfig) FlowField {
	pf := PowerFactor(fan, motion)
	return FlowField{
		Room:            room,
		Motion:          motion,
		Center:          r3.Vec{X: fan.X, Y: fan.Y, Z: fan.Height},
		Radius:          fan.Radius(),
		InfluenceRadius: fan.Radius() * influenceRadii,
		PowerFactor:     pf,
		MaxSpeed:        motion.BaseSpeed * pf,
		Direction:       fan.Direction,
	}
}

// dischargeSide reports whether p is on the side of the fan the air is blown toward.
func (f *FlowField) dischargeSide(p r3.Vec) bool {
	if f.Direction == config.DirectionUp {
		return p.Z > f.Center.Z
	}
	return p.Z <= f.Center.Z
}

// fanInfluence is the primary circulation cell: air is drawn in laterally on
// the intake side and jetted along the axis then spread along the discharge surface.
func (f *FlowField) fanInfluence(p r3.Vec) r3.Vec {
	influence := falloff(r3.Norm(r3.Sub(p, f.Center)), f.InfluenceRadius)
	if influence <= 0 {
		return r3.Vec{}
	}

	sign := f.Direction.Sign()
	offset := horizontal(r3.Sub(p, f.Center))
	hd := r3.Norm(offset)
	outward := safeUnit(offset)

	if !f.dischargeSide(p) {
		acc := r3.Scale(-intakePull*influence, outward)
		if hd < f.Radius {
			acc.Z += sign * intakeAxial * influence
		}
		return acc
	}

	axial := falloff(hd, f.Radius)
	acc := r3.Vec{Z: sign * dischargeAxial * f.PowerFactor * axial * influence}

	surfaceDist := p.Z
	if f.Direction == config.DirectionUp {
		surfaceDist = f.Room.Height - p.Z
	}
	spread := falloff(surfaceDist, spreadDistance)
	return r3.Add(acc, r3.Scale(dischargeSpread*f.PowerFactor*spread*influence, outward))
}

// surface identifies the closest room surface.
type surface uint8

const (
	surfaceFloor surface = iota
	surfaceCeiling
	surfaceSideWall  // x = 0 or x = length
	surfaceFrontWall // y = 0 or y = width
)

// nearestSurface returns the closest surface and the distance to it.
// Ties resolve in floor, ceiling, side wall, front wall order.
func (f *FlowField) nearestSurface(p r3.Vec) (surface, float64) {
	best, dist := surfaceFloor, p.Z
	candidates := [...]struct {
		s surface
		d float64
	}{
		{surfaceCeiling, f.Room.Height - p.Z},
		{surfaceSideWall, p.X},
		{surfaceSideWall, f.Room.Length - p.X},
		{surfaceFrontWall, p.Y},
		{surfaceFrontWall, f.Room.Width - p.Y},
	}
	for _, c := range candidates {
		if c.d < dist {
			best, dist = c.s, c.d
		}
	}
	return best, dist
}

// boundaryLayer damps motion normal to the closest surface and steers it along
// the surface in the sense of the circulation cell.
func (f *FlowField) boundaryLayer(p, acc r3.Vec) r3.Vec {
	thickness := f.Motion.BoundaryThickness
	s, dist := f.nearestSurface(p)
	if thickness <= 0 || dist >= thickness {
		return acc
	}

	bf := 1 - dist/thickness
	damp := 1 - bf*boundaryDamping
	offset := horizontal(r3.Sub(p, f.Center))
	alongSurface := r3.Norm(offset) < f.InfluenceRadius

	switch s {
	case surfaceFloor, surfaceCeiling:
		acc.Z *= damp
		spreads := (s == surfaceFloor && f.Direction == config.DirectionDown) ||
			(s == surfaceCeiling && f.Direction == config.DirectionUp)
		if spreads && alongSurface {
			acc = r3.Add(acc, r3.Scale(boundaryPush*bf, safeUnit(offset)))
		}
	case surfaceSideWall:
		acc.X *= damp
		acc.Z -= f.Direction.Sign() * boundaryPush * bf
	case surfaceFrontWall:
		acc.Y *= damp
		acc.Z -= f.Direction.Sign() * boundaryPush * bf
	}
	return acc
}

// buoyancy models warm air rising from the lower half and settling from the upper half.
func (f *FlowField) buoyancy(p r3.Vec, part *components.Particle) r3.Vec {
	if p.Z < f.Room.Height/2 {
		return r3.Vec{Z: buoyancyLift * part.Thermal}
	}
	return r3.Vec{Z: -buoyancySink * part.Thermal}
}

func turbulence(part *components.Particle, rng *rand.Rand) r3.Vec {
	k := turbulenceScale * part.Turbulence
	return r3.Vec{
		X: (rng.Float64() - 0.5) * k,
		Y: (rng.Float64() - 0.5) * k,
		Z: (rng.Float64() - 0.5) * k,
	}
}

// swirl adds the tangential component of the rotating blades.
func (f *FlowField) swirl(p r3.Vec, part *components.Particle) r3.Vec {
	offset := horizontal(r3.Sub(p, f.Center))
	reach := f.InfluenceRadius * swirlRangeRadii
	hd := r3.Norm(offset)
	if hd >= reach {
		return r3.Vec{}
	}
	return r3.Scale(swirlScale*part.Vorticity*falloff(hd, reach), tangent(offset))
}

// clampSpeed rescales v so its length does not exceed limit.
func clampSpeed(v r3.Vec, limit float64) r3.Vec {
	speed := r3.Norm(v)
	if speed > limit && speed > normEpsilon {
		return r3.Scale(limit/speed, v)
	}
	return v
}

// Velocity computes the next velocity of a particle at pos moving with vel.
func (f *FlowField) Velocity(pos *components.Position, vel *components.Velocity, part *components.Particle, rng *rand.Rand) r3.Vec {
	p := posVec(pos)

	acc := f.fanInfluence(p)
	acc = f.boundaryLayer(p, acc)
	acc = r3.Add(acc, f.buoyancy(p, part))
	acc = r3.Add(acc, turbulence(part, rng))
	acc = r3.Add(acc, f.swirl(p, part))
	acc = r3.Add(acc, r3.Scale(f.Motion.Inertia, velVec(vel)))

	return clampSpeed(acc, f.MaxSpeed)
}

// Advance moves one particle forward by a frame and reports whether it was reset.
func (f *FlowField) Advance(pos *components.Position, vel *components.Velocity, part *components.Particle, rng *rand.Rand) bool {
	part.Age += f.Motion.AgeStep

	v := f.Velocity(pos, vel, part, rng)
	vel.X, vel.Y, vel.Z = v.X, v.Y, v.Z

	pos.X += vel.X
	pos.Y += vel.Y
	pos.Z += vel.Z

	escaped := !finite(pos.X) || !finite(pos.Y) || !finite(pos.Z)
	if !escaped {
		f.clampPosition(pos)
	}

	reset := escaped || part.Age > part.MaxAge || rng.Float64() < f.Motion.ResetChance
	if reset {
		f.Respawn(pos, vel, part, rng)
	}

	part.Zone = f.Classify(pos)
	return reset
}

// clampPosition keeps a particle at least EdgeMargin away from every surface.
func (f *FlowField) clampPosition(pos *components.Position) {
	m := f.Motion.EdgeMargin
	pos.X = clampFloat(pos.X, min(m, f.Room.Length/2), max(f.Room.Length-m, f.Room.Length/2))
	pos.Y = clampFloat(pos.Y, min(m, f.Room.Width/2), max(f.Room.Width-m, f.Room.Width/2))
	pos.Z = clampFloat(pos.Z, min(m, f.Room.Height/2), max(f.Room.Height-m, f.Room.Height/2))
}

// Classify assigns a display zone from position alone.
func (f *FlowField) Classify(pos *components.Position) components.Zone {
	p := posVec(pos)
	hd := r3.Norm(horizontal(r3.Sub(p, f.Center)))

	if hd < f.Radius && f.dischargeSide(p) {
		return components.ZoneUnderFan
	}
	if p.Z < floorZoneHeight {
		return components.ZoneFloor
	}
	if p.Z > f.Room.Height-ceilingZoneDepth {
		return components.ZoneCeiling
	}
	wallDist := min(p.X, f.Room.Length-p.X, p.Y, f.Room.Width-p.Y)
	if wallDist < wallZoneWidth {
		return components.ZoneWall
	}
	return components.ZoneOpen
}

// SpeedScale maps speed to a display scale in [0.5, 1.5].
func (f *FlowField) SpeedScale(vel components.Velocity) float64 {
	if f.MaxSpeed <= 0 {
		return 0.5
	}
	return 0.5 + clampFloat(Speed(vel)/f.MaxSpeed, 0, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
