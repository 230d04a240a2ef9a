// Package components defines ECS components for the airflow particles.
package components

// Zone identifies the behavioral region a particle currently occupies.
type Zone uint8

const (
	ZoneOpen     Zone = iota // Free room volume
	ZoneUnderFan             // Inside the fan column on the discharge side
	ZoneFloor                // Within a foot of the floor
	ZoneWall                 // Near a vertical wall
	ZoneCeiling              // Near the ceiling
	numZones
)

// NumZones is the number of distinct zones.
const NumZones = int(numZones)

var zoneNames = [...]string{"open", "under_fan", "floor", "wall", "ceiling"}

func (z Zone) String() string {
	if int(z) < len(zoneNames) {
		return zoneNames[z]
	}
	return "unknown"
}

// Position is a particle location in room coordinates (ft).
// X runs along the room length, Y along the width, Z is height above the floor.
type Position struct {
	X, Y, Z float64
}

// Velocity is a particle displacement per frame (ft/frame).
type Velocity struct {
	X, Y, Z float64
}

// Particle holds per-particle lifecycle state and randomized coefficients.
// Coefficients are drawn at spawn and stay fixed until the next reset.
type Particle struct {
	Age    float64 // Frames since (re)spawn, scaled by the age step
	MaxAge float64 // Age at which the particle resets, redrawn at each reset
	Zone   Zone

	Turbulence float64 // Random jitter scale
	Vorticity  float64 // Swirl scale
	Thermal    float64 // Buoyancy scale

	Resets int // Number of resets since the field was built
}
