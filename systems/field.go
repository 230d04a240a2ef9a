// Package systems provides the airflow particle field, its motion rules and
// the metrics calculator.
package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fanflow/components"
	"github.com/pthm-cable/fanflow/config"
)

// Field owns the particle population for one configuration.
// It is driven from a single frame loop and must not be stepped concurrently.
type Field struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Particle]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Particle]

	flow  FlowField
	count int
}

// NewField creates an empty field. Call Rebuild before stepping.
func NewField() *Field {
	world := ecs.NewWorld()
	return &Field{
		world:  world,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Particle](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Particle](world),
	}
}

// Rebuild discards every particle and seeds a new population for cfg.
// It returns the number of particles created.
func (f *Field) Rebuild(cfg *config.Config, rng *rand.Rand) int {
	f.clear()

	f.flow = NewFlowField(cfg.Room, cfg.Fan, cfg.Motion)

	n := cfg.Particles.Count()
	for i := 0; i < n; i++ {
		var (
			pos  components.Position
			vel  components.Velocity
			part components.Particle
		)
		f.flow.Spawn(PickSpawnKind(rng), &pos, &vel, &part, rng)
		f.mapper.NewEntity(&pos, &vel, &part)
	}
	f.count = n
	return n
}

// clear removes every particle entity from the world.
func (f *Field) clear() {
	f.world.RemoveEntities(f.filter.Batch(), nil)
	f.count = 0
}

// Step advances every particle by one frame and returns how many were reset.
func (f *Field) Step(rng *rand.Rand) int {
	resets := 0
	query := f.filter.Query()
	for query.Next() {
		pos, vel, part := query.Get()
		if f.flow.Advance(pos, vel, part, rng) {
			resets++
		}
	}
	return resets
}

// Each calls fn for every particle. fn must not retain the pointers.
func (f *Field) Each(fn func(pos *components.Position, vel *components.Velocity, part *components.Particle)) {
	query := f.filter.Query()
	for query.Next() {
		fn(query.Get())
	}
}

// ParticleView is the read-only per-particle output consumed by renderers.
type ParticleView struct {
	Position components.Position
	Velocity components.Velocity
	Scale    float64
	Zone     components.Zone
}

// Views appends the current particle states to dst and returns it.
func (f *Field) Views(dst []ParticleView) []ParticleView {
	dst = dst[:0]
	f.Each(func(pos *components.Position, vel *components.Velocity, part *components.Particle) {
		dst = append(dst, ParticleView{
			Position: *pos,
			Velocity: *vel,
			Scale:    f.flow.SpeedScale(*vel),
			Zone:     part.Zone,
		})
	})
	return dst
}

// Flow returns the flow field of the current configuration.
func (f *Field) Flow() *FlowField {
	return &f.flow
}

// Len returns the number of particles.
func (f *Field) Len() int {
	return f.count
}
