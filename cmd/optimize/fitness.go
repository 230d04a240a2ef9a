package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/sim"
	"github.com/pthm-cable/fanflow/systems"
)

// Targets are the performance levels a candidate must reach.
type Targets struct {
	AirChanges       float64 // Minimum ACH
	CoverageFraction float64 // Minimum share of the floor inside the coverage area
}

// Fitness weights.
const (
	shortfallWeight = 10.0 // Per squared relative shortfall of a target
	airflowWeight   = 0.5  // Per unit of mean speed over the base speed
)

// Breakdown is the scored result of one candidate.
type Breakdown struct {
	Fitness  float64
	Metrics  systems.Metrics
	Coverage float64 // Floor share covered, capped at 1
	Airflow  float64 // Mean simulated speed over the base speed, 0 when not simulated
}

// FitnessEvaluator scores fan operating points (lower = better).
type FitnessEvaluator struct {
	params     *ParamVector
	targets    Targets
	frames     int
	seeds      []int64
	baseConfig *config.Config

	mu   sync.Mutex
	last Breakdown
}

// NewFitnessEvaluator creates an evaluator. With frames > 0 every candidate is
// also simulated once per seed and rewarded for stronger circulation.
func NewFitnessEvaluator(params *ParamVector, targets Targets, frames int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		targets:    targets,
		frames:     frames,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastBreakdown returns the breakdown of the most recent evaluation.
func (fe *FitnessEvaluator) LastBreakdown() Breakdown {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Config returns a copy of the base configuration with x applied.
func (fe *FitnessEvaluator) Config(x []float64) *config.Config {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	return cfg
}

// Evaluate computes fitness for raw parameter values.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.Config(x)

	var airflow float64
	if fe.frames > 0 && len(fe.seeds) > 0 {
		airflow = fe.simulate(cfg)
	}

	b := fe.score(cfg, airflow)
	fe.mu.Lock()
	fe.last = b
	fe.mu.Unlock()
	return b.Fitness
}

// score combines energy, target shortfalls and the airflow reward.
func (fe *FitnessEvaluator) score(cfg *config.Config, airflow float64) Breakdown {
	m := systems.ComputeMetrics(systems.MetricsInputFor(cfg.Room, cfg.Fan))

	floor := cfg.Room.Length * cfg.Room.Width
	coverage := 0.0
	if floor > 0 {
		coverage = min(m.CoverageArea/floor, 1)
	}

	fitness := m.EnergyUsage
	fitness += shortfallWeight * shortfall(m.AirChanges, fe.targets.AirChanges)
	fitness += shortfallWeight * shortfall(coverage, fe.targets.CoverageFraction)
	fitness -= airflowWeight * airflow

	return Breakdown{Fitness: fitness, Metrics: m, Coverage: coverage, Airflow: airflow}
}

// shortfall is the squared relative miss of value below target.
func shortfall(value, target float64) float64 {
	if target <= 0 || value >= target {
		return 0
	}
	d := (target - value) / target
	return d * d
}

// simulate runs cfg headless for each seed in parallel and returns the mean
// particle speed at the end of the run over the base speed.
func (fe *FitnessEvaluator) simulate(cfg *config.Config) float64 {
	cfg.Telemetry.StatsWindow = fe.frames

	speeds := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()
			speeds[idx] = runSimulation(cfg, seed, fe.frames)
		}(i, seed)
	}
	wg.Wait()

	var sum float64
	for _, s := range speeds {
		sum += s
	}
	mean := sum / float64(len(speeds))
	if cfg.Motion.BaseSpeed <= 0 || math.IsNaN(mean) {
		return 0
	}
	return mean / cfg.Motion.BaseSpeed
}

// runSimulation steps one seeded simulation for frames frames and returns the
// mean speed of the final telemetry window.
func runSimulation(cfg *config.Config, seed int64, frames int) float64 {
	s, err := sim.NewSimulation(cfg, sim.Options{Seed: seed})
	if err != nil {
		return 0
	}
	defer s.Close()

	for s.Frame() < frames {
		if !s.Step() {
			break
		}
	}
	if stats := s.LastStats(); stats != nil {
		return stats.SpeedMean
	}
	return 0
}
