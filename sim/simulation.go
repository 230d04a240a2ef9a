// Package sim drives an airflow session: edits, stepping and exports.
// It does not import raylib.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/systems"
	"github.com/pthm-cable/fanflow/telemetry"
)

// ErrOutputDisabled is returned by exports when no output directory is set.
var ErrOutputDisabled = errors.New("output directory not configured")

// bladeStep is the blade rotation in radians per frame at one revolution per second.
const bladeStep = 0.1

// BladeSpeed returns the blade rotation per frame in radians.
// Downward flow spins positive, upward flow negative.
func BladeSpeed(fan config.FanConfig) float64 {
	return fan.RPM / 60 * bladeStep * -fan.Direction.Sign()
}

// Simulation is the frame-loop context: it owns the configuration, the
// particle field and the telemetry for one session. It holds no graphics
// state and is driven by a single goroutine.
type Simulation struct {
	cfg      *config.Config
	defaults *config.Config
	rng      *rand.Rand

	field   *systems.Field
	metrics systems.Metrics
	views   []systems.ParticleView

	// State
	frame          int
	totalFrames    int // Survives rebuilds
	paused         bool
	bladeAngle     float64
	stepsPerUpdate int
	runID          uuid.UUID
	now            func() time.Time

	// Telemetry
	logStats      bool
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	lastStats     *telemetry.FlowStats
}

// NewSimulation creates a simulation for cfg and builds its first population.
// cfg is copied; later edits go through Apply.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}

	s := &Simulation{
		defaults:       cfg.Clone(),
		rng:            rand.New(rand.NewSource(opts.Seed)),
		field:          systems.NewField(),
		stepsPerUpdate: 1,
		runID:          uuid.New(),
		now:            time.Now,
		logStats:       opts.LogStats,
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		outputManager:  om,
	}
	s.SetStepsPerUpdate(opts.StepsPerUpdate)
	s.Rebuild(cfg)

	if err := om.WriteConfig(s.cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	slog.Info("simulation created",
		"run_id", s.runID.String(),
		"seed", opts.Seed,
		"output_dir", om.Dir(),
	)
	return s, nil
}

// Rebuild replaces the configuration and reseeds the particle field.
// The frame counter and telemetry window restart from zero.
func (s *Simulation) Rebuild(cfg *config.Config) {
	s.cfg = cfg.Clone()
	s.cfg.Clamp()

	n := s.field.Rebuild(s.cfg, s.rng)
	s.metrics = systems.ComputeMetrics(systems.MetricsInputFor(s.cfg.Room, s.cfg.Fan))
	s.views = s.field.Views(s.views)
	s.frame = 0
	s.collector = telemetry.NewCollector(s.cfg.Telemetry.StatsWindow)
	s.lastStats = nil

	slog.Info("field rebuilt",
		"density", string(s.cfg.Particles.Density),
		"particles", n,
		"model", s.cfg.Fan.Model,
		"direction", string(s.cfg.Fan.Direction),
		"metrics", s.metrics,
	)
}

// Apply edits a copy of the configuration and rebuilds with it.
// The current configuration is kept if the edited one is invalid.
func (s *Simulation) Apply(edit func(cfg *config.Config)) error {
	next := s.cfg.Clone()
	edit(next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.Rebuild(next)
	return nil
}

// ResetToDefaults restores the configuration the simulation started with.
func (s *Simulation) ResetToDefaults() {
	s.Rebuild(s.defaults)
}

// Step advances one frame. It does nothing while paused and reports whether
// a frame was simulated.
func (s *Simulation) Step() bool {
	if s.paused {
		return false
	}

	s.perfCollector.StartStep()

	s.perfCollector.StartPhase(telemetry.PhaseMotion)
	resets := s.field.Step(s.rng)
	s.bladeAngle = math.Mod(s.bladeAngle+BladeSpeed(s.cfg.Fan), 2*math.Pi)
	s.frame++
	s.totalFrames++

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordResets(resets)
	s.flushTelemetry()

	s.perfCollector.EndStep()
	return true
}

// Update runs the configured number of steps and refreshes the particle views.
func (s *Simulation) Update() {
	for range s.stepsPerUpdate {
		if !s.Step() {
			break
		}
	}
	s.views = s.field.Views(s.views)
}

// TogglePause flips the paused flag and returns the new state.
func (s *Simulation) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// SetPaused sets the paused flag.
func (s *Simulation) SetPaused(paused bool) {
	s.paused = paused
}

// Paused reports whether stepping is halted.
func (s *Simulation) Paused() bool {
	return s.paused
}

// SetStepsPerUpdate sets the frames per Update, clamped to the allowed range.
func (s *Simulation) SetStepsPerUpdate(n int) {
	s.stepsPerUpdate = min(max(n, MinStepsPerUpdate), MaxStepsPerUpdate)
}

// StepsPerUpdate returns the frames simulated per Update.
func (s *Simulation) StepsPerUpdate() int {
	return s.stepsPerUpdate
}

// RecordFrame marks a rendered frame for FPS accounting.
func (s *Simulation) RecordFrame() {
	s.perfCollector.RecordFrame()
}

// Config returns the active configuration. Callers must not modify it; use Apply.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Metrics returns the metrics of the active configuration.
func (s *Simulation) Metrics() systems.Metrics {
	return s.metrics
}

// Views returns the particle states as of the last Update or Rebuild.
func (s *Simulation) Views() []systems.ParticleView {
	return s.views
}

// Field returns the particle field.
func (s *Simulation) Field() *systems.Field {
	return s.field
}

// Frame returns frames simulated since the last rebuild.
func (s *Simulation) Frame() int {
	return s.frame
}

// TotalFrames returns frames simulated over the whole session.
func (s *Simulation) TotalFrames() int {
	return s.totalFrames
}

// BladeAngle returns the fan blade angle in radians, in (-2π, 2π).
func (s *Simulation) BladeAngle() float64 {
	return s.bladeAngle
}

// RunID identifies this session in exports.
func (s *Simulation) RunID() uuid.UUID {
	return s.runID
}

// LastStats returns the most recent telemetry window, or nil before the first flush.
func (s *Simulation) LastStats() *telemetry.FlowStats {
	return s.lastStats
}

// PerfStats returns the current step timing statistics.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// ExportResults writes the results CSV and returns its path.
func (s *Simulation) ExportResults() (string, error) {
	if s.outputManager == nil {
		return "", ErrOutputDisabled
	}
	path, err := s.outputManager.WriteResults(telemetry.NewExportRecord(s.cfg, s.runID, s.now()))
	if err != nil {
		return "", fmt.Errorf("exporting results: %w", err)
	}
	slog.Info("results exported", "path", path, "run_id", s.runID.String())
	return path, nil
}

// ExportComparison writes the comparison CSV and chart and returns the output directory.
func (s *Simulation) ExportComparison() (string, error) {
	if s.outputManager == nil {
		return "", ErrOutputDisabled
	}
	c := telemetry.NewComparison(s.cfg, s.runID, s.now())
	if err := s.outputManager.WriteComparison(c); err != nil {
		return "", fmt.Errorf("exporting comparison: %w", err)
	}
	slog.Info("comparison exported",
		"dir", s.outputManager.Dir(),
		"current", c.CurrentName,
		"comparison", c.ComparisonName,
	)
	return s.outputManager.Dir(), nil
}

// Close flushes and closes output files.
func (s *Simulation) Close() error {
	return s.outputManager.Close()
}
