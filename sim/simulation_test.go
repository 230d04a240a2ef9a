package sim

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/fanflow/components"
	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/telemetry"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Particles.Density = config.DensityLow
	return cfg
}

func newTestSim(t *testing.T, cfg *config.Config, opts Options) *Simulation {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	s, err := NewSimulation(cfg, opts)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSimulationRejectsInvalid(t *testing.T) {
	cfg := testConfig()
	cfg.Room.Height = 0
	if _, err := NewSimulation(cfg, Options{}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestBladeSpeed(t *testing.T) {
	tests := []struct {
		name string
		rpm  float64
		dir  config.Direction
		want float64
	}{
		{"down", 60, config.DirectionDown, 0.1},
		{"up", 60, config.DirectionUp, -0.1},
		{"down_slow", 30, config.DirectionDown, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BladeSpeed(config.FanConfig{RPM: tt.rpm, Direction: tt.dir})
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("BladeSpeed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepAdvancesFrameAndBlade(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})

	for range 10 {
		if !s.Step() {
			t.Fatal("Step returned false while playing")
		}
	}
	if s.Frame() != 10 {
		t.Errorf("frame = %d, want 10", s.Frame())
	}
	want := 10 * 50.0 / 60 * bladeStep
	if math.Abs(s.BladeAngle()-want) > 1e-9 {
		t.Errorf("blade angle = %v, want %v", s.BladeAngle(), want)
	}
}

type particleState struct {
	pos components.Position
	age float64
}

func snapshot(s *Simulation) []particleState {
	var out []particleState
	s.Field().Each(func(pos *components.Position, _ *components.Velocity, part *components.Particle) {
		out = append(out, particleState{*pos, part.Age})
	})
	return out
}

func TestPauseHaltsMotionAgeAndBlade(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})
	s.Update()

	if !s.TogglePause() {
		t.Fatal("TogglePause should report paused")
	}
	before := snapshot(s)
	frame, angle := s.Frame(), s.BladeAngle()

	for range 5 {
		s.Update()
	}
	if s.Step() {
		t.Error("Step returned true while paused")
	}

	if s.Frame() != frame || s.BladeAngle() != angle {
		t.Errorf("frame/angle moved while paused: %d/%v -> %d/%v", frame, angle, s.Frame(), s.BladeAngle())
	}
	after := snapshot(s)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed while paused: %+v -> %+v", i, before[i], after[i])
		}
	}

	s.SetPaused(false)
	s.Update()
	if s.Frame() != frame+1 {
		t.Errorf("frame after resume = %d, want %d", s.Frame(), frame+1)
	}
}

func TestUpdateStepsPerUpdate(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{StepsPerUpdate: 3})

	s.Update()
	if s.Frame() != 3 {
		t.Errorf("frame = %d, want 3", s.Frame())
	}
	if len(s.Views()) != 800 {
		t.Errorf("views = %d, want 800", len(s.Views()))
	}

	s.SetStepsPerUpdate(50)
	if s.StepsPerUpdate() != MaxStepsPerUpdate {
		t.Errorf("steps = %d, want %d", s.StepsPerUpdate(), MaxStepsPerUpdate)
	}
	s.SetStepsPerUpdate(0)
	if s.StepsPerUpdate() != MinStepsPerUpdate {
		t.Errorf("steps = %d, want %d", s.StepsPerUpdate(), MinStepsPerUpdate)
	}
}

func TestApplyRebuilds(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})
	s.Update()

	err := s.Apply(func(cfg *config.Config) {
		cfg.Particles.Density = config.DensityHigh
		cfg.Fan.RPM = 40
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Field().Len() != 5000 {
		t.Errorf("particles = %d, want 5000", s.Field().Len())
	}
	if s.Frame() != 0 {
		t.Errorf("frame after rebuild = %d, want 0", s.Frame())
	}
	if s.TotalFrames() != 1 {
		t.Errorf("total frames after rebuild = %d, want 1", s.TotalFrames())
	}
	// energy = (14/10) * (40/40) * 0.75
	if got := s.Metrics().EnergyUsage; math.Abs(got-1.05) > 1e-9 {
		t.Errorf("energy = %v, want 1.05", got)
	}
}

func TestTotalFramesSurviveRebuilds(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})

	for i := range 5 {
		for range 4 {
			s.Step()
		}
		rpm := 30 + float64(i)
		if err := s.Apply(func(cfg *config.Config) { cfg.Fan.RPM = rpm }); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	s.SetPaused(true)
	s.Step()

	if s.Frame() != 0 {
		t.Errorf("frame = %d, want 0 after the last rebuild", s.Frame())
	}
	if s.TotalFrames() != 20 {
		t.Errorf("total frames = %d, want 20", s.TotalFrames())
	}
}

func TestApplyClampsToModel(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})

	if err := s.Apply(func(cfg *config.Config) { cfg.Fan.Diameter = 40 }); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := s.Config().Fan.Diameter; got != 24 {
		t.Errorf("diameter = %v, want clamped to 24", got)
	}
}

func TestApplyInvalidKeepsConfig(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})
	s.Update()

	err := s.Apply(func(cfg *config.Config) { cfg.Fan.Direction = "sideways" })
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if s.Config().Fan.Direction != config.DirectionDown {
		t.Errorf("direction = %q, want unchanged", s.Config().Fan.Direction)
	}
	if s.Frame() != 1 {
		t.Errorf("frame = %d, want 1 (no rebuild)", s.Frame())
	}
}

func TestResetToDefaults(t *testing.T) {
	cfg := testConfig()
	s := newTestSim(t, cfg, Options{})

	if err := s.Apply(func(c *config.Config) {
		c.Fan.Direction = config.DirectionUp
		c.Room.Length = 80
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s.ResetToDefaults()

	if s.Config().Fan != cfg.Fan || s.Config().Room != cfg.Room {
		t.Errorf("config after reset = %+v / %+v", s.Config().Fan, s.Config().Room)
	}
	if s.Field().Len() != 800 {
		t.Errorf("particles = %d, want 800", s.Field().Len())
	}
}

func TestTelemetryWindowFlush(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = 10
	s := newTestSim(t, cfg, Options{})

	for range 9 {
		s.Step()
	}
	if s.LastStats() != nil {
		t.Fatal("stats flushed before the window closed")
	}
	s.Step()

	stats := s.LastStats()
	if stats == nil {
		t.Fatal("no stats after a full window")
	}
	if stats.Frame != 10 || stats.Particles != 800 {
		t.Errorf("stats frame/particles = %d/%d, want 10/800", stats.Frame, stats.Particles)
	}
	zones := stats.ZoneOpen + stats.ZoneUnderFan + stats.ZoneFloor + stats.ZoneWall + stats.ZoneCeiling
	if zones != 800 {
		t.Errorf("zone counts sum to %d, want 800", zones)
	}
	if stats.BeneathFanSamples == 0 {
		t.Error("no particles sampled beneath the fan")
	}
}

func TestExportDisabled(t *testing.T) {
	s := newTestSim(t, testConfig(), Options{})

	if _, err := s.ExportResults(); !errors.Is(err, ErrOutputDisabled) {
		t.Errorf("ExportResults err = %v, want ErrOutputDisabled", err)
	}
	if _, err := s.ExportComparison(); !errors.Is(err, ErrOutputDisabled) {
		t.Errorf("ExportComparison err = %v, want ErrOutputDisabled", err)
	}
}

func TestExportWritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = 5
	s := newTestSim(t, cfg, Options{OutputDir: dir})

	for range 10 {
		s.Step()
	}

	path, err := s.ExportResults()
	if err != nil {
		t.Fatalf("ExportResults: %v", err)
	}
	if path != filepath.Join(dir, telemetry.ResultsFile) {
		t.Errorf("results path = %q", path)
	}
	if _, err := s.ExportComparison(); err != nil {
		t.Fatalf("ExportComparison: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{
		telemetry.ConfigFile,
		telemetry.TelemetryFile,
		telemetry.PerfFile,
		telemetry.ResultsFile,
		telemetry.ComparisonFile,
		telemetry.ComparisonHTMLFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
