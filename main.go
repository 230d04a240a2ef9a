package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/game"
	"github.com/pthm-cable/fanflow/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, exports and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation frames per update call (higher = faster headless runs)")
	export := flag.Bool("export", false, "Write results and comparison exports on exit (requires -output-dir)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		if err := runHeadless(cfg, opts, *maxFrames, *export); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Fanflow")
	defer rl.CloseWindow()

	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		rl.CloseWindow()
		os.Exit(1)
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && g.TotalFrames() >= *maxFrames {
			break
		}
	}
}

// runHeadless steps the simulation without a window.
func runHeadless(cfg *config.Config, opts sim.Options, maxFrames int, export bool) error {
	s, err := sim.NewSimulation(cfg, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"particles", s.Field().Len(),
		"max_frames", maxFrames,
		"steps_per_update", s.StepsPerUpdate(),
	)

	for maxFrames <= 0 || s.TotalFrames() < maxFrames {
		s.Update()
	}
	slog.Info("max frames reached", "frame", s.TotalFrames(), "metrics", s.Metrics())

	if !export {
		return nil
	}
	if _, err := s.ExportResults(); err != nil {
		return err
	}
	if _, err := s.ExportComparison(); err != nil {
		return err
	}
	return nil
}
