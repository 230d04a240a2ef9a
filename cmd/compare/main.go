// Package main writes a side-by-side comparison of the configured fan and a
// second fan in the same room, as CSV and an HTML bar chart.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory (required)")
	model := flag.String("model", "", "Comparison fan model ID (empty = use config)")
	diameter := flag.Float64("diameter", 0, "Comparison fan diameter in ft (0 = use config)")
	cfm := flag.Float64("cfm", 0, "Comparison fan airflow in CFM (0 = use config)")
	rpm := flag.Float64("rpm", 0, "Comparison fan speed in RPM (0 = use config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		slog.Error("-output-dir is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *model != "" {
		if _, ok := cfg.Model(*model); !ok {
			slog.Error("unknown fan model", "model", *model)
			os.Exit(1)
		}
		cfg.Comparison.Model = *model
	}
	if *diameter > 0 {
		cfg.Comparison.Diameter = *diameter
	}
	if *cfm > 0 {
		cfg.Comparison.CFM = *cfm
	}
	if *rpm > 0 {
		cfg.Comparison.RPM = *rpm
	}
	cfg.Clamp()

	if err := run(cfg, *outputDir); err != nil {
		slog.Error("comparison failed", "error", err)
		os.Exit(1)
	}
}

// run writes the results record, comparison CSV and chart for cfg.
func run(cfg *config.Config, dir string) error {
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return fmt.Errorf("creating output manager: %w", err)
	}
	defer om.Close()

	runID, now := uuid.New(), time.Now()

	if err := om.WriteConfig(cfg); err != nil {
		return err
	}
	if _, err := om.WriteResults(telemetry.NewExportRecord(cfg, runID, now)); err != nil {
		return err
	}

	c := telemetry.NewComparison(cfg, runID, now)
	if err := om.WriteComparison(c); err != nil {
		return err
	}

	for _, e := range c.Entries() {
		fmt.Printf("%-20s %12.2f %12.2f %+12.2f\n", e.Metric, e.Current, e.Comparison, e.Difference)
	}
	slog.Info("comparison written",
		"dir", om.Dir(),
		"current", c.CurrentName,
		"comparison", c.ComparisonName,
		"run_id", runID.String(),
	)
	return nil
}
