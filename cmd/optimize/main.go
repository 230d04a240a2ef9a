package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/telemetry"
)

// EvalRow is one line of the optimization log.
type EvalRow struct {
	Eval       int     `csv:"eval"`
	Fitness    float64 `csv:"fitness"`
	Diameter   float64 `csv:"diameter"`
	CFM        float64 `csv:"cfm"`
	RPM        float64 `csv:"rpm"`
	AirChanges float64 `csv:"air_changes"`
	Coverage   float64 `csv:"coverage_fraction"`
	EnergyKW   float64 `csv:"energy_kw"`
	Airflow    float64 `csv:"airflow"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	model := flag.String("model", "", "Fan model ID to size (empty = use config)")
	targetACH := flag.Float64("target-ach", 200, "Minimum air changes per hour")
	targetCoverage := flag.Float64("target-coverage", 0.5, "Minimum floor share inside the coverage area")
	frames := flag.Int("frames", 0, "Frames to simulate per candidate and seed (0 = metrics only)")
	seeds := flag.Int("seeds", 2, "Number of seeds per simulated evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Simulations log every rebuild at info level
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *model != "" {
		if _, ok := baseCfg.Model(*model); !ok {
			log.Fatalf("unknown fan model %q", *model)
		}
		baseCfg.Fan.Model = *model
		baseCfg.Clamp()
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	defer om.Close()

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	targets := Targets{AirChanges: *targetACH, CoverageFraction: *targetCoverage}
	evaluator := NewFitnessEvaluator(params, targets, *frames, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		b := evaluator.LastBreakdown()
		row := []EvalRow{{
			Eval:       evalCount,
			Fitness:    fitness,
			Diameter:   clamped[0],
			CFM:        clamped[1],
			RPM:        clamped[2],
			AirChanges: b.Metrics.AirChanges,
			Coverage:   b.Coverage,
			EnergyKW:   b.Metrics.EnergyUsage,
			Airflow:    b.Airflow,
		}}
		if evalCount == 1 {
			err = gocsv.MarshalFile(&row, logFile)
		} else {
			err = gocsv.MarshalWithoutHeaders(&row, logFile)
		}
		if err != nil {
			log.Printf("failed to write log row: %v", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: energy=%.2fkW ach=%.0f coverage=%.2f (best=%.3f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, b.Metrics.EnergyUsage, b.Metrics.AirChanges, b.Coverage, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES sizing of %s with population=%d, max_evals=%d\n",
		baseCfg.ModelName(baseCfg.Fan.Model), popSize, *maxEvals)
	fmt.Printf("Targets: %.0f ACH, %.0f%% floor coverage, frames per run: %d\n",
		targets.AirChanges, targets.CoverageFraction*100, *frames)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil {
		bestParams = params.DefaultVector()
		if result != nil {
			bestParams = params.Clamp(params.Denormalize(result.X))
		}
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.2f\n", spec.Path, bestParams[i])
	}

	bestCfg := evaluator.Config(bestParams)
	if err := om.WriteConfig(bestCfg); err != nil {
		log.Printf("failed to write best config: %v", err)
	}
	path, err := om.WriteResults(telemetry.NewExportRecord(bestCfg, uuid.New(), time.Now()))
	if err != nil {
		log.Printf("failed to write results: %v", err)
	} else {
		fmt.Printf("\nBest config and results saved to: %s\n", filepath.Dir(path))
	}
}
