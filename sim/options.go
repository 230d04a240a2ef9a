package sim

// Options holds configuration for simulation initialization.
type Options struct {
	Seed           int64  // RNG seed
	LogStats       bool   // Log telemetry windows via slog
	OutputDir      string // Directory for CSV logs and exports (empty = disabled)
	StepsPerUpdate int    // Simulation frames per Update call
}

// Steps-per-update limits.
const (
	MinStepsPerUpdate = 1
	MaxStepsPerUpdate = 10
)
