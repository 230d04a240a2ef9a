package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FlowStats holds aggregated particle statistics for a window of frames.
type FlowStats struct {
	WindowStartFrame int `csv:"-"`
	Frame            int `csv:"frame"`
	Particles        int `csv:"particles"`

	// Speed distribution (ft/frame, sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Vertical velocity inside the fan column below the hub
	BeneathFanVZ      float64 `csv:"beneath_fan_vz"`
	BeneathFanSamples int     `csv:"beneath_fan_samples"`

	// Zone occupancy at window end
	ZoneOpen     int `csv:"zone_open"`
	ZoneUnderFan int `csv:"zone_under_fan"`
	ZoneFloor    int `csv:"zone_floor"`
	ZoneWall     int `csv:"zone_wall"`
	ZoneCeiling  int `csv:"zone_ceiling"`

	// Resets during window
	Resets    int     `csv:"resets"`
	ResetRate float64 `csv:"reset_rate"` // Per particle per frame
}

// SpeedSummary is the distribution of a set of speeds.
type SpeedSummary struct {
	Mean, Std, P50, P90, Max float64
}

// Summarize computes mean, standard deviation, median, 90th percentile and
// maximum. values is sorted in place. An empty slice returns all zeros.
func Summarize(values []float64) SpeedSummary {
	if len(values) == 0 {
		return SpeedSummary{}
	}
	sort.Float64s(values)

	mean, std := stat.PopMeanStdDev(values, nil)
	return SpeedSummary{
		Mean: mean,
		Std:  std,
		P50:  stat.Quantile(0.5, stat.Empirical, values, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, values, nil),
		Max:  floats.Max(values),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s FlowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartFrame),
		slog.Int("frame", s.Frame),
		slog.Int("particles", s.Particles),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("beneath_fan_vz", s.BeneathFanVZ),
		slog.Int("beneath_fan_samples", s.BeneathFanSamples),
		slog.Int("zone_open", s.ZoneOpen),
		slog.Int("zone_under_fan", s.ZoneUnderFan),
		slog.Int("zone_floor", s.ZoneFloor),
		slog.Int("zone_wall", s.ZoneWall),
		slog.Int("zone_ceiling", s.ZoneCeiling),
		slog.Int("resets", s.Resets),
		slog.Float64("reset_rate", s.ResetRate),
	)
}

// LogStats logs the window stats using slog.
func (s FlowStats) LogStats() {
	slog.Info("stats", "window", s)
}
