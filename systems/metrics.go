package systems

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/fanflow/config"
)

// Metric formula constants.
const (
	coverageScale   = 1.5     // Coverage disc radius in fan diameters
	minutesPerHour  = 60.0    // CFM to cubic feet per hour
	energyDiameter  = 10.0    // ft per energy unit
	energyRPM       = 40.0    // rpm per energy unit
	energyKW        = 0.75    // kW per unit diameter*rpm
	coolingCFM      = 50000.0 // cfm per cooling unit
	coolingDegreesF = 2.5     // °F per cooling unit
)

// MetricsInput is the subset of configuration the metrics depend on.
type MetricsInput struct {
	RoomLength, RoomWidth, RoomHeight float64
	FanDiameter, FanCFM, FanRPM       float64
}

// MetricsInputFor builds a MetricsInput from room and fan configuration.
func MetricsInputFor(room config.RoomConfig, fan config.FanConfig) MetricsInput {
	return MetricsInput{
		RoomLength:  room.Length,
		RoomWidth:   room.Width,
		RoomHeight:  room.Height,
		FanDiameter: fan.Diameter,
		FanCFM:      fan.CFM,
		FanRPM:      fan.RPM,
	}
}

// Metrics holds the four headline numbers shown next to the visualization.
type Metrics struct {
	CoverageArea  float64 `csv:"coverage_sqft"` // sq ft
	AirChanges    float64 `csv:"air_changes"`   // ACH
	EnergyUsage   float64 `csv:"energy_kw"`     // kW
	CoolingEffect float64 `csv:"cooling_f"`     // °F
}

// ComputeMetrics evaluates the closed-form heuristics.
// Inputs are assumed valid; a zero room volume yields an infinite air change rate.
func ComputeMetrics(in MetricsInput) Metrics {
	volume := in.RoomLength * in.RoomWidth * in.RoomHeight
	return Metrics{
		CoverageArea:  math.Pi * math.Pow(in.FanDiameter*coverageScale, 2),
		AirChanges:    in.FanCFM * minutesPerHour / volume,
		EnergyUsage:   (in.FanDiameter / energyDiameter) * (in.FanRPM / energyRPM) * energyKW,
		CoolingEffect: (in.FanCFM / coolingCFM) * coolingDegreesF,
	}
}

// MetricsText holds display strings for each metric.
type MetricsText struct {
	Coverage, AirChanges, Energy, Cooling string
}

// Text formats the metrics the way the results panel shows them.
func (m Metrics) Text() MetricsText {
	return MetricsText{
		Coverage:   fmt.Sprintf("%d sq ft", int(math.Round(m.CoverageArea))),
		AirChanges: fmt.Sprintf("%.1f ACH", m.AirChanges),
		Energy:     fmt.Sprintf("%.2f kW", m.EnergyUsage),
		Cooling:    fmt.Sprintf("%.1f°F", m.CoolingEffect),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("coverage_sqft", m.CoverageArea),
		slog.Float64("air_changes", m.AirChanges),
		slog.Float64("energy_kw", m.EnergyUsage),
		slog.Float64("cooling_f", m.CoolingEffect),
	)
}
