package telemetry

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/systems"
)

// ExportRow is one Parameter,Value line of a results export.
type ExportRow struct {
	Parameter string `csv:"Parameter"`
	Value     string `csv:"Value"`
}

// ExportRecord is the flat snapshot of a configuration and its metrics.
type ExportRecord struct {
	RunID     uuid.UUID
	Generated time.Time
	Room      config.RoomConfig
	Fan       config.FanConfig
	ModelName string
	Metrics   systems.Metrics
}

// NewExportRecord computes the metrics of cfg and stamps them with runID and now.
func NewExportRecord(cfg *config.Config, runID uuid.UUID, now time.Time) ExportRecord {
	return ExportRecord{
		RunID:     runID,
		Generated: now,
		Room:      cfg.Room,
		Fan:       cfg.Fan,
		ModelName: cfg.ModelName(cfg.Fan.Model),
		Metrics:   systems.ComputeMetrics(systems.MetricsInputFor(cfg.Room, cfg.Fan)),
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rows returns the record in export order.
func (r ExportRecord) Rows() []ExportRow {
	return []ExportRow{
		{"Room Length (ft)", num(r.Room.Length)},
		{"Room Width (ft)", num(r.Room.Width)},
		{"Room Height (ft)", num(r.Room.Height)},
		{"Fan Model", r.ModelName},
		{"Fan Diameter (ft)", num(r.Fan.Diameter)},
		{"Fan CFM", num(r.Fan.CFM)},
		{"Fan RPM", num(r.Fan.RPM)},
		{"Fan Direction", string(r.Fan.Direction)},
		{"Fan X Position (ft)", num(r.Fan.X)},
		{"Fan Y Position (ft)", num(r.Fan.Y)},
		{"Fan Height (ft)", num(r.Fan.Height)},
		{"Coverage Area (sq ft)", num(r.Metrics.CoverageArea)},
		{"Air Changes (ACH)", num(r.Metrics.AirChanges)},
		{"Energy Usage (kW)", num(r.Metrics.EnergyUsage)},
		{"Cooling Effect (°F)", num(r.Metrics.CoolingEffect)},
		{"Date Generated", r.Generated.Format(time.RFC3339)},
		{"Run ID", r.RunID.String()},
	}
}

// ComparisonEntry is one metric of the side-by-side fan comparison.
type ComparisonEntry struct {
	Metric     string  `csv:"metric"`
	Current    float64 `csv:"current"`
	Comparison float64 `csv:"comparison"`
	Difference float64 `csv:"difference"` // comparison - current
}

// Metric labels shared by the comparison CSV and chart.
var metricLabels = [...]string{"Coverage (sq ft)", "Air Changes (ACH)", "Energy (kW)", "Cooling (°F)"}

// Comparison holds the metrics of the configured fan and the comparison fan
// in the same room.
type Comparison struct {
	RunID          uuid.UUID
	Generated      time.Time
	CurrentName    string
	ComparisonName string
	Current        systems.Metrics
	Compared       systems.Metrics
}

// NewComparison evaluates both fans of cfg.
func NewComparison(cfg *config.Config, runID uuid.UUID, now time.Time) Comparison {
	other := cfg.ComparisonFan()
	return Comparison{
		RunID:          runID,
		Generated:      now,
		CurrentName:    cfg.ModelName(cfg.Fan.Model),
		ComparisonName: cfg.ModelName(other.Model),
		Current:        systems.ComputeMetrics(systems.MetricsInputFor(cfg.Room, cfg.Fan)),
		Compared:       systems.ComputeMetrics(systems.MetricsInputFor(cfg.Room, other)),
	}
}

func metricValues(m systems.Metrics) [4]float64 {
	return [4]float64{m.CoverageArea, m.AirChanges, m.EnergyUsage, m.CoolingEffect}
}

// Entries returns one row per metric.
func (c Comparison) Entries() []ComparisonEntry {
	cur, cmp := metricValues(c.Current), metricValues(c.Compared)
	out := make([]ComparisonEntry, len(metricLabels))
	for i, label := range metricLabels {
		out[i] = ComparisonEntry{
			Metric:     label,
			Current:    cur[i],
			Comparison: cmp[i],
			Difference: cmp[i] - cur[i],
		}
	}
	return out
}
