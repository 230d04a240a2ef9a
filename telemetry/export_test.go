package telemetry

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/pthm-cable/fanflow/config"
)

var testRunID = uuid.MustParse("5b7c6e1e-8f0b-4d53-9a3e-2f1d4c6b8a90")

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestExportRecordRows(t *testing.T) {
	rec := NewExportRecord(config.Default(), testRunID, testTime)

	want := []ExportRow{
		{"Room Length (ft)", "50"},
		{"Room Width (ft)", "50"},
		{"Room Height (ft)", "20"},
		{"Fan Model", "Big Ass Fans Powerfoil X3.0"},
		{"Fan Diameter (ft)", "14"},
		{"Fan CFM", "300000"},
		{"Fan RPM", "50"},
		{"Fan Direction", "down"},
		{"Fan X Position (ft)", "25"},
		{"Fan Y Position (ft)", "25"},
		{"Fan Height (ft)", "18"},
		{"Coverage Area (sq ft)", num(rec.Metrics.CoverageArea)},
		{"Air Changes (ACH)", "360"},
		{"Energy Usage (kW)", "1.3125"},
		{"Cooling Effect (°F)", "15"},
		{"Date Generated", "2026-03-14T09:30:00Z"},
		{"Run ID", "5b7c6e1e-8f0b-4d53-9a3e-2f1d4c6b8a90"},
	}
	if diff := cmp.Diff(want, rec.Rows()); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(rec.Metrics.CoverageArea-1385.44) > 0.01 {
		t.Errorf("coverage = %v, want ~1385.44", rec.Metrics.CoverageArea)
	}
}

func TestComparisonEntries(t *testing.T) {
	cfg := config.Default()
	cfg.Comparison = config.ComparisonConfig{Model: cfg.Fan.Model, Diameter: 16, CFM: 350000, RPM: 45}

	c := NewComparison(cfg, testRunID, testTime)
	entries := c.Entries()
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	tests := []struct {
		metric     string
		current    float64
		comparison float64
	}{
		{"Coverage (sq ft)", math.Pi * 21 * 21, math.Pi * 24 * 24},
		{"Air Changes (ACH)", 360, 420},
		{"Energy (kW)", 1.3125, 1.35},
		{"Cooling (°F)", 15, 17.5},
	}
	for i, tt := range tests {
		e := entries[i]
		if e.Metric != tt.metric {
			t.Errorf("entry %d metric = %q, want %q", i, e.Metric, tt.metric)
		}
		if math.Abs(e.Current-tt.current) > 1e-9 || math.Abs(e.Comparison-tt.comparison) > 1e-9 {
			t.Errorf("%s: got %v/%v, want %v/%v", tt.metric, e.Current, e.Comparison, tt.current, tt.comparison)
		}
		if math.Abs(e.Difference-(tt.comparison-tt.current)) > 1e-9 {
			t.Errorf("%s: difference = %v", tt.metric, e.Difference)
		}
	}
}

func TestRenderComparison(t *testing.T) {
	c := NewComparison(config.Default(), testRunID, testTime)

	var buf bytes.Buffer
	if err := RenderComparison(&buf, c); err != nil {
		t.Fatalf("RenderComparison: %v", err)
	}
	html := buf.String()
	for _, s := range []string{"<html", "echarts", "Air Changes (ACH)"} {
		if !strings.Contains(html, s) {
			t.Errorf("rendered chart missing %q", s)
		}
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}

	// Every method is safe on a nil manager
	if err := om.WriteTelemetry(FlowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if path, err := om.WriteResults(ExportRecord{}); err != nil || path != "" {
		t.Errorf("WriteResults on nil = %q, %v", path, err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	cfg := config.Default()
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	for frame := 300; frame <= 900; frame += 300 {
		if err := om.WriteTelemetry(FlowStats{Frame: frame, Particles: 2500}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
		if err := om.WritePerf(PerfStats{}, frame); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}

	path, err := om.WriteResults(NewExportRecord(cfg, testRunID, testTime))
	if err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if path != filepath.Join(dir, ResultsFile) {
		t.Errorf("results path = %q", path)
	}
	if err := om.WriteComparison(NewComparison(cfg, testRunID, testTime)); err != nil {
		t.Fatalf("WriteComparison: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var stats []FlowStats
	readCSV(t, filepath.Join(dir, TelemetryFile), &stats)
	if len(stats) != 3 || stats[2].Frame != 900 {
		t.Errorf("telemetry rows = %+v, want 3 rows ending at frame 900", stats)
	}

	var perf []PerfStatsCSV
	readCSV(t, filepath.Join(dir, PerfFile), &perf)
	if len(perf) != 3 {
		t.Errorf("perf rows = %d, want 3", len(perf))
	}

	var rows []ExportRow
	readCSV(t, path, &rows)
	if len(rows) != 17 || rows[0].Parameter != "Room Length (ft)" {
		t.Errorf("results rows = %+v", rows)
	}

	var entries []ComparisonEntry
	readCSV(t, filepath.Join(dir, ComparisonFile), &entries)
	if len(entries) != 4 {
		t.Errorf("comparison rows = %d, want 4", len(entries))
	}

	for _, name := range []string{ComparisonHTMLFile, ConfigFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	loaded, err := config.Load(filepath.Join(dir, ConfigFile))
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if loaded.Fan != cfg.Fan {
		t.Errorf("reloaded fan = %+v, want %+v", loaded.Fan, cfg.Fan)
	}
}

func readCSV(t *testing.T, path string, out any) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
