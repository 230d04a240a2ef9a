package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fanflow/config"
)

// Output file names inside the output directory.
const (
	TelemetryFile      = "telemetry.csv"
	PerfFile           = "perf.csv"
	ResultsFile        = "results.csv"
	ComparisonFile     = "comparison.csv"
	ComparisonHTMLFile = "comparison.html"
	ConfigFile         = "config.yaml"
)

// OutputManager handles experiment output: streaming CSV logs plus one-shot exports.
// A nil manager means output is disabled and every method is a no-op.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	perfFile      *os.File

	telemetryHeaderWritten bool
	perfHeaderWritten      bool
}

// NewOutputManager creates the output directory and opens the streaming logs.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, TelemetryFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", TelemetryFile, err)
	}
	om.telemetryFile = f

	f, err = os.Create(filepath.Join(dir, PerfFile))
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating %s: %w", PerfFile, err)
	}
	om.perfFile = f

	return om, nil
}

// appendCSV writes records to f, emitting the header on the first call only.
func appendCSV[T any](f *os.File, headerWritten *bool, records []T) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats FlowStats) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.telemetryFile, &om.telemetryHeaderWritten, []FlowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, frame int) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.perfFile, &om.perfHeaderWritten, []PerfStatsCSV{stats.ToCSV(frame)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// writeFile creates name in the output directory and hands it to write.
func (om *OutputManager) writeFile(name string, write func(f *os.File) error) (string, error) {
	path := filepath.Join(om.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return path, nil
}

// WriteResults writes the Parameter,Value export to results.csv and returns its path.
// Each call replaces the previous export.
func (om *OutputManager) WriteResults(rec ExportRecord) (string, error) {
	if om == nil {
		return "", nil
	}
	return om.writeFile(ResultsFile, func(f *os.File) error {
		return gocsv.Marshal(rec.Rows(), f)
	})
}

// WriteComparison writes comparison.csv and the comparison.html bar chart.
func (om *OutputManager) WriteComparison(c Comparison) error {
	if om == nil {
		return nil
	}
	if _, err := om.writeFile(ComparisonFile, func(f *os.File) error {
		return gocsv.Marshal(c.Entries(), f)
	}); err != nil {
		return err
	}
	_, err := om.writeFile(ComparisonHTMLFile, func(f *os.File) error {
		return RenderComparison(f, c)
	})
	return err
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.telemetryFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
