package sim

import (
	"log/slog"
)

// flushTelemetry checks if the stats window should be flushed.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.frame) {
		return
	}

	// Sample the state at the window end rather than the last rendered one
	s.views = s.field.Views(s.views)

	stats := s.collector.Flush(s.frame, s.field.Flow(), s.views)
	perfStats := s.perfCollector.Stats()
	s.lastStats = &stats

	if s.logStats {
		stats.LogStats()
		slog.Info("perf", "frame", s.frame, "stats", perfStats)
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.Frame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
