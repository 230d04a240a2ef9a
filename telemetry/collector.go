package telemetry

import (
	"math"

	"github.com/pthm-cable/fanflow/components"
	"github.com/pthm-cable/fanflow/systems"
)

// Collector accumulates reset events over a window of frames and produces FlowStats.
type Collector struct {
	windowFrames int

	// Current window tracking
	windowStart int
	resets      int

	speeds []float64 // Scratch buffer reused between flushes
}

// NewCollector creates a collector that flushes every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: windowFrames}
}

// RecordResets adds particle resets from one step.
func (c *Collector) RecordResets(n int) {
	c.resets += n
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int) bool {
	return frame-c.windowStart >= c.windowFrames
}

// Flush samples the current particle views and resets counters for the next window.
// flow supplies the fan column used for the beneath-fan vertical velocity.
func (c *Collector) Flush(frame int, flow *systems.FlowField, views []systems.ParticleView) FlowStats {
	c.speeds = c.speeds[:0]

	var zones [components.NumZones]int
	var vzSum float64
	var beneath int
	for _, v := range views {
		c.speeds = append(c.speeds, systems.Speed(v.Velocity))
		if int(v.Zone) < len(zones) {
			zones[v.Zone]++
		}

		hd := math.Hypot(v.Position.X-flow.Center.X, v.Position.Y-flow.Center.Y)
		if hd < flow.Radius && v.Position.Z < flow.Center.Z {
			vzSum += v.Velocity.Z
			beneath++
		}
	}

	speed := Summarize(c.speeds)
	stats := FlowStats{
		WindowStartFrame: c.windowStart,
		Frame:            frame,
		Particles:        len(views),

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,

		BeneathFanSamples: beneath,

		ZoneOpen:     zones[components.ZoneOpen],
		ZoneUnderFan: zones[components.ZoneUnderFan],
		ZoneFloor:    zones[components.ZoneFloor],
		ZoneWall:     zones[components.ZoneWall],
		ZoneCeiling:  zones[components.ZoneCeiling],

		Resets: c.resets,
	}
	if beneath > 0 {
		stats.BeneathFanVZ = vzSum / float64(beneath)
	}
	if frames := frame - c.windowStart; frames > 0 && len(views) > 0 {
		stats.ResetRate = float64(c.resets) / float64(frames*len(views))
	}

	// Reset for next window
	c.windowStart = frame
	c.resets = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int {
	return c.windowFrames
}
