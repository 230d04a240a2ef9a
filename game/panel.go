package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fanflow/config"
)

// Control panel layout, in pixels.
const (
	rowHeight   = 24
	rowGap      = 6
	labelHeight = 16
	sliderTrim  = 60 // Room for the value text right of a slider
)

// Slider ranges not covered by the fan model catalog.
const (
	minDiameter   = 4
	minCFM        = 10000
	minRoomLength = 20
	maxRoomLength = 200
	minRoomHeight = 10
	maxRoomHeight = 60
)

// drawControlPanel draws the raygui panel. Edits are queued and applied by
// the next Update.
func (g *Game) drawControlPanel(x, y, width float32) {
	cfg := g.sim.Config()
	fan := cfg.Fan
	model, _ := cfg.Model(fan.Model)
	half := (width - rowGap) / 2

	box := func(col, span float32) rl.Rectangle {
		return rl.Rectangle{X: x + col*(half+rowGap), Y: y, Width: span*half + (span-1)*rowGap, Height: rowHeight}
	}
	next := func() { y += rowHeight + rowGap }

	if gui.Button(box(0, 1), toggleText(g.sim.Paused(), "Play", "Pause")) {
		g.queueAction(func() { g.sim.TogglePause() })
	}
	if gui.Button(box(1, 1), "Reset") {
		g.queueAction(g.resetAll)
	}
	next()

	third := (width - 2*rowGap) / 3
	for i, d := range config.Densities {
		r := rl.Rectangle{X: x + float32(i)*(third+rowGap), Y: y, Width: third, Height: rowHeight}
		if gui.Button(r, toggleText(cfg.Particles.Density == d, "["+string(d)+"]", string(d))) {
			g.queueEdit(func(c *config.Config) { c.Particles.Density = d })
		}
	}
	next()

	if gui.Button(box(0, 1), "Flow: "+string(fan.Direction)) {
		dir := config.DirectionUp
		if fan.Direction == config.DirectionUp {
			dir = config.DirectionDown
		}
		g.queueEdit(func(c *config.Config) { c.Fan.Direction = dir })
	}
	if gui.Button(box(1, 1), "View: "+g.camera.View.String()) {
		g.queueAction(func() { g.camera.SetView(g.camera.View.Next()) })
	}
	next()

	if gui.Button(box(0, 2), "Model: "+cfg.ModelName(fan.Model)) {
		id := nextModel(cfg, fan.Model)
		g.queueEdit(func(c *config.Config) { c.Fan.Model = id })
	}
	next()

	slider := func(label string, value, lo, hi float64, format string, set func(c *config.Config, v float64)) {
		rl.DrawText(label, int32(x), int32(y), 14, rl.LightGray)
		y += labelHeight
		r := rl.Rectangle{X: x, Y: y, Width: width - sliderTrim, Height: rowHeight - 6}
		nv := float64(gui.SliderBar(r, "", "", float32(value), float32(lo), float32(hi)))
		rl.DrawText(fmt.Sprintf(format, value), int32(x+width-sliderTrim+6), int32(y+2), 14, rl.White)
		if nv != float64(float32(value)) {
			g.queueEdit(func(c *config.Config) { set(c, nv) })
		}
		next()
	}

	slider("Fan RPM", fan.RPM, config.MinRPM, config.MaxRPM, "%.0f", func(c *config.Config, v float64) { c.Fan.RPM = v })
	slider("Fan CFM", fan.CFM, minCFM, model.MaxCFM, "%.0f", func(c *config.Config, v float64) { c.Fan.CFM = v })
	slider("Fan Diameter (ft)", fan.Diameter, minDiameter, model.MaxDiameter, "%.1f", func(c *config.Config, v float64) { c.Fan.Diameter = v })
	slider("Fan X (ft)", fan.X, 0, cfg.Room.Length, "%.1f", func(c *config.Config, v float64) { c.Fan.X = v })
	slider("Fan Y (ft)", fan.Y, 0, cfg.Room.Width, "%.1f", func(c *config.Config, v float64) { c.Fan.Y = v })
	slider("Fan Height (ft)", fan.Height, 1, cfg.Room.Height, "%.1f", func(c *config.Config, v float64) { c.Fan.Height = v })
	slider("Room Length (ft)", cfg.Room.Length, minRoomLength, maxRoomLength, "%.0f", func(c *config.Config, v float64) { c.Room.Length = v })
	slider("Room Width (ft)", cfg.Room.Width, minRoomLength, maxRoomLength, "%.0f", func(c *config.Config, v float64) { c.Room.Width = v })
	slider("Room Height (ft)", cfg.Room.Height, minRoomHeight, maxRoomHeight, "%.0f", func(c *config.Config, v float64) { c.Room.Height = v })

	if gui.Button(box(0, 1), "Export CSV") {
		g.queueAction(g.exportResults)
	}
	if gui.Button(box(1, 1), "Compare") {
		g.queueAction(g.exportComparison)
	}
}

// nextModel returns the catalog entry after id, wrapping around.
func nextModel(cfg *config.Config, id string) string {
	for i, m := range cfg.Models {
		if m.ID == id {
			return cfg.Models[(i+1)%len(cfg.Models)].ID
		}
	}
	return cfg.Models[0].ID
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
