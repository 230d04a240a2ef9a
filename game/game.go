// Package game renders a simulation session with raylib and handles
// keyboard input and the control panel.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fanflow/camera"
	"github.com/pthm-cable/fanflow/config"
	"github.com/pthm-cable/fanflow/sim"
	"github.com/pthm-cable/fanflow/ui"
	"github.com/pthm-cable/fanflow/ui/overlay"
)

// Game holds the graphical state around a simulation.
type Game struct {
	sim *sim.Simulation

	// Rendering
	camera     *camera.Camera
	hud        *ui.HUD
	overlays   *overlay.Registry
	controls   *ui.ControlsPanel
	uiRenderer *ui.Renderer
	fanColor   rl.Color

	// Control panel edits, applied at the start of the next Update so the
	// field is never rebuilt mid-frame
	pending []func(cfg *config.Config)
	actions []func()

	status string

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGame creates a game for cfg. The raylib window must already be open.
func NewGame(cfg *config.Config, opts sim.Options) (*Game, error) {
	s, err := sim.NewSimulation(cfg, opts)
	if err != nil {
		return nil, err
	}

	g := &Game{
		sim:          s,
		hud:          ui.NewHUD(),
		overlays:     overlay.NewRegistry(),
		controls:     ui.NewControlsPanel(10, 120, 260),
		uiRenderer:   ui.NewRenderer(),
		screenWidth:  float32(rl.GetScreenWidth()),
		screenHeight: float32(rl.GetScreenHeight()),
	}
	room := s.Config().Room
	g.camera = camera.New(float32(room.Length), float32(room.Width), float32(room.Height))
	g.syncFan()
	return g, nil
}

// Update applies queued edits, handles input and advances the simulation.
func (g *Game) Update() {
	g.applyPending()
	g.handleInput()
	g.sim.Update()
	g.sim.RecordFrame()
}

// applyPending runs queued panel actions, then folds all queued edits into one rebuild.
func (g *Game) applyPending() {
	actions := g.actions
	g.actions = nil
	for _, act := range actions {
		act()
	}

	if len(g.pending) == 0 {
		return
	}
	edits := g.pending
	g.pending = nil

	prevRoom := g.sim.Config().Room
	err := g.sim.Apply(func(cfg *config.Config) {
		for _, edit := range edits {
			edit(cfg)
		}
	})
	if err != nil {
		slog.Warn("config edit rejected", "error", err)
		g.status = err.Error()
		return
	}
	if g.sim.Config().Room != prevRoom {
		g.reframe()
	}
	g.syncFan()
}

// queueEdit schedules a configuration edit for the next Update.
func (g *Game) queueEdit(edit func(cfg *config.Config)) {
	g.pending = append(g.pending, edit)
}

// queueAction schedules a non-config action for the next Update.
func (g *Game) queueAction(act func()) {
	g.actions = append(g.actions, act)
}

// reframe points the camera at the current room.
func (g *Game) reframe() {
	room := g.sim.Config().Room
	g.camera.Frame(float32(room.Length), float32(room.Width), float32(room.Height))
}

// syncFan refreshes cached fan display state after a rebuild.
func (g *Game) syncFan() {
	cfg := g.sim.Config()
	g.fanColor = rl.Gray
	if m, ok := cfg.Model(cfg.Fan.Model); ok {
		g.fanColor = hexColor(m.Color)
	}
}

// resetAll restores the default configuration and camera.
func (g *Game) resetAll() {
	g.sim.ResetToDefaults()
	g.reframe()
	g.camera.SetView(camera.View3D)
	g.overlays.Reset()
	g.syncFan()
	g.status = "Reset to defaults"
}

// exportResults writes results.csv and reports the outcome on the HUD.
func (g *Game) exportResults() {
	path, err := g.sim.ExportResults()
	if err != nil {
		slog.Error("export failed", "error", err)
		g.status = fmt.Sprintf("Export failed: %v", err)
		return
	}
	g.status = "Exported " + path
}

// exportComparison writes the comparison CSV and chart.
func (g *Game) exportComparison() {
	dir, err := g.sim.ExportComparison()
	if err != nil {
		slog.Error("comparison export failed", "error", err)
		g.status = fmt.Sprintf("Comparison failed: %v", err)
		return
	}
	g.status = "Comparison written to " + dir
}

// TotalFrames returns frames simulated since the game started, across rebuilds.
func (g *Game) TotalFrames() int {
	return g.sim.TotalFrames()
}

// Unload releases resources.
func (g *Game) Unload() {
	if err := g.sim.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
