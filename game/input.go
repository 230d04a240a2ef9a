package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fanflow/camera"
)

// Camera control rates.
const (
	orbitSpeed = 0.03 // Radians per frame with an arrow key held
	wheelZoom  = 0.1  // Zoom change per wheel notch
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.sim.TogglePause()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.sim.SetStepsPerUpdate(g.sim.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.sim.SetStepsPerUpdate(g.sim.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.resetAll()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		g.exportResults()
	}
	if rl.IsKeyPressed(rl.KeyX) {
		g.exportComparison()
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
}

// handleOverlayKeys drains the key queue and toggles the matching overlays.
func (g *Game) handleOverlayKeys() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}
}

// handleResize tracks the window size.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
}

// handleCameraInput processes view presets, orbit and zoom.
func (g *Game) handleCameraInput() {
	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		g.camera.SetView(camera.View3D)
	case rl.IsKeyPressed(rl.KeyTwo):
		g.camera.SetView(camera.ViewTop)
	case rl.IsKeyPressed(rl.KeyThree):
		g.camera.SetView(camera.ViewSide)
	case rl.IsKeyPressed(rl.KeyTab):
		g.camera.SetView(g.camera.View.Next())
	case rl.IsKeyPressed(rl.KeyHome):
		g.camera.Reset()
	}

	var dYaw, dPitch float32
	if rl.IsKeyDown(rl.KeyLeft) {
		dYaw -= orbitSpeed
	}
	if rl.IsKeyDown(rl.KeyRight) {
		dYaw += orbitSpeed
	}
	if rl.IsKeyDown(rl.KeyUp) {
		dPitch += orbitSpeed
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dPitch -= orbitSpeed
	}
	if dYaw != 0 || dPitch != 0 {
		g.camera.Orbit(dYaw, dPitch)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*wheelZoom)
	}
}
