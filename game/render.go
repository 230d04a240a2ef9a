package game

import (
	"math"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/fanflow/camera"
	"github.com/pthm-cable/fanflow/ui"
	"github.com/pthm-cable/fanflow/ui/overlay"
)

// Drawing constants, in feet.
const (
	gridSpacing  = 5.0
	particleSize = 0.18
	streakLength = 8.0 // Frames of displacement drawn per streak
	hubRadius    = 0.8
	hubHeight    = 0.6
	bladeWidth   = 0.25
	floorLift    = 0.02 // Keeps floor overlays above the grid
)

// Screen layout, in pixels.
const (
	metricsWidth  = 240
	panelMargin   = 10
	controlsHints = "[SPACE] Pause  [1/2/3/TAB] View  [Arrows] Orbit  [Wheel] Zoom  [< >] Speed  [E] Export  [X] Compare  [R] Reset  [H] Keys"
)

var (
	backgroundColor = rl.Color{R: 18, G: 22, B: 28, A: 255}
	roomColor       = rl.Color{R: 120, G: 130, B: 140, A: 255}
	gridColor       = rl.Color{R: 50, G: 58, B: 66, A: 255}
	rodColor        = rl.Color{R: 90, G: 90, B: 90, A: 255}
	radiusColor     = rl.Color{R: 255, G: 255, B: 255, A: 120}
	influenceColor  = rl.Color{R: 52, G: 152, B: 219, A: 160}
)

// toWorld maps room coordinates (Z up) to raylib coordinates (Y up).
func toWorld(x, y, z float64) rl.Vector3 {
	return rl.Vector3{X: float32(x), Y: float32(z), Z: float32(-y)}
}

// hexColor parses "#rrggbb". Malformed input yields gray.
func hexColor(s string) rl.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return rl.Gray
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rl.Gray
	}
	return rl.GetColor(uint(v<<8 | 0xff))
}

// camera3D converts the orbit camera into a raylib camera.
func (g *Game) camera3D() rl.Camera3D {
	x, y, z := g.camera.Position()
	return rl.Camera3D{
		Position:   toWorld(float64(x), float64(y), float64(z)),
		Target:     toWorld(float64(g.camera.TargetX), float64(g.camera.TargetY), float64(g.camera.TargetZ)),
		Up:         rl.Vector3{Y: 1},
		Fovy:       camera.FovY,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	rl.BeginMode3D(g.camera3D())
	if g.overlays.IsEnabled(overlay.FloorGrid) {
		g.drawFloorGrid()
	}
	g.drawRoom()
	if g.overlays.IsEnabled(overlay.InfluenceRing) {
		g.drawInfluence()
	}
	g.drawFan()
	g.drawParticles()
	rl.EndMode3D()

	g.drawUI()

	rl.EndDrawing()
}

// drawRoom draws the room as a wireframe box.
func (g *Game) drawRoom() {
	room := g.sim.Config().Room
	center := toWorld(room.Length/2, room.Width/2, room.Height/2)
	rl.DrawCubeWires(center, float32(room.Length), float32(room.Height), float32(room.Width), roomColor)
}

// drawFloorGrid draws grid lines across the floor.
func (g *Game) drawFloorGrid() {
	room := g.sim.Config().Room
	for _, x := range gridLines(room.Length) {
		rl.DrawLine3D(toWorld(x, 0, 0), toWorld(x, room.Width, 0), gridColor)
	}
	for _, y := range gridLines(room.Width) {
		rl.DrawLine3D(toWorld(0, y, 0), toWorld(room.Length, y, 0), gridColor)
	}
}

// gridLines returns evenly spaced positions spanning [0, extent].
func gridLines(extent float64) []float64 {
	n := max(int(math.Round(extent/gridSpacing))+1, 2)
	return floats.Span(make([]float64, n), 0, extent)
}

// drawFan draws the down rod, hub and blades at the current blade angle.
func (g *Game) drawFan() {
	cfg := g.sim.Config()
	fan := cfg.Fan
	hub := toWorld(fan.X, fan.Y, fan.Height)

	rl.DrawLine3D(hub, toWorld(fan.X, fan.Y, cfg.Room.Height), rodColor)
	rl.DrawCylinder(toWorld(fan.X, fan.Y, fan.Height-hubHeight/2), hubRadius, hubRadius, hubHeight, 16, g.fanColor)

	blades := 3
	if m, ok := cfg.Model(fan.Model); ok && m.BladeCount > 0 {
		blades = m.BladeCount
	}
	angle := g.sim.BladeAngle()
	for i := range blades {
		a := angle + float64(i)*2*math.Pi/float64(blades)
		tip := toWorld(fan.X+fan.Radius()*math.Cos(a), fan.Y+fan.Radius()*math.Sin(a), fan.Height)
		rl.DrawCylinderEx(hub, tip, bladeWidth, bladeWidth*0.6, 6, g.fanColor)
	}
}

// drawInfluence draws the fan radius and influence radius on the floor.
func (g *Game) drawInfluence() {
	flow := g.sim.Field().Flow()
	center := toWorld(flow.Center.X, flow.Center.Y, floorLift)
	axis := rl.Vector3{X: 1}
	rl.DrawCircle3D(center, float32(flow.Radius), axis, 90, radiusColor)
	rl.DrawCircle3D(center, float32(flow.InfluenceRadius), axis, 90, influenceColor)
}

// drawParticles draws every particle, sized by speed and colored by the
// active color overlay.
func (g *Game) drawParticles() {
	byZone := g.overlays.IsEnabled(overlay.ZoneColors)
	bySpeed := g.overlays.IsEnabled(overlay.SpeedColors)
	streaks := g.overlays.IsEnabled(overlay.Velocity)

	for _, v := range g.sim.Views() {
		color := rl.SkyBlue
		switch {
		case byZone:
			color = ui.ZoneColor(v.Zone)
		case bySpeed:
			color = ui.SpeedColor(v.Scale)
		}

		p := toWorld(v.Position.X, v.Position.Y, v.Position.Z)
		size := float32(particleSize * v.Scale)
		rl.DrawCube(p, size, size, size, color)

		if streaks {
			end := toWorld(
				v.Position.X+v.Velocity.X*streakLength,
				v.Position.Y+v.Velocity.Y*streakLength,
				v.Position.Z+v.Velocity.Z*streakLength,
			)
			rl.DrawLine3D(p, end, rl.Fade(color, 0.6))
		}
	}
}

// drawUI draws the HUD, metrics panel, control panel and key help.
func (g *Game) drawUI() {
	cfg := g.sim.Config()

	g.hud.Draw(ui.HUDData{
		Title:          "Fanflow",
		ModelName:      cfg.ModelName(cfg.Fan.Model),
		Particles:      g.sim.Field().Len(),
		Frame:          g.sim.Frame(),
		StepsPerUpdate: g.sim.StepsPerUpdate(),
		FPS:            rl.GetFPS(),
		Paused:         g.sim.Paused(),
		View:           g.camera.View.String(),
		Status:         g.status,
	})

	metricsX := int32(g.screenWidth) - metricsWidth - panelMargin
	bottom := g.uiRenderer.DrawSectionsPanel(metricsX, panelMargin, metricsWidth, ui.MetricsSections(), g.metricsData())
	g.drawControlPanel(float32(metricsX), float32(bottom+panelMargin), metricsWidth)

	if g.overlays.IsEnabled(overlay.Controls) {
		g.controls.Draw(g.overlays)
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsHints)
}

// metricsData builds the metrics panel state.
func (g *Game) metricsData() ui.MetricsData {
	text := g.sim.Metrics().Text()
	data := ui.MetricsData{
		Coverage:   text.Coverage,
		AirChanges: text.AirChanges,
		Energy:     text.Energy,
		Cooling:    text.Cooling,
	}
	if stats := g.sim.LastStats(); stats != nil {
		data.HasFlow = true
		data.MeanSpeed = float32(stats.SpeedMean)
		data.BeneathVZ = float32(stats.BeneathFanVZ)
		if maxSpeed := g.sim.Field().Flow().MaxSpeed; maxSpeed > 0 {
			data.SpeedRatio = float32(stats.SpeedMean / maxSpeed)
		}
	}
	return data
}
