package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fanflow/components"
	"github.com/pthm-cable/fanflow/ui/overlay"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	ModelName      string
	Particles      int
	Frame          int
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	View           string
	Status         string // Last export or error message, empty hides it
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("%s | Particles: %d", data.ModelName, data.Particles),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | Speed: %dx | FPS: %d | View: %s", data.Frame, data.StepsPerUpdate, data.FPS, data.View),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	if data.Status != "" {
		rl.DrawText(data.Status, 10, 95, 14, rl.SkyBlue)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// MetricsSections describes the metrics panel. data must be a MetricsData.
func MetricsSections() []SectionDescriptor {
	text := func(get func(MetricsData) string) func(any) string {
		return func(d any) string { return get(d.(MetricsData)) }
	}
	return []SectionDescriptor{
		{
			ID:    "metrics",
			Title: "Performance Metrics",
			Fields: []FieldDescriptor{
				{ID: "coverage", Label: "Coverage", Widget: WidgetText, TextGetter: text(func(m MetricsData) string { return m.Coverage })},
				{ID: "ach", Label: "Air Changes", Widget: WidgetText, TextGetter: text(func(m MetricsData) string { return m.AirChanges })},
				{ID: "energy", Label: "Energy", Widget: WidgetText, TextGetter: text(func(m MetricsData) string { return m.Energy })},
				{ID: "cooling", Label: "Cooling", Widget: WidgetText, TextGetter: text(func(m MetricsData) string { return m.Cooling })},
			},
		},
		{
			ID:    "flow",
			Title: "Airflow",
			Visible: func(d any) bool {
				return d.(MetricsData).HasFlow
			},
			Fields: []FieldDescriptor{
				{ID: "mean_speed", Label: "Mean speed", Widget: WidgetText, Format: "%.3f ft/f",
					Getter: func(d any) float32 { return d.(MetricsData).MeanSpeed }},
				{ID: "speed_ratio", Label: "Of max", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(d any) float32 { return d.(MetricsData).SpeedRatio }},
				{ID: "beneath_vz", Label: "Under fan vz", Widget: WidgetText, Format: "%+.3f ft/f",
					Getter: func(d any) float32 { return d.(MetricsData).BeneathVZ }},
			},
		},
	}
}

// MetricsData is the display state of the metrics panel.
type MetricsData struct {
	Coverage   string
	AirChanges string
	Energy     string
	Cooling    string

	HasFlow    bool // A telemetry window has been flushed
	MeanSpeed  float32
	SpeedRatio float32 // Mean speed over the field's max speed
	BeneathVZ  float32
}

// Zone colors.
var zoneColors = [components.NumZones]rl.Color{
	components.ZoneOpen:     {R: 90, G: 170, B: 255, A: 255},
	components.ZoneUnderFan: {R: 255, G: 255, B: 255, A: 255},
	components.ZoneFloor:    {R: 46, G: 204, B: 113, A: 255},
	components.ZoneWall:     {R: 243, G: 156, B: 18, A: 255},
	components.ZoneCeiling:  {R: 155, G: 89, B: 182, A: 255},
}

// ZoneColor returns the display color of a zone.
func ZoneColor(z components.Zone) rl.Color {
	if int(z) < len(zoneColors) {
		return zoneColors[z]
	}
	return rl.Gray
}

// SpeedColor maps a speed scale in [0.5, 1.5] from blue (slow) to red (fast).
func SpeedColor(scale float64) rl.Color {
	t := float32(min(max(scale-0.5, 0), 1))
	return rl.Color{
		R: uint8(40 + 215*t),
		G: uint8(120 + 60*(1-abs32(2*t-1))),
		B: uint8(255 * (1 - t)),
		A: 255,
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// ControlsPanel renders the overlay key list.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	r := NewRenderer()
	r.Theme.LabelWidth = 150
	return &ControlsPanel{
		renderer: r,
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders every overlay with its key and state, grouped by category.
// It returns the bottom Y of the panel.
func (c *ControlsPanel) Draw(overlays *overlay.Registry) int32 {
	return c.renderer.DrawSectionsPanel(c.x, c.y, c.width, OverlaySections(overlays), overlays)
}

// OverlaySections builds one section per overlay category.
func OverlaySections(overlays *overlay.Registry) []SectionDescriptor {
	var sections []SectionDescriptor
	for _, cat := range overlays.Categories() {
		sd := SectionDescriptor{ID: cat, Title: categoryLabel(cat)}
		for _, desc := range overlays.ByCategory(cat) {
			id := desc.ID
			sd.Fields = append(sd.Fields, FieldDescriptor{
				ID:     string(id),
				Label:  "[" + desc.KeyLabel + "] " + desc.Name,
				Widget: WidgetText,
				TextGetter: func(d any) string {
					if d.(*overlay.Registry).IsEnabled(id) {
						return "on"
					}
					return "off"
				},
			})
		}
		sections = append(sections, sd)
	}
	return sections
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "particles":
		return "Particles"
	case "room":
		return "Room"
	case "help":
		return "Help"
	}
	return cat
}
