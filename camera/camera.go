// Package camera provides an orbit camera framing the room from preset views.
package camera

import "math"

// View is a camera preset.
type View uint8

const (
	View3D   View = iota // Elevated three-quarter view
	ViewTop              // Looking straight down at the floor plan
	ViewSide             // Looking along the room width at the length/height plane
	numViews
)

var viewNames = [...]string{"3d", "top", "side"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "unknown"
}

// ParseView maps a view name to its preset. ok is false for unknown names.
func ParseView(s string) (View, bool) {
	for i, name := range viewNames {
		if name == s {
			return View(i), true
		}
	}
	return View3D, false
}

// Next cycles to the following preset.
func (v View) Next() View {
	return (v + 1) % numViews
}

// Orbit limits.
const (
	FovY        = 45.0 // Vertical field of view in degrees
	maxPitch    = 1.55 // Just short of straight down so the up vector stays valid
	minPitch    = 0.0
	fitMargin   = 1.15
	minZoom     = 0.3
	maxZoom     = 3.0
	presetPitch = 0.6
	presetYaw   = -math.Pi / 4
	sidePitch   = 0.05
	sideYaw     = -math.Pi / 2
	topYaw      = -math.Pi / 2
	defaultZoom = 1.0
)

// Camera orbits the room center. All coordinates are room coordinates in
// feet: X along the length, Y along the width, Z up.
type Camera struct {
	// Target is the orbit center
	TargetX, TargetY, TargetZ float32

	Yaw   float32 // Radians around the vertical axis, 0 looks from +X
	Pitch float32 // Radians above the horizontal
	Zoom  float32 // 1 frames the whole room

	View View

	roomL, roomW, roomH float32
	fit                 float32 // Distance that frames the room at zoom 1
}

// New creates a camera framing a room of the given dimensions in the 3D preset.
func New(length, width, height float32) *Camera {
	c := &Camera{}
	c.Frame(length, width, height)
	c.SetView(View3D)
	return c
}

// Frame re-targets the camera on a room, keeping the current view.
func (c *Camera) Frame(length, width, height float32) {
	c.roomL, c.roomW, c.roomH = length, width, height
	c.TargetX, c.TargetY, c.TargetZ = length/2, width/2, height/2

	diag := math.Sqrt(float64(length*length + width*width + height*height))
	halfFov := FovY / 2 * math.Pi / 180
	c.fit = float32(diag / 2 / math.Tan(halfFov) * fitMargin)
}

// SetView applies a preset and resets the zoom.
func (c *Camera) SetView(v View) {
	c.View = v
	c.Zoom = defaultZoom
	switch v {
	case ViewTop:
		c.Yaw, c.Pitch = topYaw, maxPitch
	case ViewSide:
		c.Yaw, c.Pitch = sideYaw, sidePitch
	default:
		c.View = View3D
		c.Yaw, c.Pitch = presetYaw, presetPitch
	}
}

// Reset returns to the current preset.
func (c *Camera) Reset() {
	c.SetView(c.View)
}

// Distance is the current distance from the target.
func (c *Camera) Distance() float32 {
	return c.fit / c.Zoom
}

// Position returns the eye position.
func (c *Camera) Position() (x, y, z float32) {
	d := float64(c.Distance())
	yaw, pitch := float64(c.Yaw), float64(c.Pitch)
	x = c.TargetX + float32(d*math.Cos(pitch)*math.Cos(yaw))
	y = c.TargetY + float32(d*math.Cos(pitch)*math.Sin(yaw))
	z = c.TargetZ + float32(d*math.Sin(pitch))
	return x, y, z
}

// Orbit rotates the camera by the given angles in radians.
// Only the 3D preset can be orbited.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	if c.View != View3D {
		return
	}
	c.Yaw = float32(math.Remainder(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = clamp(c.Pitch+dPitch, minPitch, maxPitch)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, minZoom, maxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
