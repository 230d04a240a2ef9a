package camera

import (
	"math"
	"testing"
)

func dist(c *Camera) float64 {
	x, y, z := c.Position()
	dx, dy, dz := float64(x-c.TargetX), float64(y-c.TargetY), float64(z-c.TargetZ)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func TestNewTargetsRoomCenter(t *testing.T) {
	cam := New(50, 40, 20)

	if cam.TargetX != 25 || cam.TargetY != 20 || cam.TargetZ != 10 {
		t.Errorf("target = (%v, %v, %v), want (25, 20, 10)", cam.TargetX, cam.TargetY, cam.TargetZ)
	}
	if cam.View != View3D {
		t.Errorf("view = %v, want 3d", cam.View)
	}
}

func TestFitContainsRoom(t *testing.T) {
	cam := New(50, 50, 20)

	// The bounding sphere of the room must fit inside the vertical field of view
	radius := math.Sqrt(50*50+50*50+20*20) / 2
	halfFov := FovY / 2 * math.Pi / 180
	if got := math.Asin(radius / dist(cam)); got > halfFov {
		t.Errorf("room subtends %v rad, exceeds half fov %v", got, halfFov)
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		view  View
		check func(t *testing.T, c *Camera)
	}{
		{ViewTop, func(t *testing.T, c *Camera) {
			x, y, z := c.Position()
			tol := 0.05 * float64(c.Distance())
			if math.Abs(float64(x-c.TargetX)) > tol || math.Abs(float64(y-c.TargetY)) > tol {
				t.Errorf("top view eye (%v, %v) not above target", x, y)
			}
			if z <= c.TargetZ {
				t.Errorf("top view eye z = %v, want above %v", z, c.TargetZ)
			}
		}},
		{ViewSide, func(t *testing.T, c *Camera) {
			x, y, _ := c.Position()
			if math.Abs(float64(x-c.TargetX)) > 0.01 {
				t.Errorf("side view eye x = %v, want %v", x, c.TargetX)
			}
			if y >= 0 {
				t.Errorf("side view eye y = %v, want in front of the room", y)
			}
		}},
		{View3D, func(t *testing.T, c *Camera) {
			_, _, z := c.Position()
			if z <= c.TargetZ {
				t.Errorf("3d view eye z = %v, want elevated", z)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			cam := New(50, 50, 20)
			cam.SetView(tt.view)
			tt.check(t, cam)
		})
	}
}

func TestOrbitOnlyIn3D(t *testing.T) {
	cam := New(50, 50, 20)
	cam.SetView(ViewTop)
	yaw := cam.Yaw
	cam.Orbit(1, 0)
	if cam.Yaw != yaw {
		t.Error("top view should not orbit")
	}

	cam.SetView(View3D)
	cam.Orbit(0, 10)
	if cam.Pitch != maxPitch {
		t.Errorf("pitch = %v, want clamped to %v", cam.Pitch, maxPitch)
	}
	cam.Orbit(0, -10)
	if cam.Pitch != minPitch {
		t.Errorf("pitch = %v, want clamped to %v", cam.Pitch, minPitch)
	}
}

func TestZoomClampAndReset(t *testing.T) {
	cam := New(50, 50, 20)
	base := dist(cam)

	cam.ZoomBy(2)
	if got := dist(cam); math.Abs(got-base/2) > 0.01 {
		t.Errorf("distance at zoom 2 = %v, want %v", got, base/2)
	}
	cam.ZoomBy(100)
	if cam.Zoom != maxZoom {
		t.Errorf("zoom = %v, want %v", cam.Zoom, maxZoom)
	}

	cam.Reset()
	if cam.Zoom != 1 {
		t.Errorf("zoom after reset = %v, want 1", cam.Zoom)
	}
}

func TestParseViewAndNext(t *testing.T) {
	for _, v := range []View{View3D, ViewTop, ViewSide} {
		got, ok := ParseView(v.String())
		if !ok || got != v {
			t.Errorf("ParseView(%q) = %v, %v", v.String(), got, ok)
		}
	}
	if _, ok := ParseView("iso"); ok {
		t.Error("ParseView accepted an unknown view")
	}
	if ViewSide.Next() != View3D {
		t.Errorf("ViewSide.Next() = %v, want 3d", ViewSide.Next())
	}
}
