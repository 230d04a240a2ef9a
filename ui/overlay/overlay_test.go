package overlay

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaults(t *testing.T) {
	r := NewRegistry()
	want := map[ID]bool{
		ZoneColors:    true,
		SpeedColors:   false,
		Velocity:      false,
		FloorGrid:     true,
		InfluenceRing: false,
		Controls:      false,
	}
	for id, on := range want {
		if got := r.IsEnabled(id); got != on {
			t.Errorf("%s enabled = %v, want %v", id, got, on)
		}
	}
	if diff := cmp.Diff([]string{"particles", "room", "help"}, r.Categories()); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestColorOverlaysAreExclusive(t *testing.T) {
	r := NewRegistry()

	if !r.Toggle(SpeedColors) {
		t.Fatal("speed colors not enabled")
	}
	if r.IsEnabled(ZoneColors) {
		t.Error("zone colors still enabled with speed colors on")
	}

	r.SetEnabled(ZoneColors, true)
	if r.IsEnabled(SpeedColors) {
		t.Error("speed colors still enabled with zone colors on")
	}

	r.SetEnabled(ZoneColors, false)
	if r.IsEnabled(ZoneColors) || r.IsEnabled(SpeedColors) {
		t.Error("disabling one color overlay should not enable the other")
	}
}

func TestHandleKeyPress(t *testing.T) {
	tests := []struct {
		key     int32
		wantID  ID
		wantOn  bool
		matched bool
	}{
		{'V', Velocity, true, true},
		{'V', Velocity, false, true},
		{'G', FloorGrid, false, true},
		{'C', SpeedColors, true, true},
		{'Q', "", false, false},
		{0, "", false, false},
	}

	r := NewRegistry()
	for _, tt := range tests {
		id, on, ok := r.HandleKeyPress(tt.key)
		if id != tt.wantID || on != tt.wantOn || ok != tt.matched {
			t.Errorf("HandleKeyPress(%q) = %q, %v, %v; want %q, %v, %v",
				tt.key, id, on, ok, tt.wantID, tt.wantOn, tt.matched)
		}
	}
	if r.IsEnabled(ZoneColors) {
		t.Error("speed colors key left zone colors enabled")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	r := NewRegistry()
	r.Toggle(SpeedColors)
	r.Toggle(FloorGrid)
	r.Toggle(InfluenceRing)
	r.Toggle(Controls)

	r.Reset()

	fresh := NewRegistry()
	for _, cat := range fresh.Categories() {
		for _, desc := range fresh.ByCategory(cat) {
			if got := r.IsEnabled(desc.ID); got != desc.Default {
				t.Errorf("%s after reset = %v, want %v", desc.ID, got, desc.Default)
			}
		}
	}
}

func TestUnknownID(t *testing.T) {
	r := NewRegistry()
	if r.Toggle("missing") {
		t.Error("Toggle of unknown overlay returned true")
	}
	r.SetEnabled("missing", true)
	if r.IsEnabled("missing") {
		t.Error("unknown overlay became enabled")
	}
}
