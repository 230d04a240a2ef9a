package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Room.Length != 50 || cfg.Room.Width != 50 || cfg.Room.Height != 20 {
		t.Errorf("room = %+v, want 50x50x20", cfg.Room)
	}
	if cfg.Fan.Direction != DirectionDown {
		t.Errorf("direction = %q, want down", cfg.Fan.Direction)
	}
	if got := cfg.Particles.Count(); got != 2500 {
		t.Errorf("medium count = %d, want 2500", got)
	}
	if len(cfg.Models) != 4 {
		t.Errorf("expected 4 fan models, got %d", len(cfg.Models))
	}
	if name := cfg.ModelName("hunter-eco"); name != "Hunter Industrial ECO" {
		t.Errorf("ModelName(hunter-eco) = %q", name)
	}
	if name := cfg.ModelName("nope"); name != "nope" {
		t.Errorf("unknown model name should fall back to id, got %q", name)
	}
}

func TestParseOverlay(t *testing.T) {
	cfg, err := Parse([]byte("room:\n  length: 80\nparticles:\n  density: high\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Room.Length != 80 {
		t.Errorf("length = %v, want 80", cfg.Room.Length)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Room.Width != 50 {
		t.Errorf("width = %v, want default 50", cfg.Room.Width)
	}
	if cfg.Particles.Count() != 5000 {
		t.Errorf("high count = %d, want 5000", cfg.Particles.Count())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero room", "room:\n  height: 0\n"},
		{"negative fan", "fan:\n  rpm: -1\n"},
		{"bad direction", "fan:\n  direction: sideways\n"},
		{"bad density", "particles:\n  density: extreme\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalid", tt.yaml, err)
			}
		})
	}
}

func TestClampToModel(t *testing.T) {
	cfg := Default()
	cfg.Fan.Model = "hunter-eco"
	cfg.Fan.Diameter = 20
	cfg.Fan.CFM = 300000
	cfg.Fan.RPM = 250
	cfg.Fan.X = -5
	cfg.Fan.Height = 40

	clamped := cfg.Clamp()

	if cfg.Fan.Diameter != 14 {
		t.Errorf("diameter = %v, want 14", cfg.Fan.Diameter)
	}
	if cfg.Fan.CFM != 160000 {
		t.Errorf("cfm = %v, want 160000", cfg.Fan.CFM)
	}
	if cfg.Fan.RPM != MaxRPM {
		t.Errorf("rpm = %v, want %d", cfg.Fan.RPM, MaxRPM)
	}
	if cfg.Fan.X != 0 {
		t.Errorf("x = %v, want 0", cfg.Fan.X)
	}
	if cfg.Fan.Height != cfg.Room.Height {
		t.Errorf("height = %v, want %v", cfg.Fan.Height, cfg.Room.Height)
	}
	if len(clamped) != 5 {
		t.Errorf("clamped fields = %v, want 5 entries", clamped)
	}

	// Second pass is a no-op
	if again := cfg.Clamp(); len(again) != 0 {
		t.Errorf("second Clamp changed %v", again)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()

	cp.Room.Length = 99
	cp.Models[0].MaxCFM = 1

	if cfg.Room.Length == 99 {
		t.Error("clone shares room with original")
	}
	if cfg.Models[0].MaxCFM == 1 {
		t.Error("clone shares model catalog with original")
	}
	if _, ok := cp.Model("macroair"); !ok {
		t.Error("clone lost model index")
	}
}

func TestDirectionSign(t *testing.T) {
	if DirectionDown.Sign() != -1 || DirectionUp.Sign() != 1 {
		t.Errorf("signs = %v/%v, want -1/+1", DirectionDown.Sign(), DirectionUp.Sign())
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Fan.RPM = 42

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Fan.RPM != 42 {
		t.Errorf("rpm = %v, want 42", loaded.Fan.RPM)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
