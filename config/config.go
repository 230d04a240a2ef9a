// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Room       RoomConfig       `yaml:"room"`
	Fan        FanConfig        `yaml:"fan"`
	Models     []FanModelConfig `yaml:"models"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Motion     MotionConfig     `yaml:"motion"`
	Comparison ComparisonConfig `yaml:"comparison"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// RoomConfig holds the room dimensions in feet.
// Length runs along X, width along Y, height along Z.
type RoomConfig struct {
	Length float64 `yaml:"length"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Volume returns the room volume in cubic feet.
func (r RoomConfig) Volume() float64 {
	return r.Length * r.Width * r.Height
}

// Direction is the fan's airflow direction.
type Direction string

const (
	DirectionDown Direction = "down"
	DirectionUp   Direction = "up"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionDown || d == DirectionUp
}

// Sign returns -1 for downward flow and +1 for upward flow.
func (d Direction) Sign() float64 {
	if d == DirectionUp {
		return 1
	}
	return -1
}

// FanConfig holds fan placement and operating point.
// X and Y are floor-plan coordinates, Height is the hub height above the floor.
type FanConfig struct {
	Model     string    `yaml:"model"`
	Diameter  float64   `yaml:"diameter"` // ft
	CFM       float64   `yaml:"cfm"`
	RPM       float64   `yaml:"rpm"`
	Direction Direction `yaml:"direction"`
	X         float64   `yaml:"x"`
	Y         float64   `yaml:"y"`
	Height    float64   `yaml:"height"`
}

// Radius returns half the fan diameter.
func (f FanConfig) Radius() float64 {
	return f.Diameter / 2
}

// FanModelConfig describes one entry of the fan model catalog.
type FanModelConfig struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	MaxDiameter float64 `yaml:"max_diameter"`
	MaxCFM      float64 `yaml:"max_cfm"`
	PowerKW     float64 `yaml:"power_kw"`
	BladeCount  int     `yaml:"blade_count"`
	Color       string  `yaml:"color"` // #rrggbb
}

// Density selects how many particles are simulated.
type Density string

const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// Densities lists the density settings in ascending order.
var Densities = []Density{DensityLow, DensityMedium, DensityHigh}

// ParticlesConfig holds particle population parameters.
type ParticlesConfig struct {
	Density Density       `yaml:"density"`
	Counts  DensityCounts `yaml:"counts"`
}

// DensityCounts maps each density setting to a particle count.
type DensityCounts struct {
	Low    int `yaml:"low"`
	Medium int `yaml:"medium"`
	High   int `yaml:"high"`
}

// Count returns the particle count for d. Unknown densities map to zero.
func (c DensityCounts) Count(d Density) int {
	switch d {
	case DensityLow:
		return c.Low
	case DensityMedium:
		return c.Medium
	case DensityHigh:
		return c.High
	}
	return 0
}

// Count returns the particle count for the configured density.
func (p ParticlesConfig) Count() int {
	return p.Counts.Count(p.Density)
}

// MotionConfig holds the tuning constants of the airflow motion rules.
type MotionConfig struct {
	TurbulenceIntensity float64 `yaml:"turbulence_intensity"` // Max per-particle turbulence coefficient
	VorticityFactor     float64 `yaml:"vorticity_factor"`     // Max per-particle swirl coefficient
	BoundaryThickness   float64 `yaml:"boundary_thickness"`   // ft
	ThermalGradient     float64 `yaml:"thermal_gradient"`     // Max per-particle buoyancy coefficient
	Inertia             float64 `yaml:"inertia"`              // Fraction of previous velocity kept
	BaseSpeed           float64 `yaml:"base_speed"`           // maxSpeed = base_speed * power factor
	BaselineCFM         float64 `yaml:"baseline_cfm"`
	BaselineRPM         float64 `yaml:"baseline_rpm"`
	AgeStep             float64 `yaml:"age_step"`      // Age added per frame
	MinAge              float64 `yaml:"min_age"`       // Lower bound of the randomized reset age
	MaxAge              float64 `yaml:"max_age"`       // Upper bound of the randomized reset age
	ResetChance         float64 `yaml:"reset_chance"`  // Per-frame random reset probability
	EdgeMargin          float64 `yaml:"edge_margin"`   // Clamp margin from each room surface
	WallBand            float64 `yaml:"wall_band"`     // Width of the wall seeding band
	InitialSpeed        float64 `yaml:"initial_speed"` // Max per-component speed at spawn
}

// ComparisonConfig holds the second fan used by the comparison chart.
type ComparisonConfig struct {
	Model    string  `yaml:"model"`
	Diameter float64 `yaml:"diameter"`
	CFM      float64 `yaml:"cfm"`
	RPM      float64 `yaml:"rpm"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Frames per stats window
	PerfWindow  int `yaml:"perf_window"`  // Frames averaged by the perf collector
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	ModelIndex map[string]int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse overlays data onto the embedded defaults. Empty data yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(data) > 0 {
		// A user-supplied catalog replaces the default one wholesale
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()
	cfg.Clamp()

	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ModelIndex = make(map[string]int, len(c.Models))
	for i, m := range c.Models {
		c.Derived.ModelIndex[m.ID] = i
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 300
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
	if c.Motion.MaxAge < c.Motion.MinAge {
		c.Motion.MaxAge = c.Motion.MinAge
	}
}

// Validate rejects configurations the simulation cannot run.
func (c *Config) Validate() error {
	if c.Room.Length <= 0 || c.Room.Width <= 0 || c.Room.Height <= 0 {
		return fmt.Errorf("%w: room dimensions must be positive, got %gx%gx%g",
			ErrInvalid, c.Room.Length, c.Room.Width, c.Room.Height)
	}
	if c.Fan.Diameter <= 0 || c.Fan.CFM <= 0 || c.Fan.RPM <= 0 {
		return fmt.Errorf("%w: fan diameter, cfm and rpm must be positive", ErrInvalid)
	}
	if !c.Fan.Direction.Valid() {
		return fmt.Errorf("%w: unknown fan direction %q", ErrInvalid, c.Fan.Direction)
	}
	if c.Particles.Count() <= 0 {
		return fmt.Errorf("%w: density %q has no particle count", ErrInvalid, c.Particles.Density)
	}
	if c.Motion.BaselineCFM <= 0 || c.Motion.BaselineRPM <= 0 {
		return fmt.Errorf("%w: motion baselines must be positive", ErrInvalid)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("%w: fan model catalog is empty", ErrInvalid)
	}
	return nil
}

// Fan RPM limits applied by Clamp.
const (
	MinRPM = 10
	MaxRPM = 100
)

// Clamp limits the fan to its model's maxima and keeps it inside the room.
// It returns the names of the fields that were changed.
func (c *Config) Clamp() []string {
	var clamped []string
	clampField := func(name string, v *float64, lo, hi float64) {
		if nv := min(max(*v, lo), hi); nv != *v {
			slog.Warn("config value clamped", "field", name, "from", *v, "to", nv)
			*v = nv
			clamped = append(clamped, name)
		}
	}

	if m, ok := c.Model(c.Fan.Model); ok {
		clampField("fan.diameter", &c.Fan.Diameter, 0, m.MaxDiameter)
		clampField("fan.cfm", &c.Fan.CFM, 0, m.MaxCFM)
	}
	clampField("fan.rpm", &c.Fan.RPM, MinRPM, MaxRPM)
	clampField("fan.x", &c.Fan.X, 0, c.Room.Length)
	clampField("fan.y", &c.Fan.Y, 0, c.Room.Width)
	clampField("fan.height", &c.Fan.Height, min(1, c.Room.Height), c.Room.Height)

	if m, ok := c.Model(c.Comparison.Model); ok {
		clampField("comparison.diameter", &c.Comparison.Diameter, 0, m.MaxDiameter)
		clampField("comparison.cfm", &c.Comparison.CFM, 0, m.MaxCFM)
	}
	clampField("comparison.rpm", &c.Comparison.RPM, MinRPM, MaxRPM)

	return clamped
}

// Model looks up a fan model by ID.
func (c *Config) Model(id string) (FanModelConfig, bool) {
	if c.Derived.ModelIndex == nil {
		c.computeDerived()
	}
	i, ok := c.Derived.ModelIndex[id]
	if !ok {
		return FanModelConfig{}, false
	}
	return c.Models[i], true
}

// ModelName returns the display name of a model, or the ID if unknown.
func (c *Config) ModelName(id string) string {
	if m, ok := c.Model(id); ok {
		return m.Name
	}
	return id
}

// ComparisonFan returns the comparison fan mounted where the primary fan is.
func (c *Config) ComparisonFan() FanConfig {
	f := c.Fan
	f.Model = c.Comparison.Model
	f.Diameter = c.Comparison.Diameter
	f.CFM = c.Comparison.CFM
	f.RPM = c.Comparison.RPM
	return f
}

// Clone returns a deep copy that can be edited without affecting c.
func (c *Config) Clone() *Config {
	out := *c
	out.Models = append([]FanModelConfig(nil), c.Models...)
	out.Derived.ModelIndex = nil
	out.computeDerived()
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
