// Package main searches fan operating points with CMA-ES: the lowest energy
// draw that still reaches target air changes and floor coverage in a room.
package main

import (
	"github.com/pthm-cable/fanflow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// Lower bounds not set by the model catalog.
const (
	minDiameter = 4
	minCFM      = 10000
)

// NewParamVector creates the fan parameters, bounded by the limits of the
// configured fan model and defaulting to the configured fan.
func NewParamVector(cfg *config.Config) *ParamVector {
	maxDiameter, maxCFM := 24.0, 400000.0
	if m, ok := cfg.Model(cfg.Fan.Model); ok {
		maxDiameter, maxCFM = m.MaxDiameter, m.MaxCFM
	}
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "diameter", Path: "fan.diameter", Min: minDiameter, Max: maxDiameter},
			{Name: "cfm", Path: "fan.cfm", Min: minCFM, Max: maxCFM},
			{Name: "rpm", Path: "fan.rpm", Min: config.MinRPM, Max: config.MaxRPM},
		},
	}
	current := pv.Clamp(pv.ExtractFromConfig(cfg))
	for i := range pv.Specs {
		pv.Specs[i].Default = current[i]
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Fan.Diameter = clamped[0]
	cfg.Fan.CFM = clamped[1]
	cfg.Fan.RPM = clamped[2]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{cfg.Fan.Diameter, cfg.Fan.CFM, cfg.Fan.RPM}
}
