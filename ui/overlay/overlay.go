// Package overlay tracks which view overlays are switched on.
// Keys are raylib key codes, which match upper-case ASCII for letters.
package overlay

// ID uniquely identifies an overlay.
type ID string

// Standard overlay IDs.
const (
	ZoneColors    ID = "zone_colors"
	SpeedColors   ID = "speed_colors"
	Velocity      ID = "velocity"
	FloorGrid     ID = "floor_grid"
	InfluenceRing ID = "influence_ring"
	Controls      ID = "controls"
)

// Descriptor defines an overlay that can be toggled.
type Descriptor struct {
	ID          ID     // Unique identifier
	Name        string // Display name
	Description string // What this overlay shows
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display (e.g., "Z", "V")
	Category    string // Grouping (e.g., "particles", "room")
	Exclusive   []ID   // Other overlays to disable when this is enabled
	Default     bool   // Enabled at startup and after a reset
}

// Registry manages overlay state and metadata.
type Registry struct {
	descriptors []Descriptor
	byID        map[ID]Descriptor
	enabled     map[ID]bool
}

// NewRegistry creates a registry with the standard overlays.
func NewRegistry() *Registry {
	reg := &Registry{
		byID:    make(map[ID]Descriptor),
		enabled: make(map[ID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *Registry) registerDefaults() {
	r.Register(Descriptor{
		ID:          ZoneColors,
		Name:        "Zone Colors",
		Description: "Color particles by the zone they occupy",
		Key:         'Z',
		KeyLabel:    "Z",
		Category:    "particles",
		Exclusive:   []ID{SpeedColors},
		Default:     true,
	})

	r.Register(Descriptor{
		ID:          SpeedColors,
		Name:        "Speed Colors",
		Description: "Color particles from slow to fast",
		Key:         'C',
		KeyLabel:    "C",
		Category:    "particles",
		Exclusive:   []ID{ZoneColors},
	})

	r.Register(Descriptor{
		ID:          Velocity,
		Name:        "Velocity Streaks",
		Description: "Draw each particle's displacement",
		Key:         'V',
		KeyLabel:    "V",
		Category:    "particles",
	})

	r.Register(Descriptor{
		ID:          FloorGrid,
		Name:        "Floor Grid",
		Description: "Grid lines on the floor",
		Key:         'G',
		KeyLabel:    "G",
		Category:    "room",
		Default:     true,
	})

	r.Register(Descriptor{
		ID:          InfluenceRing,
		Name:        "Fan Influence",
		Description: "Show the fan influence radius on the floor",
		Key:         'I',
		KeyLabel:    "I",
		Category:    "room",
	})

	r.Register(Descriptor{
		ID:          Controls,
		Name:        "Key Help",
		Description: "List overlay keys",
		Key:         'H',
		KeyLabel:    "H",
		Category:    "help",
	})
}

// Register adds an overlay in its default state.
func (r *Registry) Register(desc Descriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and returns the new state.
func (r *Registry) Toggle(id ID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	on := !r.enabled[id]
	r.SetEnabled(id, on)
	return on
}

// SetEnabled sets an overlay's state. Enabling it disables its exclusive peers.
func (r *Registry) SetEnabled(id ID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// Reset restores every overlay to its default state.
func (r *Registry) Reset() {
	for _, desc := range r.descriptors {
		r.SetEnabled(desc.ID, desc.Default)
	}
}

// IsEnabled returns whether an overlay is active.
func (r *Registry) IsEnabled(id ID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *Registry) ByCategory(category string) []Descriptor {
	var result []Descriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key.
// It returns the overlay ID, its new state and whether any overlay matched.
func (r *Registry) HandleKeyPress(key int32) (ID, bool, bool) {
	if key == 0 {
		return "", false, false
	}
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
