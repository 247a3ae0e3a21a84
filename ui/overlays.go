package ui

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Debug overlay IDs.
const (
	OverlayPerf        OverlayID = "perf"
	OverlayAnchors     OverlayID = "anchors"
	OverlayTrailPaths  OverlayID = "trail_paths"
	OverlayModelBounds OverlayID = "model_bounds"
	OverlayMeshWires   OverlayID = "mesh_wires"
)

// OverlayDescriptor defines an overlay that can be toggled from the keyboard.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // toggle key, 0 = none
	KeyLabel    string // e.g. "F1"
	Category    string // "visual" or "debug"
	On          bool   // enabled at startup
}

var defaultOverlays = []OverlayDescriptor{
	{ID: OverlayPerf, Name: "Frame Timing", Description: "Per-loop frame timing and status line", Key: rl.KeyF1, KeyLabel: "F1", Category: "debug"},
	{ID: OverlayAnchors, Name: "Anchors", Description: "Sphere anchor points", Key: rl.KeyF2, KeyLabel: "F2", Category: "debug"},
	{ID: OverlayTrailPaths, Name: "Trail Paths", Description: "Bezier curves of both trails", Key: rl.KeyF3, KeyLabel: "F3", Category: "debug"},
	{ID: OverlayModelBounds, Name: "Model Bounds", Description: "Bounding sphere of each trail instance", Key: rl.KeyF4, KeyLabel: "F4", Category: "debug"},
	{ID: OverlayMeshWires, Name: "Mesh", Description: "Wireframe of the rotating mesh", Key: rl.KeyF5, KeyLabel: "F5", Category: "visual", On: true},
}

// OverlayRegistry holds overlay descriptors and their on/off state.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the debug overlays.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	for _, d := range defaultOverlays {
		r.Register(d)
	}
	return r
}

// Register adds an overlay. Its initial state is desc.On.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.enabled[desc.ID] = desc.On
}

// Toggle flips an overlay and returns its new state. Unknown IDs stay off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.enabled[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled sets a registered overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, on bool) {
	if _, ok := r.enabled[id]; ok {
		r.enabled[id] = on
	}
}

// IsEnabled reports whether an overlay is on.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns the overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns the overlays of one category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var out []OverlayDescriptor
	for _, d := range r.descriptors {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// HandleKeyPress toggles the overlay bound to key. It returns the overlay,
// its new state, and whether the key was bound.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, d := range r.descriptors {
		if d.Key != 0 && d.Key == key {
			return d.ID, r.Toggle(d.ID), true
		}
	}
	return "", false, false
}

// EnabledOverlays returns the enabled overlays in registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var out []OverlayID
	for _, d := range r.descriptors {
		if r.enabled[d.ID] {
			out = append(out, d.ID)
		}
	}
	return out
}

// Legend returns the key bindings as "[F1] Frame Timing  [F2] ...".
func (r *OverlayRegistry) Legend() string {
	parts := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.KeyLabel != "" {
			parts = append(parts, "["+d.KeyLabel+"] "+d.Name)
		}
	}
	return strings.Join(parts, "  ")
}
