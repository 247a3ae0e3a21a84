package anchor

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Entry is the per-key connector state. Handles are borrowed.
type Entry struct {
	Key  string
	Spec Spec
	Card Card
	View LineView

	Start     Point
	Target    Point
	HasStart  bool
	HasTarget bool

	// World-space sphere anchor captured when the lock latched.
	world r3.Vec
}

// Projector recomputes connector endpoints every frame.
//
// Targets latch: once mesh and camera have produced a projection the
// projector stops querying the scene and reuses the cached targets. The
// world-space anchors are frozen at lock; a resize only reprojects them
// into the new viewport.
type Projector struct {
	scene   Scene
	entries []*Entry
	byKey   map[string]*Entry

	viewportW, viewportH float64
	locked               bool
	lockedCam            Camera

	logger *slog.Logger
}

// NewProjector creates a projector for the given viewport. scene may be nil.
func NewProjector(scene Scene, viewportW, viewportH float64, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		scene:     scene,
		byKey:     make(map[string]*Entry),
		viewportW: viewportW,
		viewportH: viewportH,
		logger:    logger,
	}
}

// Add registers a connector line. Entries update in key order.
func (p *Projector) Add(key string, spec Spec, card Card, view LineView) *Entry {
	e := &Entry{Key: key, Spec: spec, Card: card, View: view}
	p.entries = append(p.entries, e)
	sort.Slice(p.entries, func(i, j int) bool { return p.entries[i].Key < p.entries[j].Key })
	p.byKey[key] = e
	return e
}

// Entry returns the entry for key.
func (p *Projector) Entry(key string) (*Entry, bool) {
	e, ok := p.byKey[key]
	return e, ok
}

// Locked reports whether targets have latched onto the mesh.
func (p *Projector) Locked() bool { return p.locked }

// Tick recomputes every line. It always asks to run again.
func (p *Projector) Tick(time.Time) bool {
	p.Update()
	return true
}

// Resize adopts a new viewport and recomputes synchronously. Latched
// targets are reprojected from their frozen world positions; the mesh is
// not consulted again.
func (p *Projector) Resize(viewportW, viewportH float64) {
	p.viewportW = viewportW
	p.viewportH = viewportH
	if p.locked {
		for _, e := range p.entries {
			e.Target = projectWorld(e.world, p.lockedCam, viewportW, viewportH)
		}
	}
	p.Update()
}

// Update recomputes starts, resolves targets and writes every view.
func (p *Projector) Update() {
	p.refreshStarts()
	p.refreshTargets()

	for _, e := range p.entries {
		if e.View == nil || !e.HasStart {
			continue
		}
		e.View.SetLine(e.Start, e.Target)
		e.View.SetNode(e.Target)
		e.View.SetLock(e.Start)
	}
}

func (p *Projector) refreshStarts() {
	for _, e := range p.entries {
		e.HasStart = false
		if e.Card == nil {
			continue
		}
		r, ok := e.Card.Bounds()
		if !ok {
			continue
		}
		e.Start = e.Spec.StartPoint(r)
		e.HasStart = true
	}
}

func (p *Projector) refreshTargets() {
	if p.locked {
		return
	}

	mesh, cam, ok := p.handles()
	if !ok {
		center := Center(p.viewportW, p.viewportH)
		for _, e := range p.entries {
			e.Target = center
			e.HasTarget = true
		}
		return
	}

	for _, e := range p.entries {
		e.world = mesh.LocalToWorld(e.Spec.Sphere)
		e.Target = projectWorld(e.world, cam, p.viewportW, p.viewportH)
		e.HasTarget = true
	}
	p.locked = true
	p.lockedCam = cam
	p.logger.Debug("anchors locked", "entries", len(p.entries))
}

func (p *Projector) handles() (Mesh, Camera, bool) {
	if p.scene == nil {
		return nil, nil, false
	}
	mesh, ok := p.scene.Mesh()
	if !ok || mesh == nil {
		return nil, nil, false
	}
	cam, ok := p.scene.Camera()
	if !ok || cam == nil {
		return nil, nil, false
	}
	return mesh, cam, true
}
