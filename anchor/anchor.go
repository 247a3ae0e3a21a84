// Package anchor keeps the connector lines of the four panels attached to
// fixed points on the rotating scene mesh.
//
// Each frame the start of every line is derived from its card's bounding
// box and the far end from a fixed direction on the mesh, projected through
// the active camera. Until the scene can provide both mesh and camera the
// far end falls back to the screen center and the projector keeps retrying.
package anchor

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/landing/camera"
	"github.com/pthm-cable/landing/config"
)

// Rect is a screen-space bounding box in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Point is a screen-space position in pixels.
type Point struct {
	X, Y float64
}

// Mesh maps mesh-local points into world space.
type Mesh interface {
	LocalToWorld(local r3.Vec) r3.Vec
}

// Camera maps world points into normalized device coordinates.
// *camera.Camera satisfies it.
type Camera interface {
	ProjectNDC(world r3.Vec) r3.Vec
}

// Scene is the query side of the external 3D world. Either handle may be
// absent while the world initializes.
type Scene interface {
	Mesh() (Mesh, bool)
	Camera() (Camera, bool)
}

// Card is the bounding-box query of a panel card.
type Card interface {
	Bounds() (Rect, bool)
}

// LineView receives the computed connector geometry.
type LineView interface {
	SetLine(start, target Point)
	SetNode(p Point)
	SetLock(p Point)
}

// Spec is the fixed anchor configuration of one connector line.
type Spec struct {
	AnchorX, AnchorY float64 // Card-relative start, [0,1]
	Sphere           r3.Vec  // Unit direction from mesh center
}

// SpecFromConfig converts an anchor entry, normalizing the direction.
func SpecFromConfig(cfg config.AnchorEntryConfig) Spec {
	dir := r3.Vec{X: cfg.Sphere[0], Y: cfg.Sphere[1], Z: cfg.Sphere[2]}
	if r3.Norm(dir) > 0 {
		dir = r3.Unit(dir)
	}
	return Spec{AnchorX: cfg.AnchorX, AnchorY: cfg.AnchorY, Sphere: dir}
}

// StartPoint returns the line start for a card bounding box.
func (s Spec) StartPoint(r Rect) Point {
	return Point{X: r.X + s.AnchorX*r.W, Y: r.Y + s.AnchorY*r.H}
}

// projectWorld projects a world point through cam into a viewport of the
// given size.
func projectWorld(world r3.Vec, cam Camera, viewportW, viewportH float64) Point {
	x, y := camera.NDCToScreen(cam.ProjectNDC(world), viewportW, viewportH)
	return Point{X: x, Y: y}
}

// Center returns the viewport center, the fallback target.
func Center(viewportW, viewportH float64) Point {
	return Point{X: viewportW / 2, Y: viewportH / 2}
}
