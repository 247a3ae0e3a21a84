// Package geom builds the procedural branching model and evaluates the
// Bezier paths it travels along.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Capsule is a rounded rod: a cylinder of the given radius between A and B
// closed by two hemispherical caps.
type Capsule struct {
	A, B   r3.Vec
	Radius float64
}

// NewCapsule returns a capsule centered on the origin along +Y whose
// cylindrical section is length long.
func NewCapsule(radius, length float64) Capsule {
	half := length / 2
	return Capsule{
		A:      r3.Vec{Y: -half},
		B:      r3.Vec{Y: half},
		Radius: radius,
	}
}

// Segment returns a capsule running from base along dir for length.
func Segment(base, dir r3.Vec, radius, length float64) Capsule {
	return Capsule{
		A:      base,
		B:      r3.Add(base, r3.Scale(length, r3.Unit(dir))),
		Radius: radius,
	}
}

// Length returns the length of the cylindrical section.
func (c Capsule) Length() float64 {
	return r3.Norm(r3.Sub(c.B, c.A))
}

// Height returns the overall extent including both caps.
func (c Capsule) Height() float64 {
	return c.Length() + 2*c.Radius
}

// Distance returns the signed distance from p to the capsule surface.
func (c Capsule) Distance(p r3.Vec) float64 {
	ab := r3.Sub(c.B, c.A)
	ap := r3.Sub(p, c.A)
	t := 0.0
	if d := r3.Dot(ab, ab); d > 0 {
		t = math.Max(0, math.Min(1, r3.Dot(ap, ab)/d))
	}
	closest := r3.Add(c.A, r3.Scale(t, ab))
	return r3.Norm(r3.Sub(p, closest)) - c.Radius
}

// Transform places the capsule: scale, then rotate, then translate.
func (c Capsule) Transform(t Transform) Capsule {
	return Capsule{
		A:      t.Apply(c.A),
		B:      t.Apply(c.B),
		Radius: c.Radius * t.Scale,
	}
}

// Euler is an XYZ rotation in radians, applied X first.
type Euler struct {
	X, Y, Z float64
}

// Rotate applies the rotation to v.
func (e Euler) Rotate(v r3.Vec) r3.Vec {
	v = r3.NewRotation(e.X, r3.Vec{X: 1}).Rotate(v)
	v = r3.NewRotation(e.Y, r3.Vec{Y: 1}).Rotate(v)
	return r3.NewRotation(e.Z, r3.Vec{Z: 1}).Rotate(v)
}

// Transform is a uniform scale, Euler rotation and translation.
type Transform struct {
	Position r3.Vec
	Rotation Euler
	Scale    float64
}

// Apply maps a model-space point into world space.
func (t Transform) Apply(v r3.Vec) r3.Vec {
	return r3.Add(t.Position, t.Rotation.Rotate(r3.Scale(t.Scale, v)))
}
