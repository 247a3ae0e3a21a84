// Package components defines ECS components for trail instances.
package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/landing/geom"
)

// PathPos is an instance's fixed parameter along its trail path.
// The rendered position is (T + trail flow) wrapped to [0, 1).
type PathPos struct {
	Trail int
	T     float64
}

// Spin holds per-axis rotation rates in radians per frame.
type Spin struct {
	X, Y, Z float64
}

// Scale is the uniform instance scale.
type Scale struct {
	S float64
}

// Orientation is the current rotation of an instance.
type Orientation struct {
	X, Y, Z float64
}

// Advance adds one frame of spin.
func (o *Orientation) Advance(s Spin) {
	o.X += s.X
	o.Y += s.Y
	o.Z += s.Z
}

// Euler converts the orientation for geometry transforms.
func (o Orientation) Euler() geom.Euler {
	return geom.Euler{X: o.X, Y: o.Y, Z: o.Z}
}

// Placement is the world position computed on the last tick.
type Placement struct {
	Pos r3.Vec
}
