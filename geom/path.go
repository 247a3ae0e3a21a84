package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bezier is a cubic Bezier curve in normalized screen space
// (x right, y down, [0,1] covers the viewport).
type Bezier [4]r2.Vec

// At evaluates the curve at t in [0,1] using the Bernstein form.
// At(0) and At(1) return the first and last control points exactly.
func (b Bezier) At(t float64) r2.Vec {
	mt := 1 - t
	w0 := mt * mt * mt
	w1 := 3 * mt * mt * t
	w2 := 3 * mt * t * t
	w3 := t * t * t
	return r2.Vec{
		X: w0*b[0].X + w1*b[1].X + w2*b[2].X + w3*b[3].X,
		Y: w0*b[0].Y + w1*b[1].Y + w2*b[2].Y + w3*b[3].Y,
	}
}

// BezierFrom builds a curve from raw control point pairs.
func BezierFrom(points [4][2]float64) Bezier {
	var b Bezier
	for i, p := range points {
		b[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return b
}

// Frame maps normalized screen coordinates into a world plane at z=0
// seen by an orthographic view Height units tall.
type Frame struct {
	Aspect float64
	Height float64
}

// Width returns the visible world width.
func (f Frame) Width() float64 { return f.Height * f.Aspect }

// ToWorld maps a normalized point to world space, origin at the viewport
// center, y up.
func (f Frame) ToWorld(p r2.Vec) r3.Vec {
	return r3.Vec{
		X: (p.X - 0.5) * f.Width(),
		Y: (0.5 - p.Y) * f.Height,
	}
}

// Bounds returns the orthographic projection bounds (left, right, top, bottom).
func (f Frame) Bounds() (left, right, top, bottom float64) {
	halfW := f.Width() / 2
	halfH := f.Height / 2
	return -halfW, halfW, halfH, -halfH
}

// Wrap01 wraps x into [0,1).
func Wrap01(x float64) float64 {
	r := math.Mod(x, 1)
	if r < 0 {
		r += 1
	}
	// -tiny + 1 rounds to 1 in float64
	if r >= 1 {
		r = 0
	}
	return r
}

// Distribution spreads n instances over a path.
type Distribution int

const (
	Linear   Distribution = iota // t = i/n
	Centered                     // power remap clustering density toward the midpoint
)

// CenterPower is the exponent of the centered distribution.
const CenterPower = 1.35

// ParseDistribution maps a config name to a Distribution.
func ParseDistribution(name string) (Distribution, bool) {
	switch name {
	case "linear":
		return Linear, true
	case "centered":
		return Centered, true
	}
	return Linear, false
}

// String returns the config name of the distribution.
func (d Distribution) String() string {
	if d == Centered {
		return "centered"
	}
	return "linear"
}

// Position returns the base path position of instance i of n, in [0,1).
// Paths wrap, so the spacing is i/n and the last instance never lands on
// the first.
func (d Distribution) Position(i, n int) float64 {
	u := 0.0
	if n > 0 {
		u = float64(i) / float64(n)
	}
	if d == Linear {
		return u
	}
	s := 2*u - 1
	sign := 1.0
	if s < 0 {
		sign = -1
	}
	return 0.5 + 0.5*sign*math.Pow(math.Abs(s), CenterPower)
}
