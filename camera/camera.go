// Package camera provides the perspective camera used to project anchor
// points from the 3D scene onto the page.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective look-at camera bound to a pixel viewport.
type Camera struct {
	// Position and Target in world coordinates
	Position r3.Vec
	Target   r3.Vec
	Up       r3.Vec

	// Vertical field of view in radians
	Fov float64

	// Clipping planes
	Near, Far float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	view, proj, viewProj [16]float64
}

// New creates a camera at distance dist on +Z looking at the origin.
func New(viewportW, viewportH, fov, dist float64) *Camera {
	c := &Camera{
		Position:  r3.Vec{Z: dist},
		Up:        r3.Vec{Y: 1},
		Fov:       fov,
		Near:      0.1,
		Far:       100,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
	c.Update()
	return c
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float64 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Update recomputes the view and projection matrices.
// Call after changing Position, Target, Up, Fov or the clip planes.
func (c *Camera) Update() {
	lookAt(&c.view, c.Position, c.Target, c.Up)
	perspective(&c.proj, c.Fov, c.Aspect(), c.Near, c.Far)
	mul4(&c.viewProj, &c.proj, &c.view)
}

// Resize updates viewport dimensions and the projection aspect.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.Update()
}

// ViewProjection returns the combined view-projection matrix (column-major).
func (c *Camera) ViewProjection() [16]float64 {
	return c.viewProj
}

// ProjectNDC transforms a world point into normalized device coordinates.
// Points behind the camera come back with Z > 1.
func (c *Camera) ProjectNDC(p r3.Vec) r3.Vec {
	m := &c.viewProj
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w == 0 {
		return r3.Vec{Z: math.Inf(1)}
	}
	if w < 0 {
		// Mirror through the camera plane so callers can detect it
		return r3.Vec{X: x / w, Y: y / w, Z: 1 + absf(z/w)}
	}
	return r3.Vec{X: x / w, Y: y / w, Z: z / w}
}

// NDCToScreen maps normalized device coordinates to viewport pixels,
// y down.
func NDCToScreen(ndc r3.Vec, viewportW, viewportH float64) (sx, sy float64) {
	sx = (ndc.X*0.5 + 0.5) * viewportW
	sy = (-ndc.Y*0.5 + 0.5) * viewportH
	return sx, sy
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64) {
	return NDCToScreen(c.ProjectNDC(p), c.ViewportW, c.ViewportH)
}

// IsVisible returns true if p lies inside the view frustum.
func (c *Camera) IsVisible(p r3.Vec) bool {
	ndc := c.ProjectNDC(p)
	return absf(ndc.X) <= 1 && absf(ndc.Y) <= 1 && ndc.Z >= -1 && ndc.Z <= 1
}

// Orbit moves the camera around its target by yaw radians about the up
// axis, keeping its distance.
func (c *Camera) Orbit(yaw float64) {
	offset := r3.Sub(c.Position, c.Target)
	offset = r3.NewRotation(yaw, c.Up).Rotate(offset)
	c.Position = r3.Add(c.Target, offset)
	c.Update()
}

// Distance returns the distance from the camera to its target.
func (c *Camera) Distance() float64 {
	return r3.Norm(r3.Sub(c.Position, c.Target))
}

// lookAt writes a right-handed view matrix.
func lookAt(out *[16]float64, eye, center, up r3.Vec) {
	z := r3.Sub(eye, center)
	if r3.Norm(z) == 0 {
		z = r3.Vec{Z: 1}
	}
	z = r3.Unit(z)
	x := r3.Cross(up, z)
	if r3.Norm(x) == 0 {
		x = r3.Vec{X: 1}
	}
	x = r3.Unit(x)
	y := r3.Cross(z, x)

	out[0], out[4], out[8], out[12] = x.X, x.Y, x.Z, -r3.Dot(x, eye)
	out[1], out[5], out[9], out[13] = y.X, y.Y, y.Z, -r3.Dot(y, eye)
	out[2], out[6], out[10], out[14] = z.X, z.Y, z.Z, -r3.Dot(z, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// perspective writes an OpenGL-style projection with clip z in [-1, 1].
func perspective(out *[16]float64, fovY, aspect, near, far float64) {
	f := 1 / math.Tan(fovY/2)
	*out = [16]float64{}
	out[0] = f / aspect
	out[5] = f
	out[10] = (far + near) / (near - far)
	out[11] = -1
	out[14] = 2 * far * near / (near - far)
}

// mul4 computes out = a * b for column-major matrices.
func mul4(out, a, b *[16]float64) {
	var buf [16]float64
	for i := 0; i < 4; i++ { // column of b
		for j := 0; j < 4; j++ { // row of a
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	*out = buf
}

// absf returns the absolute value of a float64.
func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
