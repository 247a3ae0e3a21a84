// Package scene is a stand-in for the external 3D world: a rotating mesh,
// a perspective camera, debug orbit controls and simulated resource
// loading. It exposes only the query surface the landing layer consumes.
package scene

import (
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/camera"
	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/loader"
	"github.com/pthm-cable/landing/panel"
)

// LoopName is the frame loop name of the world update.
const LoopName = "scene"

// Params configure the world.
type Params struct {
	SpinFriction float64
	SpinPerWheel float64
	IdleSpin     float64 // radians per second
	CameraDist   float64
	FovDegrees   float64
	MeshRadius   float64
}

// ParamsFromConfig converts the scene config.
func ParamsFromConfig(cfg config.SceneConfig) Params {
	return Params{
		SpinFriction: cfg.SpinFriction,
		SpinPerWheel: cfg.SpinPerWheel,
		IdleSpin:     cfg.IdleSpin,
		CameraDist:   cfg.CameraDist,
		FovDegrees:   cfg.CameraFovDeg,
		MeshRadius:   cfg.MeshRadius,
	}
}

// Mesh is the rotating sphere the connector lines attach to.
type Mesh struct {
	Yaw    float64
	Pitch  float64
	Radius float64
}

// LocalToWorld maps a mesh-local point (unit sphere) to world space.
func (m *Mesh) LocalToWorld(local r3.Vec) r3.Vec {
	v := r3.Scale(m.Radius, local)
	v = r3.NewRotation(m.Pitch, r3.Vec{X: 1}).Rotate(v)
	return r3.NewRotation(m.Yaw, r3.Vec{Y: 1}).Rotate(v)
}

// Controls are the debug orbit controls.
type Controls struct {
	Enabled    bool
	AutoRotate bool
	Speed      float64 // radians per second
}

var _ panel.Controls = (*Controls)(nil)

// SetEnabled toggles the controls.
func (c *Controls) SetEnabled(enabled bool) { c.Enabled = enabled }

// SetAutoRotate toggles camera auto-rotation.
func (c *Controls) SetAutoRotate(on bool) { c.AutoRotate = on }

// SetAutoRotateSpeed sets the auto-rotation speed.
func (c *Controls) SetAutoRotateSpeed(speed float64) { c.Speed = speed }

// World is the stand-in 3D world. Mesh and camera are unavailable until
// resources have finished loading.
type World struct {
	params   Params
	mesh     *Mesh
	cam      *camera.Camera
	controls *Controls
	spinVel  float64
	ready    bool
	last     time.Time
	logger   *slog.Logger
}

var (
	_ anchor.Scene     = (*World)(nil)
	_ ProgressListener = (*World)(nil)
)

// New creates the world for a viewport.
func New(params Params, viewportW, viewportH int, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		params:   params,
		mesh:     &Mesh{Pitch: 0.2, Radius: params.MeshRadius},
		cam:      camera.New(float64(viewportW), float64(viewportH), params.FovDegrees*math.Pi/180, params.CameraDist),
		controls: &Controls{},
		logger:   logger,
	}
}

// Mesh returns the mesh once loaded.
func (w *World) Mesh() (anchor.Mesh, bool) {
	if !w.ready {
		return nil, false
	}
	return w.mesh, true
}

// Camera returns the camera once loaded.
func (w *World) Camera() (anchor.Camera, bool) {
	if !w.ready {
		return nil, false
	}
	return w.cam, true
}

// RawMesh returns the mesh regardless of load state, for rendering.
func (w *World) RawMesh() *Mesh { return w.mesh }

// RawCamera returns the camera regardless of load state, for rendering.
func (w *World) RawCamera() *camera.Camera { return w.cam }

// Controls returns the debug orbit controls.
func (w *World) Controls() *Controls { return w.controls }

// Ready reports whether resources have loaded.
func (w *World) Ready() bool { return w.ready }

// SpinVelocity returns the wheel-driven spin velocity in radians per frame.
func (w *World) SpinVelocity() float64 { return w.spinVel }

// OnProgress implements ProgressListener.
func (w *World) OnProgress(loader.Group) {}

// OnResourcesEnd makes mesh and camera available.
func (w *World) OnResourcesEnd() {
	w.ready = true
}

// OnWheel feeds a scroll delta into the mesh spin.
func (w *World) OnWheel(delta float64) {
	w.spinVel += delta * w.params.SpinPerWheel
}

// Resize updates the camera viewport.
func (w *World) Resize(viewportW, viewportH int) {
	w.cam.Resize(float64(viewportW), float64(viewportH))
}

// Tick advances the mesh spin and the orbit controls.
func (w *World) Tick(now time.Time) bool {
	dt := 0.0
	if !w.last.IsZero() {
		dt = now.Sub(w.last).Seconds()
	}
	w.last = now

	w.mesh.Yaw += w.params.IdleSpin*dt + w.spinVel
	w.spinVel *= w.params.SpinFriction

	if w.controls.Enabled && w.controls.AutoRotate && w.controls.Speed != 0 {
		w.cam.Orbit(w.controls.Speed * dt)
	}
	return true
}
