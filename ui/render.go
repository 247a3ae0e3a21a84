package ui

import (
	"math"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/camera"
	"github.com/pthm-cable/landing/dom"
	"github.com/pthm-cable/landing/geom"
	"github.com/pthm-cable/landing/landing"
	"github.com/pthm-cable/landing/panel"
	"github.com/pthm-cable/landing/scene"
	"github.com/pthm-cable/landing/telemetry"
)

const controlsLegend = "[Wheel] Scroll  [Tab] Focus  [Enter] Open  [Esc] Close"

// View draws one frame of the experience. It runs as the last frame loop
// so it sees the state every other loop produced this frame.
type View struct {
	exp      *landing.Experience
	renderer *Renderer
	overlays *OverlayRegistry
	hud      *HUD
	perf     *PerfPanel

	segments   int32
	badgeScale float64
	menu       []string

	// Set by the host between BeginDrawing and the frame.
	fps int32
}

// NewView creates a view and registers it as the render loop.
func NewView(exp *landing.Experience, overlays *OverlayRegistry) *View {
	r := NewRenderer()
	cfg := exp.Config()
	v := &View{
		exp:        exp,
		renderer:   r,
		overlays:   overlays,
		hud:        NewHUD(r),
		perf:       NewPerfPanel(r, 16, 60),
		segments:   int32(max(cfg.Geometry.CapsuleSegments, 4)),
		badgeScale: cfg.Geometry.BadgeScale,
		menu:       cfg.Derived.MenuAliases,
	}
	exp.Scheduler().Loop(telemetry.PhaseRender, v).Start()
	return v
}

// Tick draws the frame. The render loop never stops itself.
func (v *View) Tick(time.Time) bool {
	rl.ClearBackground(v.renderer.Theme.Background)

	v.drawScene()
	v.drawTrails()
	v.drawDocument()

	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.Draw(v.exp.Perf().Stats())
		v.drawStatus()
	}
	return true
}

func (v *View) drawScene() {
	world := v.exp.World()
	if !world.Ready() {
		return
	}
	rl.BeginMode3D(toCamera3D(world.RawCamera()))
	defer rl.EndMode3D()

	mesh := world.RawMesh()
	if v.overlays.IsEnabled(OverlayMeshWires) {
		v.drawMeshWires(mesh)
	}

	badge := geom.Transform{
		Rotation: geom.Euler{X: mesh.Pitch, Y: mesh.Yaw},
		Scale:    v.badgeScale,
	}
	v.drawModel(badge, v.renderer.Theme.Badge)

	if v.overlays.IsEnabled(OverlayAnchors) {
		for _, k := range v.exp.Document().Keys() {
			e, ok := v.exp.Projector().Entry(string(k))
			if !ok {
				continue
			}
			p := mesh.LocalToWorld(e.Spec.Sphere)
			rl.DrawSphere(toVec3(p), 0.05, v.renderer.Theme.Overlay)
		}
	}
}

// drawMeshWires draws meridians and parallels of the rotating mesh.
func (v *View) drawMeshWires(mesh *scene.Mesh) {
	const meridians, parallels, steps = 12, 7, 24
	color := v.renderer.Theme.Mesh

	point := func(lat, lon float64) rl.Vector3 {
		local := r3.Vec{
			X: math.Cos(lat) * math.Sin(lon),
			Y: math.Sin(lat),
			Z: math.Cos(lat) * math.Cos(lon),
		}
		return toVec3(mesh.LocalToWorld(local))
	}

	for m := 0; m < meridians; m++ {
		lon := 2 * math.Pi * float64(m) / meridians
		prev := point(-math.Pi/2, lon)
		for s := 1; s <= steps; s++ {
			next := point(-math.Pi/2+math.Pi*float64(s)/steps, lon)
			rl.DrawLine3D(prev, next, color)
			prev = next
		}
	}
	for p := 1; p <= parallels; p++ {
		lat := -math.Pi/2 + math.Pi*float64(p)/(parallels+1)
		prev := point(lat, 0)
		for s := 1; s <= steps; s++ {
			next := point(lat, 2*math.Pi*float64(s)/steps)
			rl.DrawLine3D(prev, next, color)
			prev = next
		}
	}
}

func (v *View) drawTrails() {
	if !v.exp.Document().HasClass(dom.ClassLoaded) {
		return
	}
	trails := v.exp.Trails()
	all := trails.Trails()
	if len(all) == 0 {
		return
	}
	rl.BeginMode3D(trailCamera(all[0].Frame))
	defer rl.EndMode3D()

	colors := []rl.Color{v.renderer.Theme.TrailA, v.renderer.Theme.TrailB}
	radius := float32(v.exp.Model().BoundingRadius())
	for _, inst := range trails.Instances() {
		color := colors[inst.Trail%len(colors)]
		v.drawModel(inst.Position, color)
		if v.overlays.IsEnabled(OverlayModelBounds) {
			rl.DrawSphereWires(toVec3(inst.Position.Position), radius*float32(inst.Position.Scale), 6, 8, v.renderer.Theme.Overlay)
		}
	}

	if v.overlays.IsEnabled(OverlayTrailPaths) {
		const steps = 64
		for i, t := range all {
			color := colors[i%len(colors)]
			prev := toVec3(t.Frame.ToWorld(t.Path.Curve.At(0)))
			for s := 1; s <= steps; s++ {
				next := toVec3(t.Frame.ToWorld(t.Path.Curve.At(float64(s) / steps)))
				rl.DrawLine3D(prev, next, color)
				prev = next
			}
		}
	}
}

// drawModel draws the six capsules of the branching model.
func (v *View) drawModel(t geom.Transform, color rl.Color) {
	for _, c := range v.exp.Model().Place(t) {
		rl.DrawCapsule(toVec3(c.A), toVec3(c.B), float32(c.Radius), v.segments, v.segments/2, color)
	}
}

func (v *View) drawDocument() {
	doc := v.exp.Document()
	locked := v.exp.Projector().Locked()
	focused, hasFocus := doc.Focused()

	for _, k := range doc.Keys() {
		card, ok := doc.Card(k)
		if !ok || card.Phase() == panel.Hidden {
			continue
		}
		if line, ok := doc.Line(k); ok && card.Phase() == panel.Visible {
			v.renderer.DrawConnector(line.Start, line.Target, line.Node, line.Lock, locked)
		}
	}
	// Expanded card last so it covers the corners.
	var expanded *dom.Card
	for _, k := range doc.Keys() {
		card, ok := doc.Card(k)
		if !ok || card.Phase() == panel.Hidden {
			continue
		}
		if card.Phase() == panel.Expanded {
			expanded = card
			continue
		}
		if b, ok := card.Bounds(); ok {
			v.renderer.DrawCard(b, card.Text(), hasFocus && focused == k)
		}
	}
	if expanded != nil {
		if b, ok := expanded.Bounds(); ok {
			v.renderer.DrawCard(b, expanded.Text(), true)
			v.drawCloseButton(b, doc.Layout())
		}
	}

	if !doc.HasClass(dom.ClassLoaded) {
		w, h := doc.Size()
		label, ring := doc.Progress()
		v.renderer.DrawRing(rl.Vector2{X: float32(w / 2), Y: float32(h / 2)}, ring, label)
		return
	}
	v.drawMenu(doc)
}

// drawMenu draws the side menu. A pressed alias opens its panel.
func (v *View) drawMenu(doc *dom.Document) {
	layout := doc.Layout()
	_, h := doc.Size()
	const rowH, gap = 28, 6
	x := float32(layout.Margin / 2)
	y := float32(h/2) - float32(len(v.menu)*(rowH+gap))/2
	for _, alias := range v.menu {
		rect := rl.Rectangle{X: x, Y: y, Width: float32(layout.MenuW) - x, Height: rowH}
		if gui.Button(rect, alias) {
			v.exp.OnMenu(alias)
		}
		y += rowH + gap
	}
}

func (v *View) drawCloseButton(b anchor.Rect, layout dom.Layout) {
	size := float32(layout.CloseButton)
	rect := rl.Rectangle{
		X:      float32(b.X+b.W) - size - 6,
		Y:      float32(b.Y) + 6,
		Width:  size,
		Height: size,
	}
	if gui.Button(rect, "x") {
		v.exp.OnClose()
	}
}

func (v *View) drawStatus() {
	open := ""
	if k, ok := v.exp.Panels().Expanded(); ok {
		open = string(k)
	}
	w, h := v.exp.Document().Size()
	v.hud.Draw(int32(w)-360, 10, HUDData{
		FPS:       v.fps,
		Frame:     v.exp.Scheduler().Frames(),
		Open:      open,
		Velocity:  v.exp.Trails().Velocity(),
		Locked:    v.exp.Projector().Locked(),
		Instances: v.exp.Trails().Count(),
	})
	v.hud.DrawControls(int32(h), controlsLegend+"  "+v.overlays.Legend())
}

// trailCamera returns the orthographic camera covering a trail frame's
// projection bounds.
func trailCamera(f geom.Frame) rl.Camera3D {
	left, right, top, bottom := f.Bounds()
	cx, cy := float32(left+right)/2, float32(top+bottom)/2
	return rl.Camera3D{
		Position:   rl.Vector3{X: cx, Y: cy, Z: 10},
		Target:     rl.Vector3{X: cx, Y: cy},
		Up:         rl.Vector3{Y: 1},
		Fovy:       float32(top - bottom),
		Projection: rl.CameraOrthographic,
	}
}

func toCamera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   toVec3(c.Position),
		Target:     toVec3(c.Target),
		Up:         toVec3(c.Up),
		Fovy:       float32(c.Fov * 180 / math.Pi),
		Projection: rl.CameraPerspective,
	}
}

func toVec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
