package landing

import "github.com/pthm-cable/landing/panel"

// Key is a keyboard key the experience reacts to.
type Key int

const (
	KeyEscape Key = iota
	KeyTab
	KeyEnter
	KeySpace
)

// OnWheel feeds a scroll delta to the trails and the mesh spin.
func (e *Experience) OnWheel(delta float64) {
	if delta == 0 {
		return
	}
	e.trails.OnWheel(delta)
	e.world.OnWheel(delta)
	e.collector.RecordWheel()
}

// OnKey handles a key press. Escape closes regardless of focus; Tab
// cycles focus between visible cards; Enter and Space activate the
// focused card.
func (e *Experience) OnKey(k Key) {
	switch k {
	case KeyEscape:
		e.panels.Escape()
	case KeyTab:
		e.doc.FocusNext()
	case KeyEnter, KeySpace:
		if focused, ok := e.doc.Focused(); ok {
			e.panels.Activate(focused)
		}
	}
}

// OnClick activates the card under a point.
func (e *Experience) OnClick(x, y float64) {
	if k, ok := e.doc.HitTest(x, y); ok {
		e.panels.Activate(k)
	}
}

// OnMenu handles a side menu button.
func (e *Experience) OnMenu(alias string) {
	e.panels.Menu(alias)
}

// OnClose handles the close control.
func (e *Experience) OnClose() {
	e.panels.Close()
}

// Open expands a panel directly.
func (e *Experience) Open(k panel.Key) {
	e.panels.Open(k)
}

// Resize propagates a new viewport to the layout, camera, anchors and
// trails, in that order.
func (e *Experience) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.doc.Resize(width, height)
	e.world.Resize(width, height)
	e.projector.Resize(float64(width), float64(height))
	e.trails.Resize(width, height)
	e.logger.Debug("resized", "width", width, "height", height)
}
