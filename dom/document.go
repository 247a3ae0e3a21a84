// Package dom is the in-memory document the landing layer drives: body
// classes, the loader label and ring, four corner cards and their
// connector lines. A renderer draws it; tests inspect it directly.
package dom

import (
	"slices"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/loader"
	"github.com/pthm-cable/landing/panel"
)

// Body classes.
const (
	ClassLoaded = "is-loaded"
	ClassOpen   = "has-open-panel"
)

// MarkerClass returns the per-panel open marker class.
func MarkerClass(k panel.Key) string { return "has-open-" + string(k) }

// Layout holds the corner layout constants in pixels.
type Layout struct {
	Margin      float64
	CardW       float64
	CardH       float64
	ExpandedW   float64 // fraction of the viewport width
	ExpandedH   float64 // fraction of the viewport height
	MenuW       float64
	CloseButton float64
}

// DefaultLayout returns the stock corner layout.
func DefaultLayout() Layout {
	return Layout{
		Margin:      32,
		CardW:       280,
		CardH:       132,
		ExpandedW:   0.56,
		ExpandedH:   0.7,
		MenuW:       132,
		CloseButton: 28,
	}
}

// Document is the page.
type Document struct {
	layout  Layout
	width   float64
	height  float64
	classes map[string]bool

	progressLabel int
	progressRing  int
	loadedMarks   int

	keys  []panel.Key
	cards map[panel.Key]*Card
	lines map[panel.Key]*Line
	focus int
}

var (
	_ loader.View    = (*Document)(nil)
	_ panel.Document = (*Document)(nil)
)

// New creates a document with one card and line per key.
func New(layout Layout, width, height int, keys []panel.Key, collapsed map[panel.Key]string) *Document {
	d := &Document{
		layout:  layout,
		classes: make(map[string]bool),
		keys:    slices.Clone(keys),
		cards:   make(map[panel.Key]*Card, len(keys)),
		lines:   make(map[panel.Key]*Line, len(keys)),
		focus:   -1,
	}
	for _, k := range keys {
		d.cards[k] = &Card{key: k, html: collapsed[k]}
		d.lines[k] = &Line{}
	}
	d.Resize(width, height)
	return d
}

// Size returns the viewport size.
func (d *Document) Size() (float64, float64) { return d.width, d.height }

// Resize lays the cards out for a new viewport.
func (d *Document) Resize(width, height int) {
	d.width, d.height = float64(width), float64(height)
	for _, k := range d.keys {
		d.cards[k].collapsed = d.cornerRect(k)
		d.cards[k].expanded = d.expandedRect()
	}
}

func (d *Document) cornerRect(k panel.Key) anchor.Rect {
	l := d.layout
	r := anchor.Rect{X: l.Margin, Y: l.Margin, W: l.CardW, H: l.CardH}
	switch k {
	case panel.TopRight:
		r.X = d.width - l.Margin - l.CardW
	case panel.BottomLeft:
		r.Y = d.height - l.Margin - l.CardH
	case panel.BottomRight:
		r.X = d.width - l.Margin - l.CardW
		r.Y = d.height - l.Margin - l.CardH
	}
	return r
}

func (d *Document) expandedRect() anchor.Rect {
	w := d.width * d.layout.ExpandedW
	h := d.height * d.layout.ExpandedH
	return anchor.Rect{X: (d.width - w) / 2, Y: (d.height - h) / 2, W: w, H: h}
}

// Layout returns the layout constants.
func (d *Document) Layout() Layout { return d.layout }

// Keys returns the card keys in layout order.
func (d *Document) Keys() []panel.Key { return d.keys }

// Card returns the card for k.
func (d *Document) Card(k panel.Key) (*Card, bool) {
	c, ok := d.cards[k]
	return c, ok
}

// Line returns the connector line for k.
func (d *Document) Line(k panel.Key) (*Line, bool) {
	l, ok := d.lines[k]
	return l, ok
}

// Remove detaches a card from the page; queries on it report no bounds.
func (d *Document) Remove(k panel.Key) {
	if c, ok := d.cards[k]; ok {
		c.detached = true
	}
}

// HasClass reports whether the body carries class.
func (d *Document) HasClass(class string) bool { return d.classes[class] }

// SetProgress writes the loader label and ring value.
func (d *Document) SetProgress(percent int) {
	d.progressLabel = percent
	d.progressRing = percent
}

// Progress returns the loader label and ring values.
func (d *Document) Progress() (label, ring int) {
	return d.progressLabel, d.progressRing
}

// MarkLoaded adds the is-loaded class.
func (d *Document) MarkLoaded() {
	if !d.classes[ClassLoaded] {
		d.loadedMarks++
	}
	d.classes[ClassLoaded] = true
}

// LoadedMarks counts is-loaded transitions.
func (d *Document) LoadedMarks() int { return d.loadedMarks }

// SetPanelOpen toggles the global open class.
func (d *Document) SetPanelOpen(open bool) { d.classes[ClassOpen] = open }

// SetPanelMarker toggles the per-panel open class.
func (d *Document) SetPanelMarker(k panel.Key, on bool) { d.classes[MarkerClass(k)] = on }

// HitTest returns the topmost visible card under a point. An expanded card
// covers the corner cards.
func (d *Document) HitTest(x, y float64) (panel.Key, bool) {
	for _, k := range d.keys {
		c := d.cards[k]
		if c.phase == panel.Expanded && c.contains(x, y) {
			return k, true
		}
	}
	for _, k := range d.keys {
		c := d.cards[k]
		if c.phase == panel.Visible && c.contains(x, y) {
			return k, true
		}
	}
	return "", false
}

// FocusNext moves keyboard focus to the next visible card and returns it.
func (d *Document) FocusNext() (panel.Key, bool) {
	n := len(d.keys)
	for i := 1; i <= n; i++ {
		idx := (d.focus + i) % n
		if idx < 0 {
			idx += n
		}
		if d.cards[d.keys[idx]].phase != panel.Hidden {
			d.focus = idx
			return d.keys[idx], true
		}
	}
	return "", false
}

// Focused returns the focused card, if any.
func (d *Document) Focused() (panel.Key, bool) {
	if d.focus < 0 || d.focus >= len(d.keys) {
		return "", false
	}
	return d.keys[d.focus], true
}
