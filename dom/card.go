package dom

import (
	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/content"
	"github.com/pthm-cable/landing/panel"
)

// Card is one panel card.
type Card struct {
	key       panel.Key
	html      string
	phase     panel.Phase
	sizing    anchor.Rect
	collapsed anchor.Rect
	expanded  anchor.Rect
	detached  bool
	scripts   []string
}

var (
	_ panel.Card       = (*Card)(nil)
	_ panel.ScriptHost = (*Card)(nil)
)

// Key returns the card key.
func (c *Card) Key() panel.Key { return c.key }

// Bounds returns the current bounding box.
func (c *Card) Bounds() (anchor.Rect, bool) {
	if c.detached {
		return anchor.Rect{}, false
	}
	if c.phase == panel.Expanded {
		return c.expanded, true
	}
	return c.collapsed, true
}

// HTML returns the card markup.
func (c *Card) HTML() string { return c.html }

// SetHTML replaces the card markup.
func (c *Card) SetHTML(html string) {
	c.html = html
	c.scripts = nil
}

// Text returns the card markup as plain text.
func (c *Card) Text() string { return content.PlainText(c.html) }

// Phase returns the display phase.
func (c *Card) Phase() panel.Phase { return c.phase }

// SetPhase sets the display phase.
func (c *Card) SetPhase(p panel.Phase) { c.phase = p }

// Sizing returns the recorded expand start box.
func (c *Card) Sizing() anchor.Rect { return c.sizing }

// SetSizing records the box the expand animation starts from.
func (c *Card) SetSizing(r anchor.Rect) { c.sizing = r }

// ReplaceScript swaps in a fresh script element.
func (c *Card) ReplaceScript(index int, fresh content.Script) {
	for len(c.scripts) <= index {
		c.scripts = append(c.scripts, "")
	}
	c.scripts[index] = fresh.Markup()
}

// Scripts returns the markup of executed scripts.
func (c *Card) Scripts() []string { return c.scripts }

func (c *Card) contains(x, y float64) bool {
	r, ok := c.Bounds()
	return ok && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Line is one connector line with its node and lock badge.
type Line struct {
	Start, Target anchor.Point
	Node          anchor.Point
	Lock          anchor.Point
	Writes        int
}

var _ anchor.LineView = (*Line)(nil)

// SetLine writes both endpoints.
func (l *Line) SetLine(start, target anchor.Point) {
	l.Start, l.Target = start, target
	l.Writes++
}

// SetNode positions the node at the far end.
func (l *Line) SetNode(p anchor.Point) { l.Node = p }

// SetLock positions the lock badge at the line start.
func (l *Line) SetLock(p anchor.Point) { l.Lock = p }
