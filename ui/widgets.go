package ui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pthm-cable/landing/anchor"
)

// Renderer handles all 2D drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawCard draws a card body with its text wrapped to the card width.
// The first line of text is drawn as a heading.
func (r *Renderer) DrawCard(bounds anchor.Rect, text string, focused bool) {
	rect := toRect(bounds)
	rl.DrawRectangleRec(rect, r.Theme.CardBg)
	border := r.Theme.CardBorder
	if focused {
		border = r.Theme.CardFocus
	}
	rl.DrawRectangleLinesEx(rect, 1, border)

	pad := r.Theme.Padding
	x := int32(bounds.X) + pad
	y := int32(bounds.Y) + pad
	maxY := int32(bounds.Y+bounds.H) - pad
	width := int32(bounds.W) - 2*pad

	for i, para := range strings.Split(text, "\n") {
		size, color := r.Theme.FontSize, r.Theme.CardText
		if i == 0 {
			size, color = r.Theme.HeaderFontSize, r.Theme.CardHeading
		}
		for _, line := range wrap(para, width, size) {
			if y+size > maxY {
				return
			}
			rl.DrawText(line, x, y, size, color)
			y += size + 4
		}
	}
}

// DrawConnector draws a connector line with its node and, when locked, the
// lock badge at the line start.
func (r *Renderer) DrawConnector(start, target, node, lock anchor.Point, locked bool) {
	rl.DrawLineEx(toVec(start), toVec(target), 1, r.Theme.Line)
	rl.DrawCircleV(toVec(node), r.Theme.NodeRadius, r.Theme.Node)
	if locked {
		rl.DrawCircleLines(int32(lock.X), int32(lock.Y), r.Theme.NodeRadius+2, r.Theme.Lock)
	}
}

// DrawRing draws the loader ring and its percentage label centered at c.
func (r *Renderer) DrawRing(c rl.Vector2, ring, label int) {
	inner := r.Theme.RingRadius - r.Theme.RingThickness
	rl.DrawRing(c, inner, r.Theme.RingRadius, 0, 360, 48, r.Theme.RingBg)
	sweep := float32(ring) / 100 * 360
	rl.DrawRing(c, inner, r.Theme.RingRadius, -90, -90+sweep, 48, r.Theme.RingFill)

	text := fmt.Sprintf("%d%%", label)
	w := rl.MeasureText(text, r.Theme.HeaderFontSize)
	rl.DrawText(text, int32(c.X)-w/2, int32(c.Y)-r.Theme.HeaderFontSize/2, r.Theme.HeaderFontSize, r.Theme.CardHeading)
}

// wrap breaks text into lines no wider than width pixels.
func wrap(text string, width, size int32) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if rl.MeasureText(cur+" "+w, size) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}

func toRect(b anchor.Rect) rl.Rectangle {
	return rl.Rectangle{X: float32(b.X), Y: float32(b.Y), Width: float32(b.W), Height: float32(b.H)}
}

func toVec(p anchor.Point) rl.Vector2 {
	return rl.Vector2{X: float32(p.X), Y: float32(p.Y)}
}
