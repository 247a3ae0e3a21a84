package ui

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pthm-cable/landing/landing"
)

// Host runs the experience in a raylib window.
type Host struct {
	exp      *landing.Experience
	view     *View
	overlays *OverlayRegistry
}

// NewHost registers the render loop on exp. The window must already be open.
func NewHost(exp *landing.Experience) *Host {
	overlays := NewOverlayRegistry()
	return &Host{
		exp:      exp,
		view:     NewView(exp, overlays),
		overlays: overlays,
	}
}

// Overlays returns the debug overlay registry.
func (h *Host) Overlays() *OverlayRegistry { return h.overlays }

// Run drives one frame per display refresh until the window closes or
// maxFrames frames have run. maxFrames <= 0 means unlimited.
func (h *Host) Run(maxFrames int) {
	for frames := 0; !rl.WindowShouldClose(); frames++ {
		if maxFrames > 0 && frames >= maxFrames {
			return
		}
		h.handleResize()
		h.handleInput()

		h.view.fps = rl.GetFPS()
		rl.BeginDrawing()
		h.exp.Frame(time.Now())
		rl.EndDrawing()
	}
}

// handleInput forwards window input to the experience.
func (h *Host) handleInput() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		// Positive wheel move scrolls up; the experience expects a
		// page-style delta where down is positive.
		h.exp.OnWheel(-float64(wheel) * 100)
	}

	for _, desc := range h.overlays.All() {
		if rl.IsKeyPressed(desc.Key) {
			h.overlays.HandleKeyPress(desc.Key)
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeyEscape):
		h.exp.OnKey(landing.KeyEscape)
	case rl.IsKeyPressed(rl.KeyTab):
		h.exp.OnKey(landing.KeyTab)
	case rl.IsKeyPressed(rl.KeyEnter):
		h.exp.OnKey(landing.KeyEnter)
	case rl.IsKeyPressed(rl.KeySpace):
		h.exp.OnKey(landing.KeySpace)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		pos := rl.GetMousePosition()
		h.exp.OnClick(float64(pos.X), float64(pos.Y))
	}
}

// handleResize propagates window size changes.
func (h *Host) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	h.exp.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
}
