package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pthm-cable/landing/telemetry"
)

// HUDData holds the data shown in the status line.
type HUDData struct {
	FPS       int32
	Frame     uint64
	Open      string
	Velocity  float64
	Locked    bool
	Instances int
}

// HUD renders the debug status line and the controls legend.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD(r *Renderer) *HUD {
	return &HUD{renderer: r}
}

// Draw renders the status line.
func (h *HUD) Draw(x, y int32, data HUDData) {
	open := data.Open
	if open == "" {
		open = "-"
	}
	rl.DrawText(
		fmt.Sprintf("FPS: %d | Frame: %d | Open: %s", data.FPS, data.Frame, open),
		x, y, 14, h.renderer.Theme.LabelColor,
	)
	rl.DrawText(
		fmt.Sprintf("Trails: %d | Flow v: %+.4f | Anchors locked: %t", data.Instances, data.Velocity, data.Locked),
		x, y+16, 14, h.renderer.Theme.LabelColor,
	)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase frame timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(r *Renderer, x, y int32) *PerfPanel {
	return &PerfPanel{renderer: r, x: x, y: y}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	const width, rowH = 300, 14
	height := int32(44 + rowH*len(telemetry.Phases))
	p.renderer.DrawPanel(p.x-6, p.y-6, width, height)

	x, y := p.x, p.y
	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s  Budget: %.0f%%  Over: %d",
		stats.AvgWork.Round(time.Microsecond), stats.MaxWork.Round(time.Microsecond),
		stats.BudgetPct, stats.OverBudget), x, y, 12, rl.Yellow)
	y += 16

	for _, name := range telemetry.Phases {
		pct := stats.PhasePct[name]
		color := p.renderer.Theme.LabelColor
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += rowH
	}
}
