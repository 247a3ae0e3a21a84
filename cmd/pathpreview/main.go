// Trail path preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/pathpreview [--config config.yaml]
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/geom"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 640
	previewH     = 400
	panelWidth   = windowWidth - previewW - 40
)

var pathColors = []rl.Color{
	{R: 60, G: 120, B: 190, A: 255},
	{R: 200, G: 110, B: 70, A: 255},
}

func main() {
	configPath := pflag.String("config", "", "Path to config.yaml (empty = use defaults)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	initial := append([]config.PathConfig(nil), cfg.Trails.Paths...)
	paths := append([]config.PathConfig(nil), initial...)

	rl.InitWindow(windowWidth, windowHeight, "Trail Path Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	var flow float32
	animating := false

	for !rl.WindowShouldClose() {
		if animating {
			flow += rl.GetFrameTime() * 0.05
			flow -= float32(int(flow))
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview
		origin := rl.Vector2{X: 10, Y: 10}
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)
		for i, p := range paths {
			drawPath(p, origin, float64(flow), pathColors[i%len(pathColors)])
		}

		// Control panel
		panelX := float32(previewW + 30)
		panelY := float32(10)
		rl.DrawText("Trail Paths", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for i := range paths {
			p := &paths[i]
			rl.DrawText(fmt.Sprintf("%s (direction %+.0f)", p.Name, p.Direction), int32(panelX), int32(panelY), 16, pathColors[i%len(pathColors)])
			panelY += 22

			rl.DrawText("Count", int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			newCount := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"1", "40",
				float32(p.Count), 1, 40,
			)
			rl.DrawText(fmt.Sprintf("%d", p.Count), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if int(newCount) != p.Count {
				p.Count = int(newCount)
			}
			panelY += 30

			if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 160, Height: 26}, "Distribution: "+p.Distribution) {
				if p.Distribution == "linear" {
					p.Distribution = "centered"
				} else {
					p.Distribution = "linear"
				}
			}
			panelY += 40
		}

		rl.DrawText("Flow offset", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		flow = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			flow, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", flow), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			paths = append(paths[:0], initial...)
			flow = 0
		}
		panelY += 50

		// Output YAML
		out, err := yaml.Marshal(map[string]any{"paths": paths})
		if err != nil {
			out = []byte(err.Error())
		}
		rl.DrawText("YAML Config (trails.paths):", int32(panelX), int32(panelY), 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Instances: %d", countAll(paths)), 15, previewH+25, 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(string(out), int32(panelX), int32(panelY), 10, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(string(out))
		}

		rl.EndDrawing()
	}
}

// drawPath plots the curve and the spawn points of one path, shifted by flow.
func drawPath(p config.PathConfig, origin rl.Vector2, flow float64, c rl.Color) {
	curve := geom.BezierFrom(p.Points)
	dist, _ := geom.ParseDistribution(p.Distribution)

	const steps = 96
	prev := toPreview(curve.At(0), origin)
	for s := 1; s <= steps; s++ {
		next := toPreview(curve.At(float64(s)/steps), origin)
		rl.DrawLineV(prev, next, c)
		prev = next
	}

	for i := 0; i < p.Count; i++ {
		base := dist.Position(i, p.Count)
		t := geom.Wrap01(base + p.Direction*flow)
		rl.DrawCircleV(toPreview(curve.At(t), origin), 4, c)
		rl.DrawCircleLines(int32(origin.X+float32(base)*previewW), previewH+5, 2, rl.Gray)
	}
}

func toPreview(v r2.Vec, origin rl.Vector2) rl.Vector2 {
	return rl.Vector2{
		X: origin.X + float32(v.X)*previewW,
		Y: origin.Y + float32(v.Y)*previewH,
	}
}

func countAll(paths []config.PathConfig) int {
	n := 0
	for _, p := range paths {
		n += p.Count
	}
	return n
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
