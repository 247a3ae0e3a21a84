// Package ui draws the landing experience with raylib and feeds window
// input back into it.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	Background  rl.Color
	CardBg      rl.Color
	CardBorder  rl.Color
	CardFocus   rl.Color
	CardText    rl.Color
	CardHeading rl.Color
	Line        rl.Color
	Node        rl.Color
	Lock        rl.Color
	RingBg      rl.Color
	RingFill    rl.Color
	Mesh        rl.Color
	TrailA      rl.Color
	TrailB      rl.Color
	Badge       rl.Color
	Overlay     rl.Color
	PanelBg     rl.Color
	PanelBorder rl.Color
	LabelColor  rl.Color
	ValueColor  rl.Color

	Padding        int32
	LineHeight     int32
	FontSize       int32
	HeaderFontSize int32
	NodeRadius     float32
	RingRadius     float32
	RingThickness  float32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:  rl.Color{R: 12, G: 14, B: 18, A: 255},
		CardBg:      rl.Color{R: 20, G: 25, B: 30, A: 235},
		CardBorder:  rl.Color{R: 60, G: 70, B: 80, A: 255},
		CardFocus:   rl.Color{R: 140, G: 190, B: 230, A: 255},
		CardText:    rl.LightGray,
		CardHeading: rl.RayWhite,
		Line:        rl.Color{R: 140, G: 160, B: 180, A: 160},
		Node:        rl.Color{R: 200, G: 220, B: 240, A: 255},
		Lock:        rl.Color{R: 230, G: 190, B: 90, A: 255},
		RingBg:      rl.Color{R: 40, G: 40, B: 40, A: 255},
		RingFill:    rl.Color{R: 100, G: 150, B: 200, A: 255},
		Mesh:        rl.Color{R: 90, G: 110, B: 130, A: 255},
		TrailA:      rl.Color{R: 120, G: 170, B: 210, A: 255},
		TrailB:      rl.Color{R: 210, G: 150, B: 120, A: 255},
		Badge:       rl.Color{R: 230, G: 230, B: 230, A: 255},
		Overlay:     rl.Color{R: 255, G: 80, B: 80, A: 200},
		PanelBg:     rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
		LabelColor:  rl.LightGray,
		ValueColor:  rl.LightGray,

		Padding:        10,
		LineHeight:     16,
		FontSize:       12,
		HeaderFontSize: 16,
		NodeRadius:     4,
		RingRadius:     36,
		RingThickness:  5,
	}
}
