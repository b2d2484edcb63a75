package theme

import (
	"image/color"
)

// Theme defines the color palette for the editor window and the selection
// overlay. Colors are stored non-premultiplied, as written in theme files.
type Theme struct {
	Name string

	// Window
	Background color.RGBA
	Foreground color.RGBA
	Accent     color.RGBA // Submit button and highlights
	Error      color.RGBA

	// Header and prompt bar
	ToolbarBackground color.RGBA
	ToolbarText       color.RGBA
	PromptBackground  color.RGBA
	PromptText        color.RGBA
	PromptPlaceholder color.RGBA

	// Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonText            color.RGBA
	ButtonDisabled        color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Selection overlay
	SelectionStroke color.RGBA
	SelectionGlow   color.RGBA
	SelectionTint   color.RGBA
	HintBackground  color.RGBA
	HintText        color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{255, 247, 250, 255},
		Foreground:            color.RGBA{39, 39, 42, 255},
		Accent:                color.RGBA{255, 77, 141, 255},
		Error:                 color.RGBA{220, 38, 38, 255},
		ToolbarBackground:     color.RGBA{255, 255, 255, 255},
		ToolbarText:           color.RGBA{24, 24, 27, 255},
		PromptBackground:      color.RGBA{255, 255, 255, 255},
		PromptText:            color.RGBA{24, 24, 27, 255},
		PromptPlaceholder:     color.RGBA{161, 161, 170, 255},
		ButtonBackground:      color.RGBA{252, 231, 243, 255},
		ButtonBackgroundHover: color.RGBA{251, 207, 232, 255},
		ButtonText:            color.RGBA{24, 24, 27, 255},
		ButtonDisabled:        color.RGBA{212, 212, 216, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		SelectionStroke:       color.RGBA{255, 255, 255, 255},
		SelectionGlow:         color.RGBA{255, 255, 255, 255},
		SelectionTint:         color.RGBA{250, 204, 21, 64},
		HintBackground:        color.RGBA{255, 255, 255, 230},
		HintText:              color.RGBA{24, 24, 27, 255},
	}
}
