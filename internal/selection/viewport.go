package selection

import (
	"image"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Dims is the size of the drawing canvas in canvas pixels.
type Dims struct {
	Width, Height int
}

// Empty reports whether the canvas has no area.
func (d Dims) Empty() bool { return d.Width <= 0 || d.Height <= 0 }

// Fit sizes the canvas to the container width while keeping the image's
// aspect ratio: height = width * imageH / imageW.
func Fit(containerWidth, imageW, imageH int) Dims {
	if containerWidth <= 0 || imageW <= 0 || imageH <= 0 {
		return Dims{}
	}
	h := int(math.Round(float64(containerWidth) * float64(imageH) / float64(imageW)))
	return Dims{Width: containerWidth, Height: max(h, 1)}
}

// FitWithin is Fit constrained so the canvas also fits a container of the
// given height. The width shrinks only when the width-derived height would
// overflow.
func FitWithin(container image.Point, imageW, imageH int) Dims {
	d := Fit(container.X, imageW, imageH)
	if d.Empty() || container.Y <= 0 || d.Height <= container.Y {
		return d
	}
	w := int(math.Floor(float64(container.Y) * float64(imageW) / float64(imageH)))
	return Fit(max(w, 1), imageW, imageH)
}

// Viewport relates window coordinates to canvas coordinates. Rect is where the
// canvas is displayed; its size may differ from Canvas when the display is
// scaled.
type Viewport struct {
	Rect   image.Rectangle
	Canvas Dims
}

// NewViewport places a canvas of the given dims at origin without scaling.
func NewViewport(origin image.Point, d Dims) Viewport {
	return Viewport{
		Rect:   image.Rectangle{Min: origin, Max: origin.Add(image.Pt(d.Width, d.Height))},
		Canvas: d,
	}
}

// Contains reports whether the window position lies over the canvas.
func (v Viewport) Contains(x, y float32) bool {
	return float64(x) >= float64(v.Rect.Min.X) && float64(x) < float64(v.Rect.Max.X) &&
		float64(y) >= float64(v.Rect.Min.Y) && float64(y) < float64(v.Rect.Max.Y)
}

// Map converts a window position into canvas pixels:
// (x - left) * (canvasWidth / displayedWidth), likewise for y. The result is
// clamped to [0, width] x [0, height].
func (v Viewport) Map(x, y float32) vec.Vec2 {
	dw := float64(v.Rect.Dx())
	dh := float64(v.Rect.Dy())
	if dw <= 0 || dh <= 0 || v.Canvas.Empty() {
		return vec.Vec2{}
	}
	cx := (float64(x) - float64(v.Rect.Min.X)) * (float64(v.Canvas.Width) / dw)
	cy := (float64(y) - float64(v.Rect.Min.Y)) * (float64(v.Canvas.Height) / dh)
	return vec.Vec2{
		X: min(max(cx, 0), float64(v.Canvas.Width)),
		Y: min(max(cy, 0), float64(v.Canvas.Height)),
	}
}

// ToWindow converts a canvas point back to window coordinates.
func (v Viewport) ToWindow(p vec.Vec2) vec.Vec2 {
	if v.Canvas.Empty() {
		return vec.Vec2{X: float64(v.Rect.Min.X), Y: float64(v.Rect.Min.Y)}
	}
	return vec.Vec2{
		X: float64(v.Rect.Min.X) + p.X*float64(v.Rect.Dx())/float64(v.Canvas.Width),
		Y: float64(v.Rect.Min.Y) + p.Y*float64(v.Rect.Dy())/float64(v.Canvas.Height),
	}
}
