package editor

import (
	"image"

	"github.com/example/magicstudio/internal/selection"
)

const (
	headerHeight  = 44
	historyHeight = 72
	promptHeight  = 56
	padding       = 12
	buttonHeight  = 28
	buttonGap     = 8
	submitWidth   = 96
	chipWidth     = 40
	thumbSize     = 56
)

// layout is the placement of every region of the window.
type layout struct {
	header  image.Rectangle
	area    image.Rectangle // space available to the canvas
	canvas  image.Rectangle // where the picture is shown; empty without one
	history image.Rectangle // empty when there is no history
	prompt  image.Rectangle
	field   image.Rectangle
	chip    image.Rectangle
	submit  image.Rectangle
}

// viewport returns the recorder's canvas placement. The canvas is drawn
// unscaled so canvas pixels and window pixels coincide.
func (l layout) viewport() selection.Viewport {
	if l.canvas.Empty() {
		return selection.Viewport{}
	}
	return selection.NewViewport(l.canvas.Min, selection.Dims{Width: l.canvas.Dx(), Height: l.canvas.Dy()})
}

// computeLayout stacks header, canvas, history strip and prompt bar. The
// canvas keeps imgSize's aspect ratio and is centred in the space left over.
func computeLayout(width, height int, imgSize image.Point, hasHistory bool) layout {
	var l layout
	l.header = image.Rect(0, 0, width, min(headerHeight, height))
	bottom := height
	l.prompt = image.Rect(0, max(bottom-promptHeight, l.header.Max.Y), width, bottom)
	bottom = l.prompt.Min.Y
	if hasHistory {
		l.history = image.Rect(0, max(bottom-historyHeight, l.header.Max.Y), width, bottom)
		bottom = l.history.Min.Y
	}
	l.area = image.Rect(padding, l.header.Max.Y+padding, width-padding, bottom-padding)
	if l.area.Empty() {
		l.area = image.Rectangle{}
	}

	in := l.prompt.Inset(padding / 2)
	if in.Dy() > 0 {
		l.submit = image.Rect(in.Max.X-submitWidth, in.Min.Y, in.Max.X, in.Max.Y)
		l.chip = image.Rect(l.submit.Min.X-buttonGap-chipWidth, in.Min.Y, l.submit.Min.X-buttonGap, in.Max.Y)
		l.field = image.Rect(in.Min.X, in.Min.Y, l.chip.Min.X-buttonGap, in.Max.Y)
		if l.field.Dx() <= 0 {
			l.field = image.Rectangle{}
		}
	}

	if imgSize.X <= 0 || imgSize.Y <= 0 || l.area.Empty() {
		return l
	}
	d := selection.FitWithin(l.area.Size(), imgSize.X, imgSize.Y)
	if d.Empty() {
		return l
	}
	x := l.area.Min.X + (l.area.Dx()-d.Width)/2
	y := l.area.Min.Y + (l.area.Dy()-d.Height)/2
	l.canvas = image.Rect(x, y, x+d.Width, y+d.Height)
	return l
}

// headerSlots lays out n buttons of the given widths right-aligned in the
// header, returning their rectangles in order.
func headerSlots(header image.Rectangle, widths []int) []image.Rectangle {
	out := make([]image.Rectangle, len(widths))
	x := header.Max.X - padding
	y0 := header.Min.Y + (header.Dy()-buttonHeight)/2
	for i := len(widths) - 1; i >= 0; i-- {
		out[i] = image.Rect(x-widths[i], y0, x, y0+buttonHeight)
		x -= widths[i] + buttonGap
	}
	return out
}

// historySlots places up to n thumbnails left to right in the strip; items
// that do not fit are left out.
func historySlots(strip image.Rectangle, n int) []image.Rectangle {
	var out []image.Rectangle
	if strip.Empty() {
		return out
	}
	y0 := strip.Min.Y + (strip.Dy()-thumbSize)/2
	x := strip.Min.X + padding
	for i := 0; i < n; i++ {
		if x+thumbSize > strip.Max.X-padding {
			break
		}
		out = append(out, image.Rect(x, y0, x+thumbSize, y0+thumbSize))
		x += thumbSize + buttonGap
	}
	return out
}
