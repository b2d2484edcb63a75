// Package render holds the pixel-level drawing primitives used by the
// selection overlay: stroked and dashed polylines and the blurred glow.
package render

import (
	"image"
	"image/color"
	"math"
)

// Plot receives one pixel of a rasterised line.
type Plot func(x, y int)

// Line walks the Bresenham line from (x0, y0) to (x1, y1) inclusive.
func Line(x0, y0, x1, y1 int, plot Plot) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Thick widens plot to a square pen of the given width.
func Thick(width int, plot Plot) Plot {
	if width <= 1 {
		return plot
	}
	lo := -(width - 1) / 2
	hi := width / 2
	return func(x, y int) {
		for dy := lo; dy <= hi; dy++ {
			for dx := lo; dx <= hi; dx++ {
				plot(x+dx, y+dy)
			}
		}
	}
}

// Polyline strokes consecutive points, adding the closing segment when
// closed is set.
func Polyline(pts []image.Point, closed bool, plot Plot) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		plot(pts[0].X, pts[0].Y)
		return
	}
	for i := 1; i < len(pts); i++ {
		Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, plot)
	}
	if closed {
		last := pts[len(pts)-1]
		Line(last.X, last.Y, pts[0].X, pts[0].Y, plot)
	}
}

// DashedPolyline strokes pts with a repeating pattern of on pixels followed
// by off pixels. The pattern continues across vertices instead of restarting
// on every segment.
func DashedPolyline(pts []image.Point, closed bool, on, off int, plot Plot) {
	if on <= 0 {
		return
	}
	if off <= 0 {
		Polyline(pts, closed, plot)
		return
	}
	period := on + off
	step := 0
	first := true
	dashed := func(x, y int) {
		if step%period < on {
			plot(x, y)
		}
		step++
	}
	segment := func(a, b image.Point) {
		skip := !first
		first = false
		Line(a.X, a.Y, b.X, b.Y, func(x, y int) {
			// The shared vertex was already counted by the previous segment.
			if skip {
				skip = false
				return
			}
			dashed(x, y)
		})
	}
	if len(pts) == 1 {
		plot(pts[0].X, pts[0].Y)
		return
	}
	for i := 1; i < len(pts); i++ {
		segment(pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 {
		segment(pts[len(pts)-1], pts[0])
	}
}

// SetRGBA returns a Plot that paints col over dst, ignoring pixels outside
// its bounds.
func SetRGBA(dst *image.RGBA, col color.RGBA) Plot {
	b := dst.Bounds()
	return func(x, y int) {
		if image.Pt(x, y).In(b) {
			dst.SetRGBA(x, y, col)
		}
	}
}

// SetGray returns a Plot that marks pixels of dst fully on.
func SetGray(dst *image.Gray) Plot {
	b := dst.Bounds()
	return func(x, y int) {
		if image.Pt(x, y).In(b) {
			dst.SetGray(x, y, color.Gray{Y: 0xff})
		}
	}
}
