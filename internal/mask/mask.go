// Package mask turns a closed freehand outline into a single-channel
// black/white image: black outside the loop, white inside.
package mask

import (
	"cmp"
	"image"
	"image/draw"
	"math"
	"slices"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// MinPoints is the smallest outline that encloses an area.
const MinPoints = 3

// threshold is the alpha at or above which a pixel is treated as inside when
// producing a binary mask from anti-aliased coverage.
const threshold = 0x80

// Options controls rasterization.
type Options struct {
	Rule FillRule
	// AntiAlias keeps fractional edge coverage instead of snapping every pixel
	// to black or white. Only honoured for NonZero.
	AntiAlias bool
}

// Outline returns the closed path through pts in recorded order. The final
// segment from the last point back to the first is implied by Close.
func Outline(pts []vec.Vec2) *path.Data {
	p := &path.Data{}
	if len(pts) == 0 {
		return p
	}
	p = p.MoveTo(pts[0])
	for _, pt := range pts[1:] {
		p = p.LineTo(pt)
	}
	return p.Close()
}

// Rasterize fills the polygon described by pts into a width x height mask.
// It returns nil when pts has fewer than MinPoints points or the raster is
// empty. The same input always yields identical pixels.
func Rasterize(pts []vec.Vec2, width, height int, opts Options) *image.Gray {
	if len(pts) < MinPoints || width <= 0 || height <= 0 {
		return nil
	}
	edges := collectEdges(Outline(pts))
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if len(edges) == 0 {
		return dst
	}
	switch opts.Rule {
	case EvenOdd:
		fillScanlines(dst, edges, EvenOdd)
	default:
		fillCoverage(dst, edges, opts.AntiAlias)
	}
	return dst
}

// edge is a line segment of the outline in raster coordinates.
type edge struct {
	x0, y0, x1, y1 float64
}

// collectEdges walks the path and returns one edge per segment including the
// implicit closing segment.
func collectEdges(p *path.Data) []edge {
	var edges []edge
	var current, start vec.Vec2
	i := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			current = p.Coords[i]
			start = current
			i++
		case path.CmdLineTo:
			next := p.Coords[i]
			if next != current {
				edges = append(edges, edge{current.X, current.Y, next.X, next.Y})
			}
			current = next
			i++
		case path.CmdQuadTo:
			i += 2
		case path.CmdCubeTo:
			i += 3
		case path.CmdClose:
			if current != start {
				edges = append(edges, edge{current.X, current.Y, start.X, start.Y})
			}
			current = start
		}
	}
	return edges
}

// fillCoverage accumulates signed area with x/image/vector. The accumulator
// saturates |winding| at one, which yields nonzero semantics.
func fillCoverage(dst *image.Gray, edges []edge, antiAlias bool) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Src
	pen := vec.Vec2{X: math.NaN()}
	for _, e := range edges {
		if pen.X != e.x0 || pen.Y != e.y0 {
			z.MoveTo(float32(e.x0), float32(e.y0))
		}
		z.LineTo(float32(e.x1), float32(e.y1))
		pen = vec.Vec2{X: e.x1, Y: e.y1}
	}
	z.ClosePath()
	cov := image.NewAlpha(b)
	z.Draw(cov, b, image.Opaque, image.Point{})
	for i, a := range cov.Pix {
		switch {
		case antiAlias:
			dst.Pix[i] = a
		case a >= threshold:
			dst.Pix[i] = 0xff
		}
	}
}

type crossing struct {
	x   float64
	dir int
}

// fillScanlines samples every pixel at its centre and applies rule to the
// winding number accumulated left to right along the row.
func fillScanlines(dst *image.Gray, edges []edge, rule FillRule) {
	b := dst.Bounds()
	var xs []crossing
	for y := b.Min.Y; y < b.Max.Y; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for _, e := range edges {
			dir := 1
			y0, y1 := e.y0, e.y1
			x0, x1 := e.x0, e.x1
			if y0 > y1 {
				dir = -1
				y0, y1 = y1, y0
				x0, x1 = x1, x0
			}
			if yc < y0 || yc >= y1 {
				continue
			}
			x := x0 + (yc-y0)*(x1-x0)/(y1-y0)
			xs = append(xs, crossing{x: x, dir: dir})
		}
		if len(xs) < 2 {
			continue
		}
		slices.SortFunc(xs, func(a, b crossing) int { return cmp.Compare(a.x, b.x) })
		winding := 0
		row := dst.Pix[(y-b.Min.Y)*dst.Stride:]
		for i := 0; i < len(xs)-1; i++ {
			winding += xs[i].dir
			if !rule.Fills(winding) {
				continue
			}
			from := max(int(math.Ceil(xs[i].x-0.5)), b.Min.X)
			to := min(int(math.Ceil(xs[i+1].x-0.5)), b.Max.X)
			for x := from; x < to; x++ {
				row[x-b.Min.X] = 0xff
			}
		}
	}
}

// Coverage returns the fraction of pixels in m that are at least half white.
func Coverage(m *image.Gray) float64 {
	if m == nil || len(m.Pix) == 0 {
		return 0
	}
	b := m.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if Inside(m, x, y) {
				n++
			}
		}
	}
	return float64(n) / float64(b.Dx()*b.Dy())
}

// Inside reports whether the pixel at (x, y) is part of the selection.
func Inside(m *image.Gray, x, y int) bool {
	if m == nil || !image.Pt(x, y).In(m.Bounds()) {
		return false
	}
	return m.GrayAt(x, y).Y >= threshold
}
