// Package overlay draws the live feedback for a lasso selection on top of the
// image: a dashed trail while drawing, a glowing tinted loop once committed,
// and a hint when nothing has been drawn yet.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"

	"github.com/example/magicstudio/internal/mask"
	"github.com/example/magicstudio/internal/render"
	"github.com/example/magicstudio/internal/selection"
	"github.com/example/magicstudio/internal/theme"
)

// HintText is shown over an empty canvas.
const HintText = "Circle a subject to edit"

// Style holds the colors and pen sizes of the overlay. Colors are
// non-premultiplied.
type Style struct {
	Stroke         color.RGBA
	Tint           color.RGBA
	HintBackground color.RGBA
	HintText       color.RGBA

	DrawWidth int
	DashOn    int
	DashOff   int

	CommitWidth int
	Glow        render.GlowOptions
}

// DefaultStyle returns the standard look: a 2px white 8/4 dash while drawing
// and a 4px white loop with a 20px glow and a translucent yellow fill once
// committed.
func DefaultStyle() Style {
	return StyleFor(theme.Default())
}

// StyleFor builds a style from t's selection colors.
func StyleFor(t *theme.Theme) Style {
	glow := render.DefaultGlowOptions()
	glow.Color = t.SelectionGlow
	return Style{
		Stroke:         t.SelectionStroke,
		Tint:           t.SelectionTint,
		HintBackground: t.HintBackground,
		HintText:       t.HintText,
		DrawWidth:      2,
		DashOn:         8,
		DashOff:        4,
		CommitWidth:    4,
		Glow:           glow,
	}
}

// Frame is everything the overlay depends on.
type Frame struct {
	Points selection.Polyline
	// Drawing is true while the pointer is down.
	Drawing bool
	// Closed is true when Points form a committed selection.
	Closed bool
	// Opacity is the pulse value applied to a committed selection.
	Opacity float64
	// Epoch identifies the stroke so committed layers can be reused between
	// frames.
	Epoch uint64
}

var hintFace font.Face

func init() {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	hintFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// Renderer draws frames. It caches the committed layer for the last stroke;
// the output depends only on the frame, the viewport and the style.
type Renderer struct {
	Style Style

	cache struct {
		epoch uint64
		n     int
		rect  image.Rectangle
		layer *image.RGBA
	}
}

// NewRenderer returns a renderer using st.
func NewRenderer(st Style) *Renderer {
	return &Renderer{Style: st}
}

// Render paints f over dst inside view.Rect. Points are given in canvas
// pixels and mapped through view. Neither the frame nor its points are
// modified.
func (r *Renderer) Render(dst *image.RGBA, view selection.Viewport, f Frame) {
	if view.Rect.Empty() {
		return
	}
	switch {
	case len(f.Points) == 0:
		r.drawHint(dst, view.Rect)
	case len(f.Points) < 2:
		// A single point has no visible extent.
	case f.Drawing || !f.Closed:
		pts := windowPoints(view, f.Points)
		plot := render.Thick(r.Style.DrawWidth, clipped(dst, view.Rect, r.Style.Stroke))
		render.DashedPolyline(pts, false, r.Style.DashOn, r.Style.DashOff, plot)
	default:
		layer := r.committed(view, f)
		a := uint8(math.Round(min(max(f.Opacity, 0), 1) * 255))
		if a == 0 {
			return
		}
		draw.DrawMask(dst, layer.Bounds(), layer, layer.Bounds().Min, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
	}
}

// committed builds the fill, glow and outline of a closed loop on a
// transparent layer covering the canvas.
func (r *Renderer) committed(view selection.Viewport, f Frame) *image.RGBA {
	c := &r.cache
	if c.layer != nil && c.epoch == f.Epoch && c.n == len(f.Points) && c.rect == view.Rect {
		return c.layer
	}
	rect := view.Rect
	layer := image.NewRGBA(rect)

	// Fill in layer-local coordinates.
	local := make([]vec.Vec2, len(f.Points))
	for i, p := range f.Points {
		w := view.ToWindow(p)
		local[i] = vec.Vec2{X: w.X - float64(rect.Min.X), Y: w.Y - float64(rect.Min.Y)}
	}
	if cov := mask.Rasterize(local, rect.Dx(), rect.Dy(), mask.Options{AntiAlias: true}); cov != nil {
		cov.Rect = cov.Rect.Add(rect.Min)
		draw.DrawMask(layer, rect, image.NewUniform(nrgba(r.Style.Tint)), image.Point{}, cov, rect.Min, draw.Over)
	}

	pts := windowPoints(view, f.Points)
	outline := image.NewGray(rect)
	render.Polyline(pts, true, render.Thick(r.Style.CommitWidth, render.SetGray(outline)))
	if halo := render.Halo(outline, r.Style.Glow); halo != nil {
		render.ApplyHalo(layer, halo, r.Style.Glow.Color, r.Style.Glow.Opacity)
	}
	render.Polyline(pts, true, render.Thick(r.Style.CommitWidth, render.SetRGBA(layer, opaque(r.Style.Stroke))))

	c.epoch, c.n, c.rect, c.layer = f.Epoch, len(f.Points), rect, layer
	return layer
}

// drawHint centres a rounded pill with HintText in rect.
func (r *Renderer) drawHint(dst *image.RGBA, rect image.Rectangle) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(nrgba(r.Style.HintText)), Face: hintFace}
	tw := d.MeasureString(HintText).Ceil()
	m := hintFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	padX, padY := 24, 12
	h := ascent + descent + 2*padY
	w := tw + 2*padX
	c := rect.Min.Add(image.Pt(rect.Dx()/2, rect.Dy()/2))
	pill := image.Rect(c.X-w/2, c.Y-h/2, c.X-w/2+w, c.Y-h/2+h).Intersect(rect)
	fillPill(dst, pill, nrgba(r.Style.HintBackground))
	d.Dot = fixed.P(c.X-tw/2, c.Y-(ascent+descent)/2+ascent)
	d.DrawString(HintText)
}

// fillPill fills rect with fully rounded ends.
func fillPill(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	if rect.Empty() {
		return
	}
	radius := float64(rect.Dy()) / 2
	src := image.NewUniform(col)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dy := float64(y) + 0.5 - (float64(rect.Min.Y) + radius)
		inset := radius - math.Sqrt(max(radius*radius-dy*dy, 0))
		x0 := rect.Min.X + int(math.Ceil(inset))
		x1 := rect.Max.X - int(math.Ceil(inset))
		if x1 > x0 {
			draw.Draw(dst, image.Rect(x0, y, x1, y+1), src, image.Point{}, draw.Over)
		}
	}
}

func windowPoints(view selection.Viewport, pts selection.Polyline) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		w := view.ToWindow(p)
		out[i] = image.Pt(int(math.Round(w.X)), int(math.Round(w.Y)))
	}
	return out
}

// clipped returns a Plot that blends col over dst within clip.
func clipped(dst *image.RGBA, clip image.Rectangle, col color.RGBA) render.Plot {
	clip = clip.Intersect(dst.Bounds())
	if col.A == 255 {
		return func(x, y int) {
			if image.Pt(x, y).In(clip) {
				dst.SetRGBA(x, y, col)
			}
		}
	}
	src := image.NewUniform(nrgba(col))
	return func(x, y int) {
		if image.Pt(x, y).In(clip) {
			draw.Draw(dst, image.Rect(x, y, x+1, y+1), src, image.Point{}, draw.Over)
		}
	}
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func opaque(c color.RGBA) color.RGBA {
	n := nrgba(c)
	r, g, b, a := n.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
