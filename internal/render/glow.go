package render

import (
	"image"
	"image/color"
	"image/draw"
)

// GlowOptions configures the soft halo drawn around a committed outline.
type GlowOptions struct {
	// Radius is the box-blur radius of a single pass.
	Radius int
	// Passes is how many box blurs are chained. Three passes approximate a
	// Gaussian with sigma close to Radius.
	Passes  int
	Color   color.RGBA
	Opacity float64
}

// DefaultGlowOptions matches a canvas shadow blur of 20 in white.
func DefaultGlowOptions() GlowOptions {
	return GlowOptions{
		Radius:  10,
		Passes:  3,
		Color:   color.RGBA{255, 255, 255, 255},
		Opacity: 1,
	}
}

// Halo blurs coverage into a layer padded by the blur extent so the glow can
// spread past the stroke. The returned image keeps coverage's coordinate
// space; its bounds are coverage's bounds grown by the padding.
func Halo(coverage *image.Gray, opts GlowOptions) *image.Gray {
	if coverage == nil || coverage.Bounds().Empty() {
		return nil
	}
	radius := max(opts.Radius, 0)
	passes := max(opts.Passes, 1)
	b := coverage.Bounds().Inset(-radius * passes)
	halo := image.NewGray(b)
	draw.Draw(halo, coverage.Bounds(), coverage, coverage.Bounds().Min, draw.Src)
	for i := 0; i < passes; i++ {
		halo = blurGray(halo, radius)
	}
	return halo
}

// ApplyHalo composites a precomputed halo layer onto dst.
func ApplyHalo(dst *image.RGBA, halo *image.Gray, col color.RGBA, opacity float64) {
	if dst == nil || halo == nil || opacity <= 0 {
		return
	}
	opacity = min(opacity, 1)
	a := uint8(float64(col.A)*opacity + 0.5)
	if a == 0 {
		return
	}
	src := image.NewUniform(color.NRGBA{R: col.R, G: col.G, B: col.B, A: a})
	draw.DrawMask(dst, halo.Bounds(), src, image.Point{}, halo, halo.Bounds().Min, draw.Over)
}

func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		rowStart := y * src.Stride
		tmpStart := y * tmp.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[rowStart+x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[tmpStart+x] = uint8((prefix[x1+1] - prefix[x0]) / (2*radius + 1))
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (2*radius + 1))
		}
	}

	return dst
}
