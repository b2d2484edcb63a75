package generate

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/example/magicstudio/internal/mask"
)

// Preview is an offline generator. It washes the selected area in pink so
// the full edit loop can run without network access or an API key.
type Preview struct {
	Tint    color.NRGBA
	Opacity float64
}

// NewPreview returns a Preview using the accent pink.
func NewPreview() *Preview {
	return &Preview{Tint: color.NRGBA{R: 255, G: 77, B: 141, A: 255}, Opacity: 0.45}
}

func (p *Preview) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := req.Original.Image()
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	wash := imaging.New(b.Dx(), b.Dy(), p.Tint)
	effect := imaging.Overlay(imaging.AdjustSaturation(src, 30), wash, image.Point{}, p.Opacity)

	out := imaging.Clone(src)
	var m image.Image
	if req.Mask != nil {
		mi, err := req.Mask.Image()
		if err != nil {
			return nil, err
		}
		gray := image.NewGray(mi.Bounds())
		draw.Draw(gray, gray.Bounds(), mi, mi.Bounds().Min, draw.Src)
		m = mask.Scale(gray, b.Dx(), b.Dy())
	}
	draw.DrawMask(out, out.Bounds(), effect, image.Point{}, m, image.Point{}, draw.Over)
	return &Result{Image: out, Text: Prompt(req)}, nil
}
