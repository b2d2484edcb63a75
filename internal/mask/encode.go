package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// EncodePNG serialises m as an 8-bit grayscale PNG.
func EncodePNG(m *image.Gray) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode mask: no mask")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a mask image and normalises it to grayscale. Any pixel at or
// above half intensity becomes white.
func Decode(r io.Reader) (*image.Gray, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}
	g := image.NewGray(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	for i, v := range g.Pix {
		if v >= threshold {
			g.Pix[i] = 0xff
		} else {
			g.Pix[i] = 0
		}
	}
	return g, nil
}

// Scale resamples m to width x height with nearest-neighbour sampling so a
// binary mask stays binary.
func Scale(m *image.Gray, width, height int) *image.Gray {
	if m == nil || width <= 0 || height <= 0 {
		return nil
	}
	if m.Bounds().Dx() == width && m.Bounds().Dy() == height {
		out := image.NewGray(image.Rect(0, 0, width, height))
		draw.Draw(out, out.Bounds(), m, m.Bounds().Min, draw.Src)
		return out
	}
	out := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), m, m.Bounds(), xdraw.Src, nil)
	return out
}
