package render

import (
	"image"
	"image/color"
	"testing"
)

func TestHaloSpreadsPastCoverage(t *testing.T) {
	cov := image.NewGray(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		cov.SetGray(x, 5, color.Gray{Y: 255})
	}
	opts := GlowOptions{Radius: 2, Passes: 3, Color: color.RGBA{255, 255, 255, 255}, Opacity: 1}
	halo := Halo(cov, opts)
	if halo == nil {
		t.Fatal("expected halo")
	}
	if want := image.Rect(-6, -6, 16, 16); halo.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", halo.Bounds(), want)
	}
	if halo.GrayAt(5, 8).Y == 0 {
		t.Fatalf("expected blur to reach three rows away")
	}
	if halo.GrayAt(5, 5).Y <= halo.GrayAt(5, 8).Y {
		t.Fatalf("halo should fade away from the stroke")
	}
	if halo.GrayAt(5, 15).Y != 0 {
		t.Fatalf("halo reached beyond its extent")
	}
}

func TestApplyHaloZeroOpacity(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	cov := image.NewGray(dst.Bounds())
	cov.SetGray(1, 1, color.Gray{Y: 255})
	ApplyHalo(dst, Halo(cov, GlowOptions{Radius: 3, Passes: 1}), color.RGBA{255, 255, 255, 255}, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := dst.RGBAAt(x, y); got != fill {
				t.Fatalf("pixel (%d,%d) changed to %+v", x, y, got)
			}
		}
	}
}

func TestApplyHaloBrightens(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	cov := image.NewGray(dst.Bounds())
	Polyline([]image.Point{{5, 10}, {15, 10}}, false, Thick(4, SetGray(cov)))
	opts := DefaultGlowOptions()
	ApplyHalo(dst, Halo(cov, opts), opts.Color, opts.Opacity)
	if dst.RGBAAt(10, 10).R == 0 {
		t.Fatalf("expected glow on the stroke")
	}
	if dst.RGBAAt(10, 14).R == 0 {
		t.Fatalf("expected glow beside the stroke")
	}
}

func TestLineEndpoints(t *testing.T) {
	var got []image.Point
	Line(0, 0, 3, 1, func(x, y int) { got = append(got, image.Pt(x, y)) })
	if got[0] != image.Pt(0, 0) || got[len(got)-1] != image.Pt(3, 1) {
		t.Fatalf("line = %v", got)
	}
	if len(got) != 4 {
		t.Fatalf("line has %d pixels, want 4", len(got))
	}
}

func TestThickWidth(t *testing.T) {
	for _, w := range []int{1, 2, 3, 4} {
		n := 0
		Thick(w, func(int, int) { n++ })(0, 0)
		if n != w*w {
			t.Fatalf("width %d plotted %d pixels, want %d", w, n, w*w)
		}
	}
}

func TestDashedPolylinePattern(t *testing.T) {
	var on []int
	DashedPolyline([]image.Point{{0, 0}, {23, 0}}, false, 8, 4, func(x, y int) { on = append(on, x) })
	// 24 pixels: 8 on, 4 off, 8 on, 4 off.
	if len(on) != 16 {
		t.Fatalf("on pixels = %d, want 16", len(on))
	}
	if on[7] != 7 || on[8] != 12 {
		t.Fatalf("gap misplaced: %v", on)
	}
}

func TestDashedPolylineCarriesPhase(t *testing.T) {
	var on []image.Point
	pts := []image.Point{{0, 0}, {9, 0}, {9, 9}}
	DashedPolyline(pts, false, 8, 4, func(x, y int) { on = append(on, image.Pt(x, y)) })
	// 19 distinct pixels: 0-7 on, 8-11 off, 12-18 on.
	if len(on) != 15 {
		t.Fatalf("on pixels = %d, want 15", len(on))
	}
	for _, p := range on {
		if p == image.Pt(9, 2) {
			t.Fatalf("pixel (9,2) should fall in a gap")
		}
	}
}
