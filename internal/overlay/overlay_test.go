package overlay

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/example/magicstudio/internal/selection"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestPulseCycle(t *testing.T) {
	p := NewPulse()
	want := []float64{
		(PulseMin + PulseMax) / 2, // 0.5s
		PulseMax,                  // 1s
		(PulseMin + PulseMax) / 2, // 1.5s
		PulseMin,                  // 2s
		(PulseMin + PulseMax) / 2, // 2.5s
		PulseMax,                  // 3s
	}
	for i, w := range want {
		if got := p.Update(500 * time.Millisecond); !approx(got, w) {
			t.Fatalf("step %d: value = %v, want %v", i, got, w)
		}
	}
}

func TestPulseCarriesOverflow(t *testing.T) {
	p := NewPulse()
	if got := p.Update(1500 * time.Millisecond); !approx(got, (PulseMin+PulseMax)/2) {
		t.Fatalf("value = %v, want falling midpoint", got)
	}
}

func TestPulseUpdateStaysInRange(t *testing.T) {
	p := NewPulse()
	if !approx(p.Value(), PulseMin) {
		t.Fatalf("initial value = %v", p.Value())
	}
	var peak float64
	for i := 0; i < 120; i++ {
		v := p.Update(50 * time.Millisecond)
		if v < PulseMin-1e-3 || v > PulseMax+1e-3 {
			t.Fatalf("step %d: value %v out of range", i, v)
		}
		peak = max(peak, v)
	}
	if !approx(peak, PulseMax) {
		t.Fatalf("peak = %v, want %v", peak, PulseMax)
	}
}

func TestPulseResetRestarts(t *testing.T) {
	p := NewPulse()
	p.Update(700 * time.Millisecond)
	p.Reset()
	if !approx(p.Value(), PulseMin) {
		t.Fatalf("after reset value = %v", p.Value())
	}
}

func square(x0, y0, x1, y1 float64) selection.Polyline {
	return selection.Polyline{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		{X: x0, Y: (y0 + y1) / 2}, {X: x0, Y: y0 + 1},
	}
}

func newCanvas(w, h int) (*image.RGBA, selection.Viewport) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst, selection.NewViewport(image.Point{}, selection.Dims{Width: w, Height: h})
}

func TestRenderHintWhenEmpty(t *testing.T) {
	dst, view := newCanvas(300, 120)
	NewRenderer(DefaultStyle()).Render(dst, view, Frame{})
	lit := 0
	for x := 60; x < 240; x++ {
		if dst.RGBAAt(x, 60).R > 128 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatalf("hint not drawn")
	}
	if dst.RGBAAt(2, 2) != (color.RGBA{A: 255}) {
		t.Fatalf("hint spilled into the corner: %+v", dst.RGBAAt(2, 2))
	}
}

func TestRenderSinglePointDrawsNothing(t *testing.T) {
	dst, view := newCanvas(50, 50)
	before := append([]uint8(nil), dst.Pix...)
	NewRenderer(DefaultStyle()).Render(dst, view, Frame{Points: selection.Polyline{{X: 10, Y: 10}}, Drawing: true})
	for i := range before {
		if before[i] != dst.Pix[i] {
			t.Fatalf("single point changed pixel data at %d", i)
		}
	}
}

func TestRenderDrawingIsDashed(t *testing.T) {
	dst, view := newCanvas(60, 20)
	pts := selection.Polyline{{X: 0, Y: 10}, {X: 59, Y: 10}}
	NewRenderer(DefaultStyle()).Render(dst, view, Frame{Points: pts, Drawing: true})
	if dst.RGBAAt(2, 10).R != 255 {
		t.Fatalf("expected dash at x=2")
	}
	if dst.RGBAAt(10, 10).R != 0 {
		t.Fatalf("expected gap at x=10, got %+v", dst.RGBAAt(10, 10))
	}
	if dst.RGBAAt(30, 2).R != 0 {
		t.Fatalf("no glow while drawing")
	}
}

func TestRenderCommittedTintsInterior(t *testing.T) {
	dst, view := newCanvas(140, 140)
	pts := square(40, 40, 100, 100)
	before := pts.Clone()
	NewRenderer(DefaultStyle()).Render(dst, view, Frame{Points: pts, Closed: true, Opacity: 0.8, Epoch: 1})
	centre := dst.RGBAAt(70, 70)
	if centre.R == 0 || centre.R <= centre.B {
		t.Fatalf("interior not tinted yellow: %+v", centre)
	}
	if edge := dst.RGBAAt(40, 70); edge.B < 150 {
		t.Fatalf("outline not drawn: %+v", edge)
	}
	if glow := dst.RGBAAt(34, 70); glow.B == 0 {
		t.Fatalf("expected glow outside the outline: %+v", glow)
	}
	if far := dst.RGBAAt(0, 0); far.B != 0 {
		t.Fatalf("corner should stay dark: %+v", far)
	}
	for i := range pts {
		if pts[i] != before[i] {
			t.Fatalf("points modified")
		}
	}
}

func TestRenderOpacityScales(t *testing.T) {
	pts := square(40, 40, 100, 100)
	r := NewRenderer(DefaultStyle())
	lo, view := newCanvas(140, 140)
	hi, _ := newCanvas(140, 140)
	r.Render(lo, view, Frame{Points: pts, Closed: true, Opacity: PulseMin, Epoch: 2})
	r.Render(hi, view, Frame{Points: pts, Closed: true, Opacity: PulseMax, Epoch: 2})
	if lo.RGBAAt(40, 70).B >= hi.RGBAAt(40, 70).B {
		t.Fatalf("outline at %v not dimmer than at %v", PulseMin, PulseMax)
	}
	zero, _ := newCanvas(140, 140)
	r.Render(zero, view, Frame{Points: pts, Closed: true, Opacity: 0, Epoch: 2})
	if zero.RGBAAt(40, 70) != (color.RGBA{A: 255}) {
		t.Fatalf("zero opacity drew %+v", zero.RGBAAt(40, 70))
	}
}

func TestRenderMapsThroughViewport(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 100))
	view := selection.NewViewport(image.Pt(100, 0), selection.Dims{Width: 100, Height: 100})
	pts := selection.Polyline{{X: 0, Y: 50}, {X: 99, Y: 50}}
	NewRenderer(DefaultStyle()).Render(dst, view, Frame{Points: pts, Drawing: true})
	if dst.RGBAAt(101, 50).A == 0 {
		t.Fatalf("stroke not offset into the viewport")
	}
	if dst.RGBAAt(1, 50).A != 0 {
		t.Fatalf("stroke drawn outside the viewport")
	}
}

func TestStyleForUsesTheme(t *testing.T) {
	st := DefaultStyle()
	if st.DrawWidth != 2 || st.DashOn != 8 || st.DashOff != 4 || st.CommitWidth != 4 {
		t.Fatalf("unexpected pens: %+v", st)
	}
	if st.Glow.Radius*st.Glow.Passes < 20 {
		t.Fatalf("glow extent %d too small", st.Glow.Radius*st.Glow.Passes)
	}
	if st.Tint != (color.RGBA{250, 204, 21, 64}) {
		t.Fatalf("tint = %+v", st.Tint)
	}
}
