package selection

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Polyline is an ordered list of points in canvas pixel space.
type Polyline []vec.Vec2

// Len returns the number of recorded points.
func (p Polyline) Len() int { return len(p) }

// Clone returns a copy that does not share storage with p.
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	out := make(Polyline, len(p))
	copy(out, p)
	return out
}

// Bounds returns the axis-aligned box enclosing every point.
func (p Polyline) Bounds() rect.Rect {
	if len(p) == 0 {
		return rect.Rect{}
	}
	r := rect.Rect{LLx: math.Inf(1), LLy: math.Inf(1), URx: math.Inf(-1), URy: math.Inf(-1)}
	for _, pt := range p {
		r.LLx = min(r.LLx, pt.X)
		r.LLy = min(r.LLy, pt.Y)
		r.URx = max(r.URx, pt.X)
		r.URy = max(r.URy, pt.Y)
	}
	return r
}
