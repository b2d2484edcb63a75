// Package selection records a freehand lasso from pointer input and turns the
// finished loop into a black/white mask.
package selection

import (
	"image"

	"github.com/example/magicstudio/internal/mask"
)

const (
	// DefaultClosureThreshold is the number of points a finished stroke needs
	// before it is treated as a closed selection.
	DefaultClosureThreshold = 6
	// DefaultUndoChunk is how many trailing points UndoLastSegment removes.
	DefaultUndoChunk = 15
	MinUndoChunk     = 10
	MaxUndoChunk     = 20
)

// Selection is the result delivered to observers when a stroke finishes. A
// zero Mask means there is no selection and the edit applies to the whole
// image.
type Selection struct {
	Points Polyline
	Mask   *image.Gray
	// Epoch is the stroke generation the selection belongs to.
	Epoch uint64
}

// Empty reports whether the selection carries no mask.
func (s Selection) Empty() bool { return s.Mask == nil }

// Option configures a Recorder.
type Option func(*Recorder)

// WithClosureThreshold sets the minimum point count for a closed selection.
// Values below mask.MinPoints are raised to it.
func WithClosureThreshold(n int) Option {
	return func(r *Recorder) { r.threshold = n }
}

// WithUndoChunk sets how many points UndoLastSegment drops.
func WithUndoChunk(n int) Option {
	return func(r *Recorder) { r.undoChunk = n }
}

// WithMaskOptions sets the fill rule and anti-aliasing used for masks.
func WithMaskOptions(o mask.Options) Option {
	return func(r *Recorder) { r.maskOpts = o }
}

// WithViewport sets the initial canvas placement.
func WithViewport(v Viewport) Option {
	return func(r *Recorder) { r.view = v }
}

// OnSelection registers fn to receive every selection change.
func OnSelection(fn func(Selection)) Option {
	return func(r *Recorder) { r.Subscribe(fn) }
}

// Recorder owns the polyline for one canvas. It is not safe for concurrent
// use; the window's event loop drives it.
type Recorder struct {
	threshold int
	undoChunk int
	maskOpts  mask.Options
	view      Viewport

	points  Polyline
	drawing bool
	active  int64
	epoch   uint64
	current Selection

	listeners []func(Selection)
}

// New returns a Recorder with the defaults applied before opts.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		threshold: DefaultClosureThreshold,
		undoChunk: DefaultUndoChunk,
	}
	for _, o := range opts {
		o(r)
	}
	r.threshold = max(r.threshold, mask.MinPoints)
	if r.undoChunk == 0 {
		r.undoChunk = DefaultUndoChunk
	}
	r.undoChunk = min(max(r.undoChunk, MinUndoChunk), MaxUndoChunk)
	return r
}

// Subscribe adds an observer for selection changes.
func (r *Recorder) Subscribe(fn func(Selection)) {
	if fn != nil {
		r.listeners = append(r.listeners, fn)
	}
}

// ClosureThreshold returns the effective closure threshold.
func (r *Recorder) ClosureThreshold() int { return r.threshold }

// UndoChunk returns the effective undo chunk size.
func (r *Recorder) UndoChunk() int { return r.undoChunk }

// Points returns a copy of the current polyline.
func (r *Recorder) Points() Polyline { return r.points.Clone() }

// Len returns the number of recorded points.
func (r *Recorder) Len() int { return len(r.points) }

// Drawing reports whether a stroke is in progress.
func (r *Recorder) Drawing() bool { return r.drawing }

// Closed reports whether the polyline is a finished loop long enough to be a
// selection.
func (r *Recorder) Closed() bool { return !r.drawing && len(r.points) >= r.threshold }

// Epoch returns the current stroke generation. It advances on every
// BeginStroke and Reset so results computed for an older stroke can be
// recognised as stale.
func (r *Recorder) Epoch() uint64 { return r.epoch }

// Selection returns the last committed selection.
func (r *Recorder) Selection() Selection { return r.current }

// Viewport returns the current canvas placement.
func (r *Recorder) Viewport() Viewport { return r.view }

// Handle routes a pointer sample to the matching stroke operation. Cancel and
// leave behave exactly like release, and a move off the canvas while pressed
// counts as leaving it.
func (r *Recorder) Handle(p Pointer) {
	switch p.Phase {
	case PhaseStart:
		r.BeginStroke(p)
	case PhaseMove:
		if r.drawing && p.ID == r.active && !r.view.Contains(p.X, p.Y) {
			r.EndStroke()
			return
		}
		r.ExtendStroke(p)
	case PhaseEnd, PhaseCancel, PhaseLeave:
		if r.drawing && p.ID != r.active && p.Phase == PhaseEnd {
			return
		}
		r.EndStroke()
	}
}

// Interrupt cancels the active pointer's stroke, as when the window loses
// focus before the release arrives. It reports whether a stroke was open.
func (r *Recorder) Interrupt() bool {
	if !r.drawing {
		return false
	}
	r.Handle(Pointer{Phase: PhaseCancel, ID: r.active})
	return true
}

// BeginStroke starts a new polyline at the mapped pointer position,
// discarding any previous one.
func (r *Recorder) BeginStroke(p Pointer) {
	if r.drawing && p.ID != r.active {
		return
	}
	had := !r.current.Empty()
	r.epoch++
	r.drawing = true
	r.active = p.ID
	r.points = append(r.points[:0:0], r.view.Map(p.X, p.Y))
	if had {
		r.setSelection(Selection{Epoch: r.epoch})
	} else {
		r.current = Selection{Epoch: r.epoch}
	}
}

// ExtendStroke appends the mapped position while drawing. It does nothing
// otherwise.
func (r *Recorder) ExtendStroke(p Pointer) {
	if !r.drawing || p.ID != r.active {
		return
	}
	r.points = append(r.points, r.view.Map(p.X, p.Y))
}

// EndStroke finishes the stroke and commits the selection: a mask when the
// loop has at least the closure threshold of points, no selection otherwise.
func (r *Recorder) EndStroke() {
	if !r.drawing {
		return
	}
	r.drawing = false
	r.commit()
}

// Clear removes the polyline and reports that there is no selection.
func (r *Recorder) Clear() {
	r.points = nil
	r.drawing = false
	r.setSelection(Selection{Epoch: r.epoch})
}

// UndoLastSegment drops the last UndoChunk points, or all of them if fewer
// remain, and re-evaluates the selection.
func (r *Recorder) UndoLastSegment() {
	n := max(len(r.points)-r.undoChunk, 0)
	r.points = r.points[:n]
	if r.drawing {
		return
	}
	r.commit()
}

// SetViewport updates the canvas placement. A change of canvas size
// invalidates recorded points, so the recorder is cleared.
func (r *Recorder) SetViewport(v Viewport) {
	if v.Canvas != r.view.Canvas {
		r.Reset(v)
		return
	}
	r.view = v
}

// Reset clears all state for a new image or canvas size.
func (r *Recorder) Reset(v Viewport) {
	r.view = v
	r.epoch++
	r.Clear()
}

func (r *Recorder) commit() {
	if len(r.points) < r.threshold {
		r.setSelection(Selection{Epoch: r.epoch})
		return
	}
	m := mask.Rasterize(r.points, r.view.Canvas.Width, r.view.Canvas.Height, r.maskOpts)
	if m == nil {
		r.setSelection(Selection{Epoch: r.epoch})
		return
	}
	r.setSelection(Selection{Points: r.points.Clone(), Mask: m, Epoch: r.epoch})
}

func (r *Recorder) setSelection(s Selection) {
	r.current = s
	for _, fn := range r.listeners {
		fn(s)
	}
}
