package selection

import (
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
)

// Phase is the stage of a pointer interaction.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
	// PhaseCancel is raised when the platform aborts a touch, and by
	// Recorder.Interrupt when the window loses focus mid-stroke.
	PhaseCancel
	// PhaseLeave is raised when a pressed pointer leaves the canvas.
	PhaseLeave
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	case PhaseCancel:
		return "cancel"
	case PhaseLeave:
		return "leave"
	}
	return "unknown"
}

// mouseID identifies the mouse among pointer sources. Touch sequences use
// their own non-negative ids.
const mouseID = -1

// Pointer is a mouse or touch sample in window coordinates.
type Pointer struct {
	X, Y  float32
	Phase Phase
	ID    int64
}

// FromMouse converts a shiny mouse event. Only the left button starts and
// ends strokes; wheel steps and other buttons are ignored.
func FromMouse(e mouse.Event) (Pointer, bool) {
	p := Pointer{X: e.X, Y: e.Y, ID: mouseID}
	switch e.Direction {
	case mouse.DirNone:
		p.Phase = PhaseMove
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return Pointer{}, false
		}
		p.Phase = PhaseStart
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return Pointer{}, false
		}
		p.Phase = PhaseEnd
	default:
		return Pointer{}, false
	}
	return p, true
}

// FromTouch converts a touch event.
func FromTouch(e touch.Event) (Pointer, bool) {
	p := Pointer{X: e.X, Y: e.Y, ID: int64(e.Sequence)}
	switch e.Type {
	case touch.TypeBegin:
		p.Phase = PhaseStart
	case touch.TypeMove:
		p.Phase = PhaseMove
	case touch.TypeEnd:
		p.Phase = PhaseEnd
	default:
		return Pointer{}, false
	}
	return p, true
}
