// Package editor hosts the interactive lasso editor: the session state
// machine, the shiny window and the glue that turns a selection into a
// generation request.
package editor

import (
	"errors"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/magicstudio/internal/generate"
	"github.com/example/magicstudio/internal/selection"
)

// Mode is the session's stage.
type Mode int

const (
	ModeIdle Mode = iota
	ModeBrush
	ModeProcessing
	ModeResult
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeBrush:
		return "brush"
	case ModeProcessing:
		return "processing"
	case ModeResult:
		return "result"
	}
	return "unknown"
}

// DefaultHistoryLabel names history entries submitted without an instruction.
const DefaultHistoryLabel = "Pink Magic Transformation"

var (
	ErrNoImage     = errors.New("no image loaded")
	ErrNotReady    = errors.New("describe the edit or add a reference image")
	ErrBusy        = errors.New("an edit is already in progress")
	ErrNoResult    = errors.New("no result to continue from")
	ErrUnknownItem = errors.New("no such history item")
)

// HistoryItem records one finished edit.
type HistoryItem struct {
	ID          string
	Original    image.Image
	Edited      image.Image
	Instruction string
	Timestamp   time.Time
}

// Submission is a snapshot taken when an edit is sent. Token identifies it
// so late answers for an abandoned submission can be dropped.
type Submission struct {
	Token       uint64
	Original    image.Image
	Reference   image.Image
	Selection   selection.Selection
	Instruction string
}

// Session holds everything the editor shows apart from the live stroke.
// It is driven from the window's event loop and is not safe for concurrent
// use.
type Session struct {
	mode        Mode
	original    image.Image
	reference   image.Image
	result      image.Image
	selection   selection.Selection
	instruction string
	history     []HistoryItem
	errMsg      string
	compare     bool
	token       uint64
	pending     uint64

	now   func() time.Time
	newID func() string
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Session) Mode() Mode                     { return s.mode }
func (s *Session) Original() image.Image          { return s.original }
func (s *Session) Reference() image.Image         { return s.reference }
func (s *Session) Result() image.Image            { return s.result }
func (s *Session) Selection() selection.Selection { return s.selection }
func (s *Session) Instruction() string            { return s.instruction }
func (s *Session) Error() string                  { return s.errMsg }
func (s *Session) Comparing() bool                { return s.compare }

// History returns finished edits, newest first.
func (s *Session) History() []HistoryItem {
	out := make([]HistoryItem, len(s.history))
	copy(out, s.history)
	return out
}

// Displayed returns the image the canvas should show.
func (s *Session) Displayed() image.Image {
	if s.mode == ModeResult && s.result != nil && !s.compare {
		return s.result
	}
	return s.original
}

// LoadImage starts over with img as the source, dropping the reference,
// result, instruction and selection of the previous picture.
func (s *Session) LoadImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrNoImage
	}
	s.abandon()
	s.original = img
	s.reference = nil
	s.result = nil
	s.instruction = ""
	s.selection = selection.Selection{}
	s.errMsg = ""
	s.compare = false
	s.mode = ModeBrush
	return nil
}

// SetReference attaches a style reference.
func (s *Session) SetReference(img image.Image) {
	if img != nil && img.Bounds().Empty() {
		img = nil
	}
	s.reference = img
}

// ClearReference removes the style reference.
func (s *Session) ClearReference() { s.reference = nil }

// SetInstruction replaces the prompt text.
func (s *Session) SetInstruction(text string) { s.instruction = text }

// SetSelection records the latest committed selection. An empty selection
// means the edit applies to the whole picture.
func (s *Session) SetSelection(sel selection.Selection) { s.selection = sel }

// ClearError hides the last failure message.
func (s *Session) ClearError() { s.errMsg = "" }

// CanSubmit reports whether an edit may be sent: a picture is loaded, nothing
// is in flight and there is an instruction or a reference.
func (s *Session) CanSubmit() bool {
	if s.original == nil || s.mode == ModeProcessing || s.mode == ModeIdle {
		return false
	}
	return strings.TrimSpace(s.instruction) != "" || s.reference != nil
}

// BeginSubmit moves to Processing and returns what to send.
func (s *Session) BeginSubmit() (Submission, error) {
	switch {
	case s.original == nil:
		return Submission{}, ErrNoImage
	case s.mode == ModeProcessing:
		return Submission{}, ErrBusy
	case !s.CanSubmit():
		return Submission{}, ErrNotReady
	}
	s.token++
	s.pending = s.token
	s.mode = ModeProcessing
	s.errMsg = ""
	s.compare = false
	return Submission{
		Token:       s.token,
		Original:    s.original,
		Reference:   s.reference,
		Selection:   s.selection,
		Instruction: s.instruction,
	}, nil
}

// CompleteSubmit stores the edited image for the submission identified by
// token. It reports false when the submission is no longer current.
func (s *Session) CompleteSubmit(token uint64, edited image.Image) bool {
	if !s.current(token) {
		return false
	}
	if edited == nil {
		return s.FailSubmit(token, generate.ErrNoImage)
	}
	s.pending = 0
	s.result = edited
	s.mode = ModeResult
	label := strings.TrimSpace(s.instruction)
	if label == "" {
		label = DefaultHistoryLabel
	}
	s.history = append([]HistoryItem{{
		ID:          s.newID(),
		Original:    s.original,
		Edited:      edited,
		Instruction: label,
		Timestamp:   s.now(),
	}}, s.history...)
	return true
}

// FailSubmit returns to Brush with err's message. The selection and prompt
// are kept so the user can retry.
func (s *Session) FailSubmit(token uint64, err error) bool {
	if !s.current(token) {
		return false
	}
	s.pending = 0
	s.mode = ModeBrush
	s.errMsg = generate.Message(err)
	if s.errMsg == "" {
		s.errMsg = generate.FailureMessage
	}
	return true
}

// CancelSubmit abandons an in-flight edit and returns to Brush.
func (s *Session) CancelSubmit() bool {
	if s.mode != ModeProcessing {
		return false
	}
	s.abandon()
	s.mode = ModeBrush
	return true
}

// LayerAnotherEdit makes the result the new source so a further edit can
// build on it.
func (s *Session) LayerAnotherEdit() error {
	if s.mode != ModeResult || s.result == nil {
		return ErrNoResult
	}
	s.original = s.result
	s.result = nil
	s.instruction = ""
	s.selection = selection.Selection{}
	s.compare = false
	s.mode = ModeBrush
	return nil
}

// ToggleCompare flips between the result and the source while a result is
// shown.
func (s *Session) ToggleCompare() bool {
	if s.mode != ModeResult {
		return false
	}
	s.compare = !s.compare
	return true
}

// Restore reopens a history item as the current result.
func (s *Session) Restore(id string) error {
	for _, item := range s.history {
		if item.ID != id {
			continue
		}
		s.abandon()
		s.original = item.Original
		s.result = item.Edited
		s.instruction = item.Instruction
		s.selection = selection.Selection{}
		s.errMsg = ""
		s.compare = false
		s.mode = ModeResult
		return nil
	}
	return ErrUnknownItem
}

// Reset clears the picture and returns to Idle. History is kept.
func (s *Session) Reset() {
	s.abandon()
	s.original = nil
	s.reference = nil
	s.result = nil
	s.instruction = ""
	s.selection = selection.Selection{}
	s.errMsg = ""
	s.compare = false
	s.mode = ModeIdle
}

func (s *Session) current(token uint64) bool {
	return s.mode == ModeProcessing && token != 0 && token == s.pending
}

func (s *Session) abandon() { s.pending = 0 }
