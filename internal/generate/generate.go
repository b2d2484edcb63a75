// Package generate sends an image, an optional selection mask and an optional
// reference picture to an image editing backend and returns the edited image.
package generate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/example/magicstudio/internal/imageio"
)

// Messages match what the editor shows to the user.
var (
	ErrMissingAPIKey     = errors.New("API Key not found.")
	ErrNoResponse        = errors.New("No AI response.")
	ErrNoImage           = errors.New("No image data returned.")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoSource          = errors.New("no source image")
	ErrNoInstruction     = errors.New("an instruction or a reference image is required")
)

// FailureMessage is shown when an error carries no text of its own.
const FailureMessage = "Magic failed. Try again!"

// Request is one edit. Mask and Reference are optional. The mask, when
// present, is a binary PNG at the original's resolution: white marks the
// region to change.
type Request struct {
	Original    *imageio.Artifact
	Mask        *imageio.Artifact
	Reference   *imageio.Artifact
	Instruction string
}

// Validate checks the submit precondition: a source image plus a non-blank
// instruction or a reference.
func (r Request) Validate() error {
	if r.Original == nil || len(r.Original.Data) == 0 {
		return ErrNoSource
	}
	if strings.TrimSpace(r.Instruction) == "" && r.Reference == nil {
		return ErrNoInstruction
	}
	return nil
}

// Result is the backend's answer.
type Result struct {
	Image image.Image
	// Text collects any commentary returned alongside the image.
	Text string
}

// Generator produces an edited image.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (*Result, error)

func (f Func) Generate(ctx context.Context, req Request) (*Result, error) { return f(ctx, req) }

// Prompt builds the text sent with the images.
func Prompt(req Request) string {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = "Restyle the subject to match the reference image"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Instruction: %s. Please transform the highlighted subject in this image naturally.", strings.TrimSuffix(instruction, "."))
	if req.Mask != nil {
		sb.WriteString(" The second image is a mask of the same size: only change the area that is white in the mask and keep everything else identical.")
	}
	if req.Reference != nil {
		sb.WriteString(" The last image is a reference for the desired look.")
	}
	return sb.String()
}

// Message returns the text to show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FailureMessage
}
