package editor

import (
	"fmt"
	"image"

	"github.com/example/magicstudio/internal/generate"
	"github.com/example/magicstudio/internal/imageio"
	"github.com/example/magicstudio/internal/mask"
)

// BuildRequest encodes a submission for a generator. The source and the
// reference are downscaled to maxUpload; sel, drawn at canvas size, is
// resampled to the uploaded source's size so both line up pixel for pixel.
func BuildRequest(original, reference image.Image, sel *image.Gray, instruction string, maxUpload int) (generate.Request, error) {
	req := generate.Request{Instruction: instruction}
	src, err := imageio.NewArtifact(original, maxUpload)
	if err != nil {
		return req, fmt.Errorf("source image: %w", err)
	}
	req.Original = src
	if sel != nil && !sel.Bounds().Empty() {
		scaled := mask.Scale(sel, src.Width, src.Height)
		data, err := mask.EncodePNG(scaled)
		if err != nil {
			return req, err
		}
		req.Mask = &imageio.Artifact{Data: data, MIME: "image/png", Width: src.Width, Height: src.Height}
	}
	if reference != nil {
		ref, err := imageio.NewArtifact(reference, maxUpload)
		if err != nil {
			return req, fmt.Errorf("reference image: %w", err)
		}
		req.Reference = ref
	}
	return req, req.Validate()
}

// RequestFor builds the request for a submission.
func RequestFor(sub Submission, maxUpload int) (generate.Request, error) {
	return BuildRequest(sub.Original, sub.Reference, sub.Selection.Mask, sub.Instruction, maxUpload)
}
