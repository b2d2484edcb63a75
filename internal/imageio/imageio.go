// Package imageio loads source pictures, prepares them for upload and writes
// results back to disk.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned for images with no pixels.
var ErrEmpty = errors.New("image has no pixels")

// Artifact is an encoded image ready to hand to a backend.
type Artifact struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Decode reads any registered format and returns the image with its format
// name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, "", ErrEmpty
	}
	return img, format, nil
}

// Load opens and decodes path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Downscale shrinks img so neither side exceeds maxSide, keeping the aspect
// ratio. Images already within bounds, or maxSide <= 0, are returned as is.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}

// Thumbnail returns a w x h crop-to-fill preview.
func Thumbnail(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Box)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// NewArtifact downscales img to maxSide and encodes it as PNG.
func NewArtifact(img image.Image, maxSide int) (*Artifact, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmpty
	}
	img = Downscale(img, maxSide)
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Artifact{Data: data, MIME: "image/png", Width: b.Dx(), Height: b.Dy()}, nil
}

// Image decodes the artifact.
func (a *Artifact) Image() (image.Image, error) {
	if a == nil || len(a.Data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := Decode(bytes.NewReader(a.Data))
	return img, err
}

// MIMEType returns the MIME type for a format name as reported by
// image.Decode.
func MIMEType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// Save writes img to path, choosing JPEG for .jpg/.jpeg and PNG otherwise.
func Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
