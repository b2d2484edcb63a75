// Package clipboard moves pictures and prompt text between the editor and
// the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"runtime"

	"github.com/example/magicstudio/internal/imageio"
)

var (
	errNoDisplay   = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errUnsupported = errors.New("clipboard operations are not supported by this build")
	errNoImage     = errors.New("clipboard does not contain image data")
	errNoText      = errors.New("clipboard does not contain text data")
)

// hasDisplay reports whether a graphical session is reachable. Only X11 and
// Wayland systems need an explicit display.
func hasDisplay() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func encodeImage(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imageio.ErrEmpty
	}
	return imageio.EncodePNG(img)
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errNoImage
	}
	img, _, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("clipboard image: %w", err)
	}
	return img, nil
}
