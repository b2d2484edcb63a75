//go:build !(((linux || freebsd || openbsd || netbsd || dragonfly || darwin) && cgo) || windows)

package clipboard

import "image"

func ensureInit() error {
	if !hasDisplay() {
		return errNoDisplay
	}
	return errUnsupported
}

func WriteImage(image.Image) error { return ensureInit() }

func ReadImage() (image.Image, error) { return nil, ensureInit() }

func WriteText(string) error { return ensureInit() }

func ReadText() (string, error) { return "", ensureInit() }
