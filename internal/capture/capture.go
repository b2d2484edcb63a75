// Package capture grabs a desktop screenshot through the XDG desktop portal
// so it can be used as a source picture.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var (
	// ErrUnsupported is returned where no screenshot portal exists.
	ErrUnsupported = errors.New("screen capture is not supported on this platform")
	// ErrCancelled is returned when the user dismisses the portal dialog.
	ErrCancelled = errors.New("screen capture cancelled")
)

// Options controls how the portal is asked for a screenshot.
type Options struct {
	// Interactive lets the user pick a region or window in the portal's own
	// dialog.
	Interactive   bool
	IncludeCursor bool
}

var portalScreenshotFn = portalScreenshot

// Screenshot captures the desktop.
func Screenshot(ctx context.Context, opts Options) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := portalScreenshotFn(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return img, nil
}

// Region captures the desktop and crops it to rect in screen coordinates.
func Region(ctx context.Context, rect image.Rectangle, opts Options) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, fmt.Errorf("region is empty")
	}
	shot, err := Screenshot(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cropToRect(shot, rect)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
