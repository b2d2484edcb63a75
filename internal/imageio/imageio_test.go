package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 77, 141, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

func TestDownscaleKeepsAspect(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{80, 60, 100, 80, 60},
		{400, 200, 0, 400, 200},
	}
	for _, tt := range tests {
		got := Downscale(checker(tt.w, tt.h), tt.max).Bounds()
		if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
			t.Fatalf("Downscale(%dx%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestNewArtifactRoundTrip(t *testing.T) {
	a, err := NewArtifact(checker(300, 150), 120)
	if err != nil {
		t.Fatalf("NewArtifact: %v", err)
	}
	if a.MIME != "image/png" || a.Width != 120 || a.Height != 60 {
		t.Fatalf("artifact = %s %dx%d", a.MIME, a.Width, a.Height)
	}
	img, err := a.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 60 {
		t.Fatalf("decoded bounds = %v", img.Bounds())
	}
}

func TestNewArtifactEmpty(t *testing.T) {
	if _, err := NewArtifact(image.NewRGBA(image.Rect(0, 0, 0, 0)), 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	var a *Artifact
	if _, err := a.Image(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("nil artifact err = %v", err)
	}
}

func TestDecodeFormats(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, checker(8, 8), nil); err != nil {
		t.Fatal(err)
	}
	_, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if MIMEType(format) != "image/jpeg" {
		t.Fatalf("format %q mapped to %q", format, MIMEType(format))
	}
	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.png", "nested/out.jpg"} {
		path := filepath.Join(dir, name)
		if err := Save(path, checker(10, 6)); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		img, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
			t.Fatalf("%s bounds = %v", name, img.Bounds())
		}
	}
}

func TestThumbnailSize(t *testing.T) {
	th := Thumbnail(checker(300, 100), 64, 64)
	if th.Bounds().Dx() != 64 || th.Bounds().Dy() != 64 {
		t.Fatalf("thumbnail bounds = %v", th.Bounds())
	}
}
