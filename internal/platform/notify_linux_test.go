//go:build linux

package platform

import (
	"testing"
	"time"
)

func TestNotifyHints(t *testing.T) {
	h := notifyHints(Options{})
	if _, ok := h[hintImage]; ok {
		t.Fatalf("image hint without icon: %v", h)
	}
	if got := h[hintCategory].Value(); got != "transfer.complete" {
		t.Fatalf("category = %v", got)
	}
	h = notifyHints(Options{IconPath: "/tmp/preview.png"})
	if got := h[hintImage].Value(); got != "/tmp/preview.png" {
		t.Fatalf("image-path = %v", got)
	}
}

func TestOptionsTimeout(t *testing.T) {
	if got := (Options{}).timeout(); got != DefaultTimeout {
		t.Fatalf("default timeout = %v", got)
	}
	if got := (Options{Timeout: time.Second}).timeout(); got != time.Second {
		t.Fatalf("timeout = %v", got)
	}
}
