// Package notify raises desktop notifications for finished edits, saves and
// clipboard copies. Every event is off until enabled.
package notify

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/example/magicstudio/internal/imageio"
	"github.com/example/magicstudio/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when an image is written to disk.
	EventSave Event = "save"
	// EventCopy fires when an image or mask lands on the clipboard.
	EventCopy Event = "copy"
	// EventGenerate fires when an edit comes back, or fails.
	EventGenerate Event = "generate"
)

// maxDetail bounds the instruction echoed in a notification body.
const maxDetail = 80

// previewSize is the edge of the thumbnail attached to generate notices.
const previewSize = 128

// Preferences holds the title and the body template for each event. A
// template takes one %s, the event detail.
type Preferences struct {
	Title     string
	Templates map[Event]string
	// Failure formats a failed edit; it is sent when EventGenerate is on.
	Failure string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Magic Studio",
		Templates: map[Event]string{
			EventSave:     "Saved %s",
			EventCopy:     "Copied %s to clipboard",
			EventGenerate: "Magic applied: %s",
		},
		Failure: "Magic failed: %s",
	}
}

var envTemplates = []struct {
	key   string
	event Event
}{
	{"MAGICSTUDIO_NOTIFY_SAVE_TEXT", EventSave},
	{"MAGICSTUDIO_NOTIFY_COPY_TEXT", EventCopy},
	{"MAGICSTUDIO_NOTIFY_GENERATE_TEXT", EventGenerate},
}

// LoadPreferences applies MAGICSTUDIO_NOTIFY_* overrides to the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("MAGICSTUDIO_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, e := range envTemplates {
		if v := strings.TrimSpace(os.Getenv(e.key)); v != "" {
			prefs.Templates[e.event] = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAGICSTUDIO_NOTIFY_FAILURE_TEXT")); v != "" {
		prefs.Failure = v
	}
	return prefs
}

// sender delivers a notification; swapped in tests.
var sender = platform.Notify

// Notifier sends desktop notifications for the enabled events. A nil
// Notifier is silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	templates := make(map[Event]string, len(prefs.Templates))
	for k, v := range prefs.Templates {
		templates[k] = v
	}
	prefs.Templates = templates
	return &Notifier{prefs: prefs, enabled: make(map[Event]bool)}
}

// Enable switches an event on or off.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Generate announces a finished edit with a thumbnail of the result.
func (n *Notifier) Generate(instruction string, img image.Image) {
	if !n.on(EventGenerate) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		path, cleanup, err := writePreview(img)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.send(EventGenerate, n.prefs.Templates[EventGenerate], clip(instruction), opts)
}

// Failed reports an edit that did not come back.
func (n *Notifier) Failed(reason string) {
	if !n.on(EventGenerate) {
		return
	}
	n.send(EventGenerate, n.prefs.Failure, clip(reason), platform.Options{Timeout: 2 * platform.DefaultTimeout})
}

// Save announces a written file, using the file itself as the icon.
func (n *Notifier) Save(path string) {
	if !n.on(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.send(EventSave, n.prefs.Templates[EventSave], detail, opts)
}

// Copy announces a clipboard write; what names the copied thing.
func (n *Notifier) Copy(what string) {
	if !n.on(EventCopy) {
		return
	}
	if strings.TrimSpace(what) == "" {
		what = "image"
	}
	n.send(EventCopy, n.prefs.Templates[EventCopy], what, platform.Options{})
}

func (n *Notifier) on(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) send(event Event, template, detail string, opts platform.Options) {
	template = strings.TrimSpace(template)
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := sender(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

// clip shortens s to maxDetail runes.
func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxDetail {
		return s
	}
	r := []rune(s)
	return string(r[:maxDetail-1]) + "…"
}

func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "magicstudio-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	_ = f.Close()
	if err := imageio.Save(path, imageio.Thumbnail(img, previewSize, previewSize)); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}, nil
}
