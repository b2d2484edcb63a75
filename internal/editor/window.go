package editor

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/magicstudio/internal/generate"
	"github.com/example/magicstudio/internal/notify"
	"github.com/example/magicstudio/internal/selection"
	"github.com/example/magicstudio/internal/theme"
)

const (
	frameDropThreshold = 10
	tickInterval       = 33 * time.Millisecond

	defaultWidth  = 1024
	defaultHeight = 768
	minWidth      = 640
	minHeight     = 480
)

// Editor is the interactive window: a canvas to lasso a subject on, a
// prompt bar and the history of finished edits.
type Editor struct {
	image       image.Image
	reference   image.Image
	instruction string
	theme       *theme.Theme
	generator   generate.Generator
	output      string
	saveDir     string
	maxUpload   int
	timeout     time.Duration
	notifier    *notify.Notifier

	recorderOpts []selection.Option
	capture      func(context.Context) (image.Image, error)

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithImage sets the picture to edit.
func WithImage(img image.Image) Option { return func(e *Editor) { e.image = img } }

// WithReference sets the style reference.
func WithReference(img image.Image) Option { return func(e *Editor) { e.reference = img } }

// WithInstruction pre-fills the prompt.
func WithInstruction(s string) Option { return func(e *Editor) { e.instruction = s } }

// WithTheme sets the window palette.
func WithTheme(t *theme.Theme) Option {
	return func(e *Editor) {
		if t != nil {
			e.theme = t
		}
	}
}

// WithGenerator sets the backend that performs edits.
func WithGenerator(g generate.Generator) Option { return func(e *Editor) { e.generator = g } }

// WithOutput sets the file written by Save. Without it Save writes a
// timestamped PNG into the save directory.
func WithOutput(path string) Option { return func(e *Editor) { e.output = path } }

// WithSaveDir sets the directory for timestamped saves.
func WithSaveDir(dir string) Option { return func(e *Editor) { e.saveDir = dir } }

// WithMaxUpload caps the longest side of uploaded images.
func WithMaxUpload(n int) Option { return func(e *Editor) { e.maxUpload = n } }

// WithTimeout bounds each generation request.
func WithTimeout(d time.Duration) Option { return func(e *Editor) { e.timeout = d } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(e *Editor) { e.notifier = n } }

// WithRecorderOptions configures the lasso recorder.
func WithRecorderOptions(opts ...selection.Option) Option {
	return func(e *Editor) { e.recorderOpts = append(e.recorderOpts, opts...) }
}

// WithCapture sets the screen grabber used by the capture action.
func WithCapture(fn func(context.Context) (image.Image, error)) Option {
	return func(e *Editor) { e.capture = fn }
}

// WithOnClose registers a callback for when the window closes.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// New creates an Editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		theme:   theme.Default(),
		saveDir: ".",
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Editor) notifyClose() {
	e.closeOnce.Do(func() {
		if e.onClose != nil {
			e.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (e *Editor) Run() { driver.Main(e.Main) }

// initialSize fits the window around img within sensible bounds.
func initialSize(img image.Image) (int, int) {
	if img == nil {
		return defaultWidth, defaultHeight
	}
	b := img.Bounds()
	w := min(max(b.Dx()+2*padding, minWidth), defaultWidth+256)
	h := min(max(b.Dy()+headerHeight+promptHeight+historyHeight+2*padding, minHeight), defaultHeight+128)
	return w, h
}

func (e *Editor) Main(s screen.Screen) {
	width, height := initialSize(e.image)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Magic Studio"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer e.notifyClose()

	c := newController(e, func(ev any) { w.Send(ev) })
	c.resize(width, height)
	defer c.shutdown()

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(tickInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if c.animating.Load() {
					w.Send(tickEvent{})
				}
			case <-done:
				return
			}
		}
	}()

	p := newPainter(s, w, e.theme)
	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			p.drawFrame(ctx, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch ev := w.NextEvent().(type) {
		case lifecycle.Event:
			if ev.To == lifecycle.StageDead {
				stopPaint()
				return
			}
			if ev.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff && c.loseFocus() {
				w.Send(paint.Event{})
			}
		case size.Event:
			c.resize(ev.WidthPx, ev.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := c.paintState()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case tickEvent:
			c.tick()
			w.Send(paint.Event{})
		case generateDone:
			c.finishGenerate(ev)
			w.Send(paint.Event{})
		case captureDone:
			c.finishCapture(ev)
			w.Send(paint.Event{})
		case mouse.Event:
			if c.handleMouse(ev) {
				w.Send(paint.Event{})
			}
		case touch.Event:
			if c.handleTouch(ev) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if c.handleKey(ev) {
				w.Send(paint.Event{})
			}
			if c.quit {
				stopPaint()
				return
			}
		case error:
			log.Printf("window: %v", ev)
		}
	}
}
