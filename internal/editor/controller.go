package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/magicstudio/internal/clipboard"
	"github.com/example/magicstudio/internal/generate"
	"github.com/example/magicstudio/internal/imageio"
	"github.com/example/magicstudio/internal/mask"
	"github.com/example/magicstudio/internal/overlay"
	"github.com/example/magicstudio/internal/selection"
)

const (
	messageDuration = 2 * time.Second
	processingCycle = 1500 * time.Millisecond
)

// generateDone carries a generator's answer back to the event loop.
type generateDone struct {
	token uint64
	img   image.Image
	text  string
	err   error
}

// captureDone carries a screenshot back to the event loop.
type captureDone struct {
	img image.Image
	err error
}

// tickEvent drives the selection pulse and the processing indicator.
type tickEvent struct{}

// controller is the editor's event-loop state. Everything except animating
// is owned by the goroutine calling its methods.
type controller struct {
	e     *Editor
	sess  *Session
	rec   *selection.Recorder
	pulse *overlay.Pulse
	keys  keymap

	actions map[string]func()

	width, height int
	layout        layout

	header  []*CacheButton
	history []*CacheButton
	submitB *CacheButton
	hover   *CacheButton
	pressed *CacheButton
	thumbs  map[string]image.Image

	cancel      context.CancelFunc
	cancelToken uint64
	started     time.Time
	lastTick    time.Time

	message      string
	messageUntil time.Time

	animating atomic.Bool
	quit      bool

	// send posts an event to the window's queue; safe from any goroutine.
	send func(any)
	now  func() time.Time
}

func newController(e *Editor, send func(any)) *controller {
	c := &controller{
		e:      e,
		sess:   NewSession(),
		pulse:  overlay.NewPulse(),
		keys:   keymap{},
		thumbs: map[string]image.Image{},
		send:   send,
		now:    time.Now,
	}
	opts := append([]selection.Option{}, e.recorderOpts...)
	opts = append(opts, selection.OnSelection(c.onSelection))
	c.rec = selection.New(opts...)
	c.registerActions()

	if e.image != nil {
		c.loadImage(e.image)
	}
	if e.reference != nil {
		c.sess.SetReference(e.reference)
	}
	if e.instruction != "" {
		c.sess.SetInstruction(e.instruction)
	}
	c.rebuild()
	return c
}

func (c *controller) registerActions() {
	c.actions = map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		c.actions[name] = fn
		c.keys.bind(name, keys)
	}
	ctrl := func(r rune) KeyShortcut { return KeyShortcut{Rune: r, Modifiers: key.ModControl} }
	ctrlShift := func(r rune) KeyShortcut {
		return KeyShortcut{Rune: r, Modifiers: key.ModControl | key.ModShift}
	}

	register("submit", shortcutList{{Code: key.CodeReturnEnter}, {Code: key.CodeKeypadEnter}}, c.submit)
	register("backspace", shortcutList{{Code: key.CodeDeleteBackspace}}, c.backspace)
	register("escape", shortcutList{{Code: key.CodeEscape}}, c.escape)
	register("clear", shortcutList{{Code: key.CodeDeleteBackspace, Modifiers: key.ModControl}}, c.clearSelection)
	register("undo", shortcutList{ctrl('z')}, c.undo)
	register("save", shortcutList{ctrl('s')}, c.save)
	register("copy", shortcutList{ctrl('c')}, c.copyImage)
	register("copy-mask", shortcutList{ctrlShift('c')}, c.copyMask)
	register("paste", shortcutList{ctrl('v')}, c.paste)
	register("paste-reference", shortcutList{ctrlShift('v')}, c.pasteReference)
	register("clear-reference", shortcutList{ctrl('d')}, c.clearReference)
	register("capture", shortcutList{ctrl('n')}, c.capture)
	register("layer", shortcutList{ctrl('l')}, c.layer)
	register("reset", shortcutList{ctrl('r')}, c.reset)
	register("compare", shortcutList{{Code: key.CodeTab}}, c.compare)
	register("quit", shortcutList{ctrl('q')}, func() { c.quit = true })
}

func (c *controller) onSelection(sel selection.Selection) {
	c.sess.SetSelection(sel)
	if !sel.Empty() {
		c.pulse.Reset()
	}
}

// resize records a new window size.
func (c *controller) resize(width, height int) {
	c.width, c.height = width, height
	c.relayout()
	c.rebuild()
}

// relayout recomputes the layout and moves the recorder's canvas. A change
// of canvas size clears the selection.
func (c *controller) relayout() {
	var size image.Point
	if img := c.sess.Displayed(); img != nil {
		size = img.Bounds().Size()
	}
	c.layout = computeLayout(c.width, c.height, size, len(c.sess.History()) > 0)
	c.rec.SetViewport(c.layout.viewport())
}

// rebuild recreates the buttons for the current mode. Buttons already handed
// to the painter are never modified.
func (c *controller) rebuild() {
	t := c.e.theme
	mode := c.sess.Mode()
	type headerAction struct {
		label string
		fn    func()
		off   bool
	}
	var entries []headerAction
	switch mode {
	case ModeIdle:
		entries = []headerAction{{label: "Paste", fn: c.paste}, {label: "Capture", fn: c.capture}}
	case ModeBrush:
		entries = []headerAction{
			{label: "Undo", fn: c.undo, off: c.rec.Len() == 0},
			{label: "Clear", fn: c.clearSelection, off: c.rec.Len() == 0},
			{label: "Reset", fn: c.reset},
		}
	case ModeProcessing:
		entries = []headerAction{{label: "Reset", fn: c.reset}}
	case ModeResult:
		compare := "Compare"
		if c.sess.Comparing() {
			compare = "Show result"
		}
		entries = []headerAction{
			{label: compare, fn: c.compare},
			{label: "Edit further", fn: c.layer},
			{label: "Copy", fn: c.copyImage},
			{label: "Save", fn: c.save},
			{label: "Reset", fn: c.reset},
		}
	}
	widths := make([]int, len(entries))
	for i, s := range entries {
		widths[i] = measure(s.label, basicfont.Face7x13) + 2*padding
	}
	slots := headerSlots(c.layout.header, widths)
	c.header = c.header[:0:0]
	for i, s := range entries {
		c.header = append(c.header, &CacheButton{Button: &ActionButton{
			label: s.label, disabled: s.off, theme: t, rect: slots[i], onActivate: s.fn,
		}})
	}

	c.history = nil
	items := c.sess.History()
	slotsH := historySlots(c.layout.history, len(items))
	for i, rect := range slotsH {
		item := items[i]
		c.history = append(c.history, &CacheButton{Button: &ThumbButton{
			thumb:      c.thumb(item),
			current:    mode == ModeResult && c.sess.Result() == item.Edited,
			theme:      t,
			rect:       rect,
			onActivate: func() { c.restore(item.ID) },
		}})
	}

	label, fn := "Magic", c.submit
	if mode == ModeProcessing {
		label, fn = "Cancel", c.cancelSubmit
	}
	c.submitB = &CacheButton{Button: &ActionButton{
		label:      label,
		accent:     true,
		disabled:   mode != ModeProcessing && !c.sess.CanSubmit(),
		theme:      t,
		rect:       c.layout.submit,
		onActivate: fn,
	}}
	c.hover, c.pressed = nil, nil
	c.updateAnimating()
}

func (c *controller) thumb(item HistoryItem) image.Image {
	if th, ok := c.thumbs[item.ID]; ok {
		return th
	}
	th := imageio.Thumbnail(item.Edited, thumbSize, thumbSize)
	c.thumbs[item.ID] = th
	return th
}

func (c *controller) buttons() []*CacheButton {
	out := make([]*CacheButton, 0, len(c.header)+len(c.history)+1)
	out = append(out, c.header...)
	out = append(out, c.history...)
	if c.submitB != nil {
		out = append(out, c.submitB)
	}
	return out
}

// updateAnimating reports to the ticker whether frames are needed without
// input: while processing, and while a committed selection pulses.
func (c *controller) updateAnimating() {
	mode := c.sess.Mode()
	on := mode == ModeProcessing || (mode == ModeBrush && c.rec.Closed())
	if on && !c.animating.Load() {
		c.lastTick = c.now()
	}
	c.animating.Store(on)
}

func (c *controller) tick() {
	now := c.now()
	if !c.lastTick.IsZero() {
		c.pulse.Update(now.Sub(c.lastTick))
	}
	c.lastTick = now
}

// paintState snapshots the controller for the paint goroutine.
func (c *controller) paintState() paintState {
	st := paintState{
		width:       c.width,
		height:      c.height,
		layout:      c.layout,
		mode:        c.sess.Mode(),
		image:       c.sess.Displayed(),
		comparing:   c.sess.Comparing(),
		instruction: c.sess.Instruction(),
		reference:   c.sess.Reference(),
		header:      c.header,
		history:     c.history,
		submit:      c.submitB,
		hover:       c.hover,
		pressed:     c.pressed,
		status:      statusText(c.sess.Mode(), c.rec.Selection()),
		errMsg:      c.sess.Error(),
		message:     c.message,
		frame: overlay.Frame{
			Points:  c.rec.Points(),
			Drawing: c.rec.Drawing(),
			Closed:  c.rec.Closed(),
			Opacity: c.pulse.Value(),
			Epoch:   c.rec.Epoch(),
		},
		messageUntil: c.messageUntil,
	}
	if st.mode == ModeProcessing {
		elapsed := c.now().Sub(c.started) % processingCycle
		st.processing = float64(elapsed) / float64(processingCycle)
	}
	return st
}

func statusText(m Mode, sel selection.Selection) string {
	switch m {
	case ModeBrush:
		if !sel.Empty() {
			b := sel.Points.Bounds()
			return fmt.Sprintf("Selected %.0f×%.0f px (%.0f%%)", b.URx-b.LLx, b.URy-b.LLy, mask.Coverage(sel.Mask)*100)
		}
		return "Circle a subject, then describe the change"
	case ModeProcessing:
		return "Working on it…"
	case ModeResult:
		return "Done"
	}
	return ""
}

func (c *controller) flash(msg string) {
	c.message = msg
	c.messageUntil = c.now().Add(messageDuration)
	log.Print(msg)
}

// handleMouse routes a mouse event. It reports whether a repaint is needed.
func (c *controller) handleMouse(e mouse.Event) bool {
	pt := image.Pt(int(e.X), int(e.Y))
	buttons := c.buttons()
	var over *CacheButton
	if i := hitButton(buttons, pt); i >= 0 {
		over = buttons[i]
	}
	dirty := false
	if over != c.hover && !c.rec.Drawing() {
		c.hover = over
		dirty = true
	}

	p, ok := selection.FromMouse(e)
	if !ok {
		return dirty
	}
	switch p.Phase {
	case selection.PhaseStart:
		if over != nil {
			c.pressed = over
			return true
		}
		if pt.In(c.layout.chip) {
			if c.sess.Reference() != nil {
				c.clearReference()
			} else {
				c.pasteReference()
			}
			c.rebuild()
			return true
		}
		if pt.In(c.layout.canvas) {
			return c.beginStroke(p) || dirty
		}
	case selection.PhaseEnd:
		if c.pressed != nil {
			b := c.pressed
			c.pressed = nil
			if pt.In(b.Rect()) {
				b.Activate()
				c.rebuild()
			}
			return true
		}
		if c.rec.Drawing() {
			c.rec.Handle(p)
			c.rebuild()
			return true
		}
	case selection.PhaseMove:
		if c.rec.Drawing() {
			c.rec.Handle(p)
			if !c.rec.Drawing() {
				c.rebuild()
			}
			return true
		}
	}
	return dirty
}

// handleTouch routes a touch on the canvas to the recorder.
func (c *controller) handleTouch(e touch.Event) bool {
	p, ok := selection.FromTouch(e)
	if !ok {
		return false
	}
	if p.Phase == selection.PhaseStart {
		if !image.Pt(int(e.X), int(e.Y)).In(c.layout.canvas) {
			return false
		}
		return c.beginStroke(p)
	}
	if !c.rec.Drawing() {
		return false
	}
	c.rec.Handle(p)
	if !c.rec.Drawing() {
		c.rebuild()
	}
	return true
}

// loseFocus ends an open stroke and drops a half-pressed button; the release
// will be delivered to another window.
func (c *controller) loseFocus() bool {
	drew := c.rec.Interrupt()
	if !drew && c.pressed == nil {
		return false
	}
	c.pressed = nil
	c.rebuild()
	return true
}

// beginStroke starts a lasso. Drawing during processing abandons the
// submission.
func (c *controller) beginStroke(p selection.Pointer) bool {
	switch c.sess.Mode() {
	case ModeProcessing:
		c.cancelSubmit()
	case ModeBrush:
	default:
		return false
	}
	c.sess.ClearError()
	c.rec.Handle(p)
	c.hover = nil
	c.updateAnimating()
	return true
}

// handleKey runs the bound action or types into the prompt. It reports
// whether a repaint is needed.
func (c *controller) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	if name, ok := c.keys.lookup(e); ok {
		if e.Direction != key.DirPress && name != "backspace" {
			return false
		}
		c.actions[name]()
		c.rebuild()
		return true
	}
	if e.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 {
		return false
	}
	if e.Rune < 0 || !unicode.IsPrint(e.Rune) || c.sess.Mode() == ModeIdle {
		return false
	}
	c.sess.SetInstruction(c.sess.Instruction() + string(e.Rune))
	c.rebuild()
	return true
}

func (c *controller) backspace() {
	s := c.sess.Instruction()
	if s == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(s)
	c.sess.SetInstruction(s[:len(s)-n])
}

func (c *controller) escape() {
	switch {
	case c.sess.Mode() == ModeProcessing:
		c.cancelSubmit()
	case c.sess.Error() != "":
		c.sess.ClearError()
	case c.sess.Comparing():
		c.compare()
	default:
		c.clearSelection()
	}
}

func (c *controller) clearSelection() {
	if c.sess.Mode() != ModeBrush {
		return
	}
	c.rec.Clear()
}

func (c *controller) undo() {
	if c.sess.Mode() != ModeBrush {
		return
	}
	c.rec.UndoLastSegment()
}

// submit sends the current session to the generator. The request is built
// and sent off the event loop; the answer comes back as generateDone.
func (c *controller) submit() {
	sub, err := c.sess.BeginSubmit()
	if err != nil {
		c.flash(err.Error())
		return
	}
	gen := c.e.generator
	if gen == nil {
		c.sess.FailSubmit(sub.Token, errors.New("no generator configured"))
		return
	}
	timeout := c.e.timeout
	ctx, cancel := context.WithCancel(context.Background())
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	}
	c.cancel, c.cancelToken = cancel, sub.Token
	c.started = c.now()
	maxUpload, send := c.e.maxUpload, c.send
	log.Printf("submit: token=%d instruction=%q masked=%t reference=%t",
		sub.Token, sub.Instruction, !sub.Selection.Empty(), sub.Reference != nil)

	go func() {
		defer cancel()
		done := generateDone{token: sub.Token}
		req, err := RequestFor(sub, maxUpload)
		if err != nil {
			done.err = err
			send(done)
			return
		}
		res, err := gen.Generate(ctx, req)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			done.err = fmt.Errorf("request timed out after %s", timeout)
		case err != nil:
			done.err = err
		case res == nil || res.Image == nil:
			done.err = generate.ErrNoImage
		default:
			done.img, done.text = res.Image, res.Text
		}
		send(done)
	}()
}

func (c *controller) finishGenerate(ev generateDone) {
	if c.cancelToken == ev.token {
		c.cancel, c.cancelToken = nil, 0
	}
	if ev.err != nil {
		if c.sess.FailSubmit(ev.token, ev.err) {
			log.Printf("generate: %v", ev.err)
			c.e.notifier.Failed(generate.Message(ev.err))
		}
		c.rebuild()
		return
	}
	if !c.sess.CompleteSubmit(ev.token, ev.img) {
		log.Printf("generate: dropping stale result %d", ev.token)
		return
	}
	if ev.text != "" {
		log.Printf("generate: %s", ev.text)
	}
	c.e.notifier.Generate(c.sess.History()[0].Instruction, ev.img)
	c.relayout()
	c.rebuild()
}

func (c *controller) cancelSubmit() {
	if !c.sess.CancelSubmit() {
		return
	}
	c.stopGeneration()
	c.flash("Edit cancelled")
}

func (c *controller) stopGeneration() {
	if c.cancel != nil {
		c.cancel()
		c.cancel, c.cancelToken = nil, 0
	}
}

// loadImage replaces the source picture.
func (c *controller) loadImage(img image.Image) {
	if err := c.sess.LoadImage(img); err != nil {
		c.flash(err.Error())
		return
	}
	c.stopGeneration()
	c.relayout()
	c.rec.Reset(c.layout.viewport())
	c.pulse.Reset()
}

func (c *controller) save() {
	img := c.sess.Displayed()
	if img == nil {
		c.flash("nothing to save")
		return
	}
	path := c.e.output
	if path == "" {
		name := fmt.Sprintf("magicstudio-%s.png", c.now().Format("20060102-150405"))
		path = filepath.Join(c.e.saveDir, name)
	}
	if err := imageio.Save(path, img); err != nil {
		c.flash(fmt.Sprintf("save: %v", err))
		return
	}
	c.flash(fmt.Sprintf("saved %s", path))
	c.e.notifier.Save(path)
}

func (c *controller) copyImage() {
	img := c.sess.Displayed()
	if img == nil {
		return
	}
	if err := clipboard.WriteImage(img); err != nil {
		c.flash(fmt.Sprintf("copy: %v", err))
		return
	}
	c.flash("image copied to clipboard")
	c.e.notifier.Copy("image")
}

// copyMask places the selection mask, at the picture's size, on the
// clipboard.
func (c *controller) copyMask() {
	sel := c.sess.Selection()
	orig := c.sess.Original()
	if sel.Empty() || orig == nil {
		c.flash("no selection to copy")
		return
	}
	size := orig.Bounds().Size()
	if err := clipboard.WriteImage(mask.Scale(sel.Mask, size.X, size.Y)); err != nil {
		c.flash(fmt.Sprintf("copy: %v", err))
		return
	}
	c.flash("mask copied to clipboard")
	c.e.notifier.Copy("mask")
}

// paste loads a clipboard picture as the source, or appends clipboard text
// to the prompt when there is no picture.
func (c *controller) paste() {
	img, err := clipboard.ReadImage()
	if err == nil {
		c.loadImage(img)
		return
	}
	if c.sess.Mode() != ModeIdle {
		if text, terr := clipboard.ReadText(); terr == nil && strings.TrimSpace(text) != "" {
			c.sess.SetInstruction(c.sess.Instruction() + strings.Join(strings.Fields(text), " "))
			return
		}
	}
	c.flash(fmt.Sprintf("paste: %v", err))
}

func (c *controller) pasteReference() {
	img, err := clipboard.ReadImage()
	if err != nil {
		c.flash(fmt.Sprintf("paste reference: %v", err))
		return
	}
	c.sess.SetReference(img)
	c.flash("reference image set")
}

func (c *controller) clearReference() {
	if c.sess.Reference() == nil {
		return
	}
	c.sess.ClearReference()
}

// capture grabs the screen off the event loop; the picture arrives as
// captureDone.
func (c *controller) capture() {
	fn := c.e.capture
	if fn == nil {
		c.flash("screen capture unavailable")
		return
	}
	send := c.send
	go func() {
		img, err := fn(context.Background())
		send(captureDone{img: img, err: err})
	}()
}

func (c *controller) finishCapture(ev captureDone) {
	if ev.err != nil {
		c.flash(fmt.Sprintf("capture: %v", ev.err))
		return
	}
	c.loadImage(ev.img)
	c.flash("captured screenshot")
	c.rebuild()
}

func (c *controller) layer() {
	if err := c.sess.LayerAnotherEdit(); err != nil {
		return
	}
	c.relayout()
	c.rec.Reset(c.layout.viewport())
}

// compare swaps the canvas between the result and the original, which may
// differ in aspect ratio.
func (c *controller) compare() {
	c.sess.ToggleCompare()
	c.relayout()
}

func (c *controller) restore(id string) {
	if c.sess.Mode() == ModeProcessing {
		c.stopGeneration()
	}
	if err := c.sess.Restore(id); err != nil {
		c.flash(err.Error())
		return
	}
	c.relayout()
	c.rec.Reset(c.layout.viewport())
	c.rebuild()
}

func (c *controller) reset() {
	c.stopGeneration()
	c.sess.Reset()
	c.relayout()
	c.rec.Reset(c.layout.viewport())
}

// shutdown abandons any in-flight work.
func (c *controller) shutdown() {
	c.stopGeneration()
	c.animating.Store(false)
}
