package editor

import (
	"context"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/magicstudio/internal/generate"
)

type eventSink chan any

func (s eventSink) send(ev any) { s <- ev }

func (s eventSink) next(t *testing.T) any {
	t.Helper()
	select {
	case ev := <-s:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func newTestController(t *testing.T, opts ...Option) (*controller, eventSink) {
	t.Helper()
	sink := make(eventSink, 4)
	e := New(append([]Option{WithImage(picture(400, 300))}, opts...)...)
	c := newController(e, sink.send)
	c.resize(1000, 800)
	return c, sink
}

func typeText(c *controller, s string) {
	for _, r := range s {
		c.handleKey(key.Event{Rune: r, Direction: key.DirPress})
	}
}

func press(c *controller, code key.Code, mods key.Modifiers) bool {
	return c.handleKey(key.Event{Rune: -1, Code: code, Modifiers: mods, Direction: key.DirPress})
}

func mouseAt(c *controller, p image.Point, dir mouse.Direction) bool {
	return c.handleMouse(mouse.Event{X: float32(p.X), Y: float32(p.Y), Button: mouse.ButtonLeft, Direction: dir})
}

// drawLoop drags a circle across the middle of the canvas.
func drawLoop(c *controller) {
	centre := c.layout.canvas.Min.Add(c.layout.canvas.Size().Div(2))
	r := float64(c.layout.canvas.Dy()) / 4
	pt := func(i int) image.Point {
		a := 2 * math.Pi * float64(i) / 24
		return centre.Add(image.Pt(int(r*math.Cos(a)), int(r*math.Sin(a))))
	}
	mouseAt(c, pt(0), mouse.DirPress)
	for i := 1; i <= 24; i++ {
		mouseAt(c, pt(i), mouse.DirNone)
	}
	mouseAt(c, pt(24), mouse.DirRelease)
}

func TestControllerStartsInBrushWithImage(t *testing.T) {
	c, _ := newTestController(t)
	if c.sess.Mode() != ModeBrush {
		t.Fatalf("mode = %v", c.sess.Mode())
	}
	if c.layout.canvas.Empty() || c.rec.Viewport().Rect != c.layout.canvas {
		t.Fatalf("recorder viewport %v, canvas %v", c.rec.Viewport().Rect, c.layout.canvas)
	}
	if !c.submitB.Button.(*ActionButton).disabled {
		t.Fatal("submit enabled without an instruction")
	}
}

func TestTypingEditsPrompt(t *testing.T) {
	c, _ := newTestController(t)
	typeText(c, "pinké")
	press(c, key.CodeDeleteBackspace, 0)
	if got := c.sess.Instruction(); got != "pink" {
		t.Fatalf("instruction = %q", got)
	}
	if c.submitB.Button.(*ActionButton).disabled {
		t.Fatal("submit disabled with an instruction")
	}
	c.handleKey(key.Event{Rune: 'x', Code: key.CodeX, Modifiers: key.ModControl, Direction: key.DirPress})
	if got := c.sess.Instruction(); got != "pink" {
		t.Fatalf("control key typed: %q", got)
	}
}

func TestLassoCommitsSelection(t *testing.T) {
	c, _ := newTestController(t)
	drawLoop(c)
	sel := c.sess.Selection()
	if sel.Empty() {
		t.Fatal("no selection after drawing a loop")
	}
	if b := sel.Mask.Bounds(); b.Dx() != c.layout.canvas.Dx() || b.Dy() != c.layout.canvas.Dy() {
		t.Fatalf("mask bounds %v, canvas %v", b, c.layout.canvas)
	}
	if !c.animating.Load() {
		t.Fatal("committed selection should pulse")
	}
	press(c, key.CodeEscape, 0)
	if !c.sess.Selection().Empty() || c.rec.Len() != 0 {
		t.Fatal("escape did not clear the selection")
	}
	if c.animating.Load() {
		t.Fatal("still animating without a selection")
	}
}

func TestSubmitCompletesIntoHistory(t *testing.T) {
	edited := picture(400, 300)
	var got generate.Request
	gen := generate.Func(func(ctx context.Context, req generate.Request) (*generate.Result, error) {
		got = req
		return &generate.Result{Image: edited}, nil
	})
	c, sink := newTestController(t, WithGenerator(gen), WithMaxUpload(200))
	drawLoop(c)
	typeText(c, "pink hair")
	press(c, key.CodeReturnEnter, 0)
	if c.sess.Mode() != ModeProcessing {
		t.Fatalf("mode = %v", c.sess.Mode())
	}
	if !c.animating.Load() {
		t.Fatal("processing should animate")
	}

	ev, ok := sink.next(t).(generateDone)
	if !ok {
		t.Fatal("expected generateDone")
	}
	c.finishGenerate(ev)
	if c.sess.Mode() != ModeResult || c.sess.Result() != edited {
		t.Fatalf("mode = %v, result = %v", c.sess.Mode(), c.sess.Result())
	}
	if got.Mask == nil || got.Original.Width != 200 || got.Mask.Width != 200 || got.Mask.Height != 150 {
		t.Fatalf("request original=%+v mask=%+v", got.Original, got.Mask)
	}
	if len(c.history) != 1 || c.layout.history.Empty() {
		t.Fatalf("history buttons = %d, strip = %v", len(c.history), c.layout.history)
	}
	if c.cancel != nil {
		t.Fatal("cancel func kept after completion")
	}
}

func TestSubmitFailureReturnsToBrush(t *testing.T) {
	gen := generate.Func(func(context.Context, generate.Request) (*generate.Result, error) {
		return nil, generate.ErrNoResponse
	})
	c, sink := newTestController(t, WithGenerator(gen))
	drawLoop(c)
	typeText(c, "pink")
	press(c, key.CodeReturnEnter, 0)
	c.finishGenerate(sink.next(t).(generateDone))
	if c.sess.Mode() != ModeBrush {
		t.Fatalf("mode = %v", c.sess.Mode())
	}
	if c.sess.Error() != generate.ErrNoResponse.Error() {
		t.Fatalf("error = %q", c.sess.Error())
	}
	if c.sess.Selection().Empty() {
		t.Fatal("selection lost after failure")
	}
}

func TestNewStrokeAbandonsSubmission(t *testing.T) {
	gen := generate.Func(func(ctx context.Context, _ generate.Request) (*generate.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c, sink := newTestController(t, WithGenerator(gen))
	typeText(c, "pink")
	press(c, key.CodeReturnEnter, 0)
	if c.sess.Mode() != ModeProcessing {
		t.Fatalf("mode = %v", c.sess.Mode())
	}

	mouseAt(c, c.layout.canvas.Min.Add(image.Pt(5, 5)), mouse.DirPress)
	if c.sess.Mode() != ModeBrush || !c.rec.Drawing() {
		t.Fatalf("mode = %v, drawing = %v", c.sess.Mode(), c.rec.Drawing())
	}

	c.finishGenerate(sink.next(t).(generateDone))
	if c.sess.Mode() != ModeBrush || c.sess.Error() != "" || len(c.sess.History()) != 0 {
		t.Fatalf("stale answer applied: mode=%v err=%q", c.sess.Mode(), c.sess.Error())
	}
}

func TestTimeoutReportsMessage(t *testing.T) {
	gen := generate.Func(func(ctx context.Context, _ generate.Request) (*generate.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c, sink := newTestController(t, WithGenerator(gen), WithTimeout(10*time.Millisecond))
	typeText(c, "pink")
	press(c, key.CodeReturnEnter, 0)
	c.finishGenerate(sink.next(t).(generateDone))
	if c.sess.Mode() != ModeBrush || c.sess.Error() != "request timed out after 10ms" {
		t.Fatalf("mode=%v err=%q", c.sess.Mode(), c.sess.Error())
	}
}

func TestSaveWritesDisplayedImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	c, _ := newTestController(t, WithOutput(out))
	c.handleKey(key.Event{Rune: 's', Code: key.CodeS, Modifiers: key.ModControl, Direction: key.DirPress})
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.message != "saved "+out {
		t.Fatalf("message = %q", c.message)
	}
}

func TestCaptureLoadsImage(t *testing.T) {
	shot := picture(800, 200)
	c, sink := newTestController(t, WithCapture(func(context.Context) (image.Image, error) {
		return shot, nil
	}))
	typeText(c, "pink")
	c.handleKey(key.Event{Rune: 'n', Code: key.CodeN, Modifiers: key.ModControl, Direction: key.DirPress})
	c.finishCapture(sink.next(t).(captureDone))
	if c.sess.Original() != shot || c.sess.Instruction() != "" {
		t.Fatalf("capture not loaded: instruction=%q", c.sess.Instruction())
	}
	if r := c.layout.canvas; r.Dx() != 4*r.Dy() {
		t.Fatalf("canvas %v does not follow the capture's aspect", r)
	}
}

func TestLayerAndCompare(t *testing.T) {
	edited := image.NewRGBA(image.Rect(0, 0, 400, 300))
	c, _ := newTestController(t)
	typeText(c, "pink")
	sub, err := c.sess.BeginSubmit()
	if err != nil {
		t.Fatal(err)
	}
	c.finishGenerate(generateDone{token: sub.Token, img: edited})

	press(c, key.CodeTab, 0)
	if !c.sess.Comparing() || c.sess.Displayed() == edited {
		t.Fatal("tab did not switch to the original")
	}
	press(c, key.CodeEscape, 0)
	if c.sess.Comparing() {
		t.Fatal("escape did not leave compare")
	}
	c.handleKey(key.Event{Rune: 'l', Code: key.CodeL, Modifiers: key.ModControl, Direction: key.DirPress})
	if c.sess.Mode() != ModeBrush || c.sess.Original() != edited {
		t.Fatalf("layer: mode=%v", c.sess.Mode())
	}
}

func TestHeaderButtonActivatesOnRelease(t *testing.T) {
	c, _ := newTestController(t)
	drawLoop(c)
	var clear *CacheButton
	for _, b := range c.header {
		if b.Button.(*ActionButton).label == "Clear" {
			clear = b
		}
	}
	if clear == nil {
		t.Fatal("no Clear button in brush mode")
	}
	at := clear.Rect().Min.Add(image.Pt(2, 2))
	mouseAt(c, at, mouse.DirPress)
	if c.rec.Len() == 0 {
		t.Fatal("cleared on press")
	}
	mouseAt(c, at, mouse.DirRelease)
	if c.rec.Len() != 0 || !c.sess.Selection().Empty() {
		t.Fatal("clear button did not clear")
	}
}

func TestPaintStateSnapshot(t *testing.T) {
	c, _ := newTestController(t)
	drawLoop(c)
	st := c.paintState()
	if st.mode != ModeBrush || st.image != c.sess.Original() {
		t.Fatalf("state = %+v", st)
	}
	if !st.frame.Closed || st.frame.Drawing || len(st.frame.Points) == 0 {
		t.Fatalf("frame = %+v", st.frame)
	}
	st.frame.Points[0].X = -100
	if c.rec.Points()[0].X == -100 {
		t.Fatal("paint state shares the recorder's points")
	}
}

func TestInitialSize(t *testing.T) {
	if w, h := initialSize(nil); w != defaultWidth || h != defaultHeight {
		t.Fatalf("size = %dx%d", w, h)
	}
	w, h := initialSize(image.NewRGBA(image.Rect(0, 0, 100, 100)))
	if w != minWidth || h != minHeight {
		t.Fatalf("small image size = %dx%d", w, h)
	}
	w, h = initialSize(image.NewRGBA(image.Rect(0, 0, 5000, 5000)))
	if w != defaultWidth+256 || h != defaultHeight+128 {
		t.Fatalf("large image size = %dx%d", w, h)
	}
}

func TestFocusLossEndsStroke(t *testing.T) {
	c, _ := newTestController(t)
	centre := c.layout.canvas.Min.Add(c.layout.canvas.Size().Div(2))
	mouseAt(c, centre, mouse.DirPress)
	if !c.rec.Drawing() {
		t.Fatal("press on the canvas did not start a stroke")
	}
	if !c.loseFocus() {
		t.Fatal("focus loss with an open stroke reported no change")
	}
	for i := 1; i <= 10; i++ {
		c.handleMouse(mouse.Event{X: float32(centre.X + 3*i), Y: float32(centre.Y + 2*i), Direction: mouse.DirNone})
	}
	if c.rec.Drawing() || c.rec.Len() != 1 {
		t.Fatalf("drawing=%v len=%d after focus loss", c.rec.Drawing(), c.rec.Len())
	}
	if !c.sess.Selection().Empty() {
		t.Fatal("single point committed a selection")
	}
	if c.loseFocus() {
		t.Fatal("second focus loss reported a change")
	}
}

func TestFocusLossDropsPressedButton(t *testing.T) {
	c, _ := newTestController(t)
	drawLoop(c)
	b := c.header[0]
	mouseAt(c, b.Rect().Min.Add(image.Pt(2, 2)), mouse.DirPress)
	if c.pressed == nil {
		t.Fatal("button not pressed")
	}
	if !c.loseFocus() || c.pressed != nil {
		t.Fatal("focus loss kept the pressed button")
	}
}

func TestCompareFollowsImageAspect(t *testing.T) {
	edited := picture(800, 300)
	c, _ := newTestController(t)
	typeText(c, "pink")
	sub, err := c.sess.BeginSubmit()
	if err != nil {
		t.Fatal(err)
	}
	c.finishGenerate(generateDone{token: sub.Token, img: edited})
	result := c.layout.canvas
	if d := result.Dx()*3 - result.Dy()*8; d < -8 || d > 8 {
		t.Fatalf("result canvas %v is not 8:3", result)
	}

	press(c, key.CodeTab, 0)
	orig := c.layout.canvas
	if d := orig.Dx()*3 - orig.Dy()*4; d < -4 || d > 4 {
		t.Fatalf("original canvas %v is not 4:3", orig)
	}
	if c.rec.Viewport().Rect != orig {
		t.Fatalf("recorder viewport %v, canvas %v", c.rec.Viewport().Rect, orig)
	}

	press(c, key.CodeTab, 0)
	if c.layout.canvas != result {
		t.Fatalf("canvas %v after leaving compare, want %v", c.layout.canvas, result)
	}
}

func TestEscapeFromCompareRestoresLayout(t *testing.T) {
	c, _ := newTestController(t)
	typeText(c, "pink")
	sub, err := c.sess.BeginSubmit()
	if err != nil {
		t.Fatal(err)
	}
	c.finishGenerate(generateDone{token: sub.Token, img: picture(300, 600)})
	result := c.layout.canvas
	press(c, key.CodeTab, 0)
	if c.layout.canvas == result {
		t.Fatal("compare kept the result's canvas")
	}
	press(c, key.CodeEscape, 0)
	if c.sess.Comparing() || c.layout.canvas != result {
		t.Fatalf("canvas %v after escape, want %v", c.layout.canvas, result)
	}
}

func TestStatusReportsSelectionSize(t *testing.T) {
	c, _ := newTestController(t)
	if got := c.paintState().status; strings.HasPrefix(got, "Selected") {
		t.Fatalf("status = %q without a selection", got)
	}
	drawLoop(c)
	if got := c.paintState().status; !strings.HasPrefix(got, "Selected ") || !strings.HasSuffix(got, "%)") {
		t.Fatalf("status = %q", got)
	}
}
