package editor

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"

	"github.com/example/magicstudio/internal/overlay"
	"github.com/example/magicstudio/internal/theme"
)

const promptPlaceholder = "Describe the change, e.g. make the jacket pink"

// paintState is a snapshot of everything a frame shows. It is built on the
// event loop and handed to the paint goroutine, which must not mutate it.
type paintState struct {
	width, height int
	layout        layout
	mode          Mode

	image     image.Image
	comparing bool
	frame     overlay.Frame

	instruction string
	reference   image.Image

	header  []*CacheButton
	history []*CacheButton
	submit  *CacheButton
	hover   *CacheButton
	pressed *CacheButton

	status       string
	errMsg       string
	message      string
	messageUntil time.Time
	processing   float64
}

// painter owns the resources reused across frames. Only the paint goroutine
// touches it.
type painter struct {
	s        screen.Screen
	w        screen.Window
	theme    *theme.Theme
	renderer *overlay.Renderer

	backdrop *image.RGBA

	scaledSrc  image.Image
	scaledSize image.Point
	scaled     *image.RGBA

	refSrc image.Image
	refImg *image.RGBA
}

func newPainter(s screen.Screen, w screen.Window, t *theme.Theme) *painter {
	return &painter{
		s:        s,
		w:        w,
		theme:    t,
		renderer: overlay.NewRenderer(overlay.StyleFor(t)),
	}
}

func (p *painter) drawFrame(ctx context.Context, st paintState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	b, err := p.s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	dst := b.RGBA()
	p.compose(ctx, dst, st)
	if ctx.Err() != nil {
		return
	}

	p.w.Upload(image.Point{}, b, b.Bounds())
	p.w.Publish()
}

// compose renders st into dst. It stops early when ctx is cancelled.
func (p *painter) compose(ctx context.Context, dst *image.RGBA, st paintState) {
	t := p.theme
	draw.Draw(dst, dst.Bounds(), image.NewUniform(t.Background), image.Point{}, draw.Src)

	l := st.layout
	if !l.canvas.Empty() && st.image != nil {
		draw.Draw(dst, l.canvas, p.checkerboard(l.canvas.Size()), image.Point{}, draw.Src)
		draw.Draw(dst, l.canvas, p.scale(st.image, l.canvas.Size()), image.Point{}, draw.Over)
		if ctx.Err() != nil {
			return
		}
		if st.mode == ModeBrush || st.mode == ModeProcessing {
			p.renderer.Render(dst, l.viewport(), st.frame)
		}
		if st.mode == ModeProcessing {
			p.drawProcessing(dst, l.canvas, st.processing)
		}
	} else if !l.area.Empty() {
		drawCentered(dst, l.area, "Paste an image (Ctrl+V) or capture the screen (Ctrl+N)", promptFace, t.PromptPlaceholder)
	}
	if ctx.Err() != nil {
		return
	}

	p.drawHeader(dst, st)
	if !l.history.Empty() {
		draw.Draw(dst, l.history, image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)
		for _, b := range st.history {
			b.Draw(dst, buttonState(b, st))
		}
	}
	p.drawPrompt(dst, st)
	if ctx.Err() != nil {
		return
	}

	switch {
	case l.canvas.Empty():
	case st.errMsg != "":
		p.drawBanner(dst, l.canvas, st.errMsg, t.Error)
	case st.comparing:
		p.drawBanner(dst, l.canvas, "Original", t.Accent)
	}
	if st.message != "" && time.Now().Before(st.messageUntil) {
		p.drawToast(dst, st.width, st.height, st.message)
	}
}

func buttonState(b *CacheButton, st paintState) ButtonState {
	switch b {
	case st.pressed:
		return StatePressed
	case st.hover:
		return StateHover
	}
	return StateDefault
}

func (p *painter) drawHeader(dst *image.RGBA, st paintState) {
	t := p.theme
	h := st.layout.header
	draw.Draw(dst, h, image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)
	m := titleFace.Metrics()
	baseline := h.Min.Y + (h.Dy()-m.Ascent.Ceil()-m.Descent.Ceil())/2 + m.Ascent.Ceil()
	x := drawText(dst, h.Min.X+padding, baseline, "Magic Studio", titleFace, t.Accent)
	if st.status != "" {
		drawText(dst, x+padding, baseline, st.status, promptFace, t.ToolbarText)
	}
	for _, b := range st.header {
		b.Draw(dst, buttonState(b, st))
	}
}

func (p *painter) drawPrompt(dst *image.RGBA, st paintState) {
	t := p.theme
	l := st.layout
	draw.Draw(dst, l.prompt, image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)
	if !l.field.Empty() {
		fillRounded(dst, l.field, 8, t.ButtonBackground)
		inner := l.field.Inset(2)
		fillRounded(dst, inner, 7, t.PromptBackground)
		m := promptFace.Metrics()
		baseline := inner.Min.Y + (inner.Dy()-m.Ascent.Ceil()-m.Descent.Ceil())/2 + m.Ascent.Ceil()
		textWidth := inner.Dx() - 2*padding
		if st.instruction == "" {
			drawText(dst, inner.Min.X+padding, baseline, elide(promptPlaceholder, promptFace, textWidth), promptFace, t.PromptPlaceholder)
		} else {
			text := elide(st.instruction+"|", promptFace, textWidth)
			drawText(dst, inner.Min.X+padding, baseline, text, promptFace, t.PromptText)
		}
	}
	if !l.chip.Empty() {
		if ref := p.reference(st.reference, l.chip.Inset(3).Size()); ref != nil {
			fillRounded(dst, l.chip, 6, t.Accent)
			draw.Draw(dst, l.chip.Inset(3), ref, image.Point{}, draw.Src)
		} else {
			fillRounded(dst, l.chip, 6, t.ButtonBackground)
			drawCentered(dst, l.chip, "+", titleFace, t.ButtonText)
		}
	}
	if st.submit != nil {
		st.submit.Draw(dst, buttonState(st.submit, st))
	}
}

// drawProcessing dims the canvas and sweeps a bar along its bottom edge.
// phase is in [0,1).
func (p *painter) drawProcessing(dst *image.RGBA, canvas image.Rectangle, phase float64) {
	draw.Draw(dst, canvas, image.NewUniform(color.NRGBA{255, 255, 255, 96}), image.Point{}, draw.Over)
	drawCentered(dst, canvas, "Applying magic…", messageFace, p.theme.Foreground)
	barW := max(canvas.Dx()/4, 1)
	x := canvas.Min.X + int(phase*float64(canvas.Dx()+barW)) - barW
	bar := image.Rect(x, canvas.Max.Y-4, x+barW, canvas.Max.Y).Intersect(canvas)
	draw.Draw(dst, bar, image.NewUniform(p.theme.Accent), image.Point{}, draw.Src)
}

func (p *painter) drawBanner(dst *image.RGBA, canvas image.Rectangle, text string, col color.RGBA) {
	w := measure(text, promptFace) + 2*padding
	r := image.Rect(canvas.Min.X+(canvas.Dx()-w)/2, canvas.Min.Y+padding, 0, canvas.Min.Y+padding+buttonHeight)
	r.Max.X = r.Min.X + w
	fillRounded(dst, r, 6, col)
	drawCentered(dst, r, text, promptFace, color.White)
}

func (p *painter) drawToast(dst *image.RGBA, width, height int, text string) {
	d := measure(text, messageFace)
	m := messageFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	px := (width - d) / 2
	py := (height-ascent-descent)/2 + ascent
	rect := image.Rect(px-padding, py-ascent-padding, px+d+padding, py+descent+padding)
	fillRounded(dst, rect, 8, color.RGBA{255, 255, 255, 230})
	drawText(dst, px, py, text, messageFace, p.theme.Foreground)
}

// checkerboard returns a cached transparency backdrop at least size large.
func (p *painter) checkerboard(size image.Point) *image.RGBA {
	if p.backdrop == nil || p.backdrop.Bounds().Dx() < size.X || p.backdrop.Bounds().Dy() < size.Y {
		b := image.Rect(0, 0, max(size.X, 1), max(size.Y, 1))
		p.backdrop = image.NewRGBA(b)
		drawCheckerboard(p.backdrop, b, 8, p.theme.CheckerLight, p.theme.CheckerDark)
	}
	return p.backdrop
}

// scale returns img resized to size, reusing the last result when neither
// changed.
func (p *painter) scale(img image.Image, size image.Point) *image.RGBA {
	if p.scaled != nil && p.scaledSrc == img && p.scaledSize == size {
		return p.scaled
	}
	p.scaled = scaleTo(img, size)
	p.scaledSrc = img
	p.scaledSize = size
	return p.scaled
}

func (p *painter) reference(img image.Image, size image.Point) *image.RGBA {
	if img == nil || size.X <= 0 || size.Y <= 0 {
		return nil
	}
	if p.refImg == nil || p.refSrc != img || p.refImg.Bounds().Size() != size {
		p.refImg = scaleTo(img, size)
		p.refSrc = img
	}
	return p.refImg
}

func scaleTo(img image.Image, size image.Point) *image.RGBA {
	out := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}
