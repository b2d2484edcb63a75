package editor

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"unicode"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/magicstudio/internal/theme"
)

var (
	titleFace   font.Face
	promptFace  font.Face
	messageFace font.Face
)

func init() {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	titleFace, err = opentype.NewFace(bold, &opentype.FaceOptions{Size: 18, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
	promptFace, err = opentype.NewFace(regular, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
	messageFace, err = opentype.NewFace(regular, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// KeyShortcut describes a keyboard combination that triggers an action.
// Rune is compared case-insensitively; Code is used for keys without a rune.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

const shortcutModifiers = key.ModControl | key.ModShift | key.ModAlt | key.ModMeta

// shortcutCandidates returns the lookups to try for e, rune first.
func shortcutCandidates(e key.Event) []KeyShortcut {
	mods := e.Modifiers & shortcutModifiers
	var out []KeyShortcut
	if e.Rune > 0 {
		out = append(out, KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods})
	}
	// Control combinations often arrive with a control character rune.
	if e.Code >= key.CodeA && e.Code <= key.CodeZ {
		out = append(out, KeyShortcut{Rune: 'a' + rune(e.Code-key.CodeA), Modifiers: mods})
	}
	out = append(out, KeyShortcut{Code: e.Code, Modifiers: mods})
	return out
}

// keymap maps shortcuts to action names.
type keymap map[KeyShortcut]string

func (m keymap) bind(name string, keys KeyboardShortcuts) {
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		sc.Rune = unicode.ToLower(sc.Rune)
		m[sc] = name
	}
}

func (m keymap) lookup(e key.Event) (string, bool) {
	for _, sc := range shortcutCandidates(e) {
		if name, ok := m[sc]; ok {
			return name, true
		}
	}
	return "", false
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Over)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// ActionButton is a labelled button. Disabled buttons draw greyed out and
// ignore activation.
type ActionButton struct {
	label      string
	accent     bool
	disabled   bool
	theme      *theme.Theme
	rect       image.Rectangle
	onActivate func()
}

func (b *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	t := b.theme
	if t == nil {
		t = theme.Default()
	}
	bg, fg := t.ButtonBackground, t.ButtonText
	switch {
	case b.disabled:
		bg = t.ButtonDisabled
	case b.accent:
		bg, fg = t.Accent, color.RGBA{255, 255, 255, 255}
		if state != StateDefault {
			bg = shade(bg, 0.85)
		}
	case state == StateHover:
		bg = t.ButtonBackgroundHover
	case state == StatePressed:
		bg = shade(t.ButtonBackgroundHover, 0.9)
	}
	fillRounded(dst, b.rect, 6, bg)
	drawCentered(dst, b.rect, b.label, basicfont.Face7x13, fg)
}

func (b *ActionButton) Rect() image.Rectangle { return b.rect }

func (b *ActionButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *ActionButton) Activate() {
	if b.disabled || b.onActivate == nil {
		return
	}
	b.onActivate()
}

// ThumbButton shows a history entry; activating it reopens the entry.
type ThumbButton struct {
	thumb      image.Image
	current    bool
	theme      *theme.Theme
	rect       image.Rectangle
	onActivate func()
}

func (b *ThumbButton) Draw(dst *image.RGBA, state ButtonState) {
	t := b.theme
	if t == nil {
		t = theme.Default()
	}
	border := t.ButtonBackground
	switch {
	case b.current:
		border = t.Accent
	case state != StateDefault:
		border = t.ButtonBackgroundHover
	}
	fillRounded(dst, b.rect, 4, border)
	inner := b.rect.Inset(3)
	if b.thumb == nil || inner.Empty() {
		return
	}
	fitted := imaging.Fill(b.thumb, inner.Dx(), inner.Dy(), imaging.Center, imaging.Box)
	draw.Draw(dst, inner, fitted, image.Point{}, draw.Src)
}

func (b *ThumbButton) Rect() image.Rectangle { return b.rect }

func (b *ThumbButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *ThumbButton) Activate() {
	if b.onActivate != nil {
		b.onActivate()
	}
}

// hitButton returns the index of the button under p, or -1.
func hitButton(buttons []*CacheButton, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.Rect()) {
			return i
		}
	}
	return -1
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// fillRounded fills r with col, leaving the corners of radius rad empty.
func fillRounded(dst *image.RGBA, r image.Rectangle, rad int, col color.RGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	rad = min(rad, r.Dx()/2, r.Dy()/2)
	src := image.NewUniform(col)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		inset := 0
		if dy := min(y-r.Min.Y, r.Max.Y-1-y); dy < rad {
			off := float64(rad) - float64(dy) - 0.5
			inset = rad - int(math.Sqrt(float64(rad*rad)-off*off))
		}
		row := image.Rect(r.Min.X+inset, y, r.Max.X-inset, y+1)
		draw.Draw(dst, row, src, image.Point{}, draw.Over)
	}
}

func drawCentered(dst *image.RGBA, r image.Rectangle, text string, face font.Face, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(text).Ceil()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-ascent-descent)/2 + ascent
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

func drawText(dst *image.RGBA, x, baseline int, text string, face font.Face, col color.Color) int {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face, Dot: fixed.P(x, baseline)}
	d.DrawString(text)
	return d.Dot.X.Ceil()
}

func measure(text string, face font.Face) int {
	return font.MeasureString(face, text).Ceil()
}

// elide shortens text from the left so it fits in width pixels.
func elide(text string, face font.Face, width int) string {
	if measure(text, face) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[1:]
		s := "…" + string(runes)
		if measure(s, face) <= width {
			return s
		}
	}
	return ""
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
