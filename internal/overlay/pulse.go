package overlay

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	PulseMin    = 0.4
	PulseMax    = 0.8
	PulsePeriod = 2 * time.Second
)

// Pulse oscillates the committed selection's opacity between PulseMin and
// PulseMax, one full cycle per PulsePeriod.
type Pulse struct {
	tween  *gween.Tween
	rising bool
	value  float32
}

// NewPulse returns a pulse starting at PulseMin on its way up.
func NewPulse() *Pulse {
	p := &Pulse{}
	p.Reset()
	return p
}

// Reset restarts the cycle from PulseMin.
func (p *Pulse) Reset() {
	p.rising = true
	p.value = PulseMin
	p.tween = gween.New(PulseMin, PulseMax, halfPeriod(), ease.InOutSine)
}

// Update advances the pulse by dt and returns the new opacity.
func (p *Pulse) Update(dt time.Duration) float64 {
	v, done := p.tween.Update(float32(dt.Seconds()))
	p.value = v
	if done {
		p.rising = !p.rising
		from, to := float32(PulseMax), float32(PulseMin)
		if p.rising {
			from, to = PulseMin, PulseMax
		}
		over := p.tween.Overflow
		p.tween = gween.New(from, to, halfPeriod(), ease.InOutSine)
		if over > 0 {
			v, _ = p.tween.Update(over)
			p.value = v
		}
	}
	return float64(v)
}

// Value returns the current opacity.
func (p *Pulse) Value() float64 { return float64(p.value) }

func halfPeriod() float32 { return float32(PulsePeriod.Seconds() / 2) }
