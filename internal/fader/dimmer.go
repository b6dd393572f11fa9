package fader

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

// Dimmer is a brightness fader applied as a fade to black.
type Dimmer struct {
	AutoFader
}

func NewDimmer(clock timer.Clock, interval time.Duration, initial uint8) *Dimmer {
	return &Dimmer{AutoFader: *NewAutoFader(clock, interval, initial)}
}

// Apply scales buf by the current value.
func (d *Dimmer) Apply(buf pixel.Buffer) {
	if v := d.Value(); v < 255 {
		buf.FadeToBlackBy(255 - v)
	}
}
