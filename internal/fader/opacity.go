package fader

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

// Opacity fades a segment in and out over whatever lies beneath it. The
// background buffer is only held while the segment is partially transparent.
type Opacity struct {
	AutoFader
	background pixel.Buffer
}

func NewOpacity(clock timer.Clock, interval time.Duration, initial uint8) *Opacity {
	return &Opacity{AutoFader: *NewAutoFader(clock, interval, initial)}
}

// Background returns a buffer of n pixels, allocating it on first use.
func (o *Opacity) Background(n int) pixel.Buffer {
	if len(o.background) != n {
		o.background = pixel.New(n)
	}
	return o.background
}

func (o *Opacity) HasBackground() bool { return o.background != nil }

// Apply blends the background into buf, weighted by the transparency.
func (o *Opacity) Apply(buf pixel.Buffer) {
	if o.background == nil {
		return
	}
	pixel.NBlend(buf, o.background, 255-o.Value())
}

// Update advances the fade and drops the background once fully opaque.
func (o *Opacity) Update() {
	o.AutoFader.Update()
	if o.Value() == 255 && !o.IsFading() {
		o.Release()
	}
}

func (o *Opacity) Release() { o.background = nil }
