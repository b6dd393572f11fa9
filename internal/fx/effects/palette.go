package effects

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Palette spreads the palette across the segment and scrolls it one
// position per phase.
type Palette struct {
	fx.Base
}

func NewPalette(size int) *Palette {
	return &Palette{Base: fx.NewBaseSpeed("Palette", size, 175, 15*time.Millisecond, 150*time.Millisecond)}
}

func (p *Palette) WriteNextFrame(buf pixel.Buffer) {
	n := len(buf)
	if n == 0 {
		return
	}
	shift := p.MovementPhase() - 1
	c := p.Color()
	for i := range buf {
		buf[i] = c.At(((i + shift) % n) * 256 / n)
	}
	c.SetUpdated(false)
	p.SetUpdated(true)
}
