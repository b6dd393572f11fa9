// Package effects holds the stock content effects and the registry that
// builds them by name.
package effects

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Solid fills the segment with one color and only redraws when the color
// changes. It is the effect every new segment starts with.
type Solid struct {
	fx.Base
}

func NewSolid(size int) *Solid {
	return &Solid{Base: fx.NewBaseSpeed("Solid", size, 255, 100*time.Millisecond, 1000*time.Millisecond)}
}

// NewSolidColor is a Solid preset to c.
func NewSolidColor(size int, c pixel.RGB) *Solid {
	s := NewSolid(size)
	s.Color().SetRGB(c)
	return s
}

func (s *Solid) InitLeds(buf pixel.Buffer) { s.Color().SetUpdated(true) }

func (s *Solid) WriteNextFrame(buf pixel.Buffer) {
	if !s.Color().IsUpdated() {
		s.SetUpdated(false)
		return
	}
	buf.Fill(s.Color().Get())
	s.SetUpdated(true)
}
