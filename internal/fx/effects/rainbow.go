package effects

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/colors"
	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Rainbow draws the full hue wheel across the segment and turns it by the
// color's step delta every frame.
type Rainbow struct {
	fx.Base
}

func NewRainbow(size int) *Rainbow {
	r := &Rainbow{Base: fx.NewBaseSpeed("Rainbow", size, 200, 10*time.Millisecond, 100*time.Millisecond)}
	r.Color().SetHSV(colors.HSV{H: 0, S: 255, V: 255})
	r.Color().SetStepDelta(2)
	return r
}

func (r *Rainbow) WriteNextFrame(buf pixel.Buffer) {
	n := len(buf)
	if n == 0 {
		return
	}
	c := r.Color()
	base := c.HSV()
	dir := 1
	if r.Movement() == fx.MoveBackward {
		dir = -1
	}
	for i := range buf {
		h := int(base.H) + dir*i*256/n
		buf[i] = colors.HSV{H: uint8(h), S: base.S, V: base.V}.RGB()
	}
	c.Step()
	r.SetUpdated(true)
}
