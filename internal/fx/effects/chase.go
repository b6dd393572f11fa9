package effects

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Chase runs evenly spaced dots of the current color along the segment.
// Frames are rotated in place, so the previous frame is the input of the
// next one.
type Chase struct {
	fx.Base
	Spacing int
	Length  int
}

func NewChase(size int) *Chase {
	c := &Chase{
		Base:    fx.NewBaseSpeed("Chase", size, 160, 20*time.Millisecond, 400*time.Millisecond),
		Spacing: 5,
		Length:  1,
	}
	c.Color().SetRGB(pixel.White)
	return c
}

func (c *Chase) InitLeds(buf pixel.Buffer) { c.draw(buf) }

func (c *Chase) draw(buf pixel.Buffer) {
	buf.Clear()
	col := c.Color().Get()
	spacing := max(1, c.Spacing)
	for i := range buf {
		if i%spacing < max(1, c.Length) {
			buf[i] = col
		}
	}
}

func (c *Chase) WriteNextFrame(buf pixel.Buffer) {
	if c.Color().IsUpdated() {
		c.draw(buf)
	}
	switch c.Movement() {
	case fx.MoveStill:
		return
	case fx.MoveBackward:
		pixel.RotateBackward(buf, 1)
	case fx.MoveBackForth:
		if c.Cycle()%2 == 1 {
			pixel.RotateBackward(buf, 1)
		} else {
			pixel.RotateForward(buf, 1)
		}
	default:
		pixel.RotateForward(buf, 1)
	}
	c.SetUpdated(true)
}
