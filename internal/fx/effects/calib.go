package effects

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// CalibMode picks the wiring test pattern.
type CalibMode string

const (
	// IndexSweep lights one pixel at a time from the start of the segment.
	IndexSweep CalibMode = "index_sweep"
	// RGBChannels floods the segment red, then green, then blue, to check
	// the color order of the strip.
	RGBChannels CalibMode = "rgb_channels"
)

// Calibrate draws installation test patterns.
type Calibrate struct {
	fx.Base
	mode CalibMode
}

func NewCalibrate(size int) *Calibrate {
	c := &Calibrate{Base: fx.NewBase("Calibrate", size, 250*time.Millisecond, 50*time.Millisecond, 2*time.Second)}
	c.SetMode(IndexSweep)
	return c
}

func (c *Calibrate) Mode() CalibMode { return c.mode }

func (c *Calibrate) SetMode(m CalibMode) bool {
	if (m != IndexSweep && m != RGBChannels) || m == c.mode {
		return false
	}
	c.mode = m
	if m == RGBChannels {
		c.SetVCycleRange(3)
	} else {
		c.SetVCycleRange(c.Size())
	}
	c.NotifyChange("mode")
	return true
}

func (c *Calibrate) WriteNextFrame(buf pixel.Buffer) {
	buf.Clear()
	switch c.mode {
	case RGBChannels:
		buf.Fill([...]pixel.RGB{pixel.Red, pixel.Green, pixel.Blue}[(c.VPhase()-1)%3])
	default:
		if i := c.Phase() - 1; i < len(buf) {
			buf[i] = pixel.White
		}
	}
	c.SetUpdated(true)
}
