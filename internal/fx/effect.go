// Package fx is the effect framework: the per-effect phase/cycle state
// machine, the frame provider that cross-fades between successive frames,
// and the overlay layer composited on top of a segment.
package fx

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Effect is implemented by every animated pattern. Concrete effects embed
// Base (which supplies FX) and draw in WriteNextFrame.
type Effect interface {
	FX() *Base
	WriteNextFrame(buf pixel.Buffer)
}

// Optional hooks, checked on every tick.
type (
	Initializer interface {
		InitLeds(buf pixel.Buffer)
	}
	CycleStarter interface {
		OnCycleStart(buf pixel.Buffer)
	}
	CycleEnder interface {
		OnCycleEnd(buf pixel.Buffer)
	}
	VCycleStarter interface {
		OnVCycleStart(buf pixel.Buffer)
	}
	VCycleEnder interface {
		OnVCycleEnd(buf pixel.Buffer)
	}
	FrozenHandler interface {
		WhileFrozen(buf pixel.Buffer)
	}
	SecondHandler interface {
		OnEachSecond(secs uint32)
	}
	BrightnessHandler interface {
		OnBrightness(level uint8)
	}
	// TimingAdjuster stretches or shrinks the period that just began,
	// for effects whose pacing varies by phase.
	TimingAdjuster interface {
		TimingDelta(phase int) time.Duration
	}
)

// Update runs one tick of e's state machine against buf.
func Update(e Effect, buf pixel.Buffer) {
	b := e.FX()
	if !b.frozen {
		if !b.initialized {
			if h, ok := e.(Initializer); ok {
				h.InitLeds(buf)
			}
			b.initialized = true
		}
		if b.phase == 1 {
			if h, ok := e.(CycleStarter); ok {
				h.OnCycleStart(buf)
			}
		}
		if b.vphase == 1 {
			if h, ok := e.(VCycleStarter); ok {
				h.OnVCycleStart(buf)
			}
		}
		if b.color.IsUpdated() {
			b.updated = true
		}

		e.WriteNextFrame(buf)

		next := nextPhase(b.phase, b.size)
		if next == 1 {
			b.cycle++
			if h, ok := e.(CycleEnder); ok {
				h.OnCycleEnd(buf)
			}
		}
		vnext := nextPhase(b.vphase, b.vcycleRange)
		if vnext == 1 {
			b.vcycle++
			if h, ok := e.(VCycleEnder); ok {
				h.OnVCycleEnd(buf)
			}
		}
		b.phase, b.vphase = next, vnext
	} else if h, ok := e.(FrozenHandler); ok {
		h.WhileFrozen(buf)
	}

	if b.TimeSinceStarted() > time.Duration(b.seconds+1)*time.Second {
		b.seconds++
		if h, ok := e.(SecondHandler); ok {
			h.OnEachSecond(b.seconds)
		}
	}

	b.Step()
	if h, ok := e.(TimingAdjuster); ok {
		if d := h.TimingDelta(b.phase); d != 0 {
			b.AddDelta(d)
		}
	}
}

func nextPhase(phase, n int) int {
	if phase >= n {
		return 1
	}
	return phase + 1
}
