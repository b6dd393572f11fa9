package timer

import (
	"sync/atomic"
	"time"
)

// Clock supplies a monotonic millisecond counter. The counter is allowed to
// wrap at 2^32; timers treat it as a ring.
type Clock interface {
	Millis() uint32
}

type systemClock struct{ t0 time.Time }

func (c systemClock) Millis() uint32 { return uint32(time.Since(c.t0).Milliseconds()) }

var sys Clock = systemClock{t0: time.Now()}

// System returns the process-wide monotonic clock.
func System() Clock { return sys }

// ManualClock is a Clock that only moves when told to. Simulations and tests
// drive the whole engine with it.
type ManualClock struct {
	ms atomic.Uint32
}

func NewManualClock(start uint32) *ManualClock {
	c := &ManualClock{}
	c.ms.Store(start)
	return c
}

func (c *ManualClock) Millis() uint32 { return c.ms.Load() }

func (c *ManualClock) Set(ms uint32) { c.ms.Store(ms) }

// Advance moves the clock forward by d, wrapping like a hardware counter.
func (c *ManualClock) Advance(d time.Duration) {
	c.ms.Add(uint32(d.Milliseconds()))
}
