// Package fader implements self-advancing scalar controls used for segment
// brightness and opacity.
package fader

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fixed"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

const DefaultInterval = time.Second

// AutoFader glides a 0..255 value toward its target over a fixed interval.
// Retargeting mid-fade starts the new fade from the value currently shown.
type AutoFader struct {
	timer *timer.Timer

	value   uint8
	target  uint8
	prev    uint8
	updated bool
}

func NewAutoFader(clock timer.Clock, interval time.Duration, initial uint8) *AutoFader {
	return &AutoFader{
		timer:   timer.New(clock, interval),
		value:   initial,
		target:  initial,
		prev:    initial,
		updated: true,
	}
}

func (f *AutoFader) Value() uint8    { return f.value }
func (f *AutoFader) Target() uint8   { return f.target }
func (f *AutoFader) Previous() uint8 { return f.prev }

func (f *AutoFader) IsFading() bool  { return f.timer.Started() }
func (f *AutoFader) IsUpdated() bool { return f.updated }

func (f *AutoFader) Interval() time.Duration { return f.timer.Interval() }

func (f *AutoFader) SetInterval(d time.Duration) bool { return f.timer.SetInterval(d) }

func (f *AutoFader) SetClock(c timer.Clock) { f.timer.SetClock(c) }

// SetTarget starts a fade toward v. A target equal to the current one is
// ignored entirely.
func (f *AutoFader) SetTarget(v uint8) bool {
	if v == f.target {
		return false
	}
	if f.timer.Started() {
		f.advance()
	}
	f.prev = f.value
	f.target = v
	f.updated = true
	if f.timer.Started() {
		f.timer.Step()
	} else {
		f.timer.Start()
	}
	return true
}

// SetValue jumps straight to v, cancelling any fade.
func (f *AutoFader) SetValue(v uint8) {
	f.timer.Stop()
	f.updated = f.updated || v != f.value
	f.value, f.target, f.prev = v, v, v
}

// Update advances the fade to the clock's current time.
func (f *AutoFader) Update() {
	old := f.value
	f.advance()
	f.updated = f.timer.Started() || f.value != old
}

func (f *AutoFader) advance() {
	if !f.timer.Started() {
		return
	}
	if f.timer.IsUp() {
		f.timer.Stop()
		f.value = f.target
		return
	}
	since := f.timer.TimeSinceTriggered().Milliseconds()
	span := f.timer.CurrInterval().Milliseconds()
	f.value = fixed.Clamp8(fixed.Map(since, 0, span, int64(f.prev), int64(f.target)))
}
