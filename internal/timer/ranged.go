package timer

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fixed"
)

const (
	MinInterval = 1 * time.Millisecond
	MaxInterval = 5000 * time.Millisecond
)

// Ranged is a Timer whose interval is held inside [min,max] and can be
// addressed as a 0..255 speed, 255 being the shortest interval.
// The zero value uses MinInterval..MaxInterval.
type Ranged struct {
	Timer
	min, max uint32
}

func NewRanged(clock Clock, interval, min, max time.Duration) *Ranged {
	r := &Ranged{Timer: Timer{clock: clock}}
	r.SetRange(min, max)
	r.SetInterval(interval)
	return r
}

func (r *Ranged) bounds() (uint32, uint32) {
	if r.max == 0 {
		return millis(MinInterval), millis(MaxInterval)
	}
	return r.min, r.max
}

// SetRange clamps the bounds into MinInterval..MaxInterval and re-clamps the
// current interval.
func (r *Ranged) SetRange(min, max time.Duration) {
	lo, hi := millis(min), millis(max)
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < millis(MinInterval) {
		lo = millis(MinInterval)
	}
	if hi > millis(MaxInterval) {
		hi = millis(MaxInterval)
	}
	if hi < lo {
		hi = lo
	}
	r.min, r.max = lo, hi
	r.SetInterval(r.Interval())
}

func (r *Ranged) Range() (time.Duration, time.Duration) {
	lo, hi := r.bounds()
	return duration(lo), duration(hi)
}

func (r *Ranged) clamp(d time.Duration) time.Duration {
	lo, hi := r.bounds()
	v := millis(d)
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return duration(v)
}

func (r *Ranged) SetInterval(d time.Duration) bool {
	return r.Timer.SetInterval(r.clamp(d))
}

func (r *Ranged) SetIntervalImmediate(d time.Duration) bool {
	return r.Timer.SetIntervalImmediate(r.clamp(d))
}

func (r *Ranged) SpeedToInterval(speed uint8) time.Duration {
	lo, hi := r.bounds()
	return duration(uint32(fixed.Map(int64(255-speed), 0, 255, int64(lo), int64(hi))))
}

func (r *Ranged) IntervalToSpeed(d time.Duration) uint8 {
	lo, hi := r.bounds()
	v := millis(r.clamp(d))
	return 255 - fixed.Clamp8(fixed.Map(int64(v), int64(lo), int64(hi), 0, 255))
}

func (r *Ranged) Speed() uint8 { return r.IntervalToSpeed(r.Interval()) }

func (r *Ranged) SetSpeed(speed uint8) bool {
	return r.SetInterval(r.SpeedToInterval(speed))
}
