// Package timer provides the step timers every effect, fader and the
// controller schedule against.
//
// A Timer fires once its interval has elapsed since it was last stepped.
// Interval changes made while the timer runs are deferred until the next
// Step so an in-flight period is never shortened or stretched underneath
// whoever is waiting on it. All arithmetic is wraparound safe.
package timer

import "time"

// Timer is a restartable interval timer. The zero value is a stopped timer
// with a zero interval on the system clock.
type Timer struct {
	clock Clock

	interval   uint32
	pending    uint32
	hasPending bool

	started      bool
	startExpired bool
	startedAt    uint32
	lastUp       uint32
	nextUp       uint32

	delta     int32
	steps     uint32
	rollovers uint32
}

// New returns a stopped timer.
func New(clock Clock, interval time.Duration) *Timer {
	return &Timer{clock: clock, interval: millis(interval)}
}

func millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d.Milliseconds())
}

func duration(ms uint32) time.Duration { return time.Duration(ms) * time.Millisecond }

// due reports whether now has reached at, treating the counter as a ring.
func due(now, at uint32) bool { return int32(now-at) >= 0 }

func (t *Timer) now() uint32 {
	if t.clock == nil {
		return sys.Millis()
	}
	return t.clock.Millis()
}

// Now returns the timer's clock reading.
func (t *Timer) Now() uint32 { return t.now() }

// Clock returns the clock the timer reads, falling back to System.
func (t *Timer) Clock() Clock {
	if t.clock == nil {
		return sys
	}
	return t.clock
}

// SetClock rebinds the timer. Callers do this before Start.
func (t *Timer) SetClock(c Clock) { t.clock = c }

// SetStartExpired makes Start leave the timer already up, so the first
// period fires on the very next check.
func (t *Timer) SetStartExpired(v bool) { t.startExpired = v }

func (t *Timer) Start() {
	now := t.now()
	t.started = true
	t.startedAt = now
	t.lastUp = now
	t.delta = 0
	if t.startExpired {
		t.nextUp = now
		return
	}
	t.schedule(now)
}

func (t *Timer) Stop() { t.started = false }

func (t *Timer) Started() bool { return t.started }

func (t *Timer) IsUp() bool { return t.started && due(t.now(), t.nextUp) }

// Step begins the next period: any deferred interval is applied, and the
// next deadline is measured from now.
func (t *Timer) Step() {
	if t.hasPending {
		t.interval = t.pending
		t.hasPending = false
	}
	if !t.started {
		return
	}
	now := t.now()
	t.schedule(now)
	t.lastUp = now
	t.delta = 0
	t.steps++
}

func (t *Timer) schedule(now uint32) {
	t.nextUp = now + t.interval
	if t.nextUp < now {
		t.rollovers++
	}
}

// SetInterval changes the period. While running the change waits for the
// next Step. Setting the current interval is a no-op and returns false.
func (t *Timer) SetInterval(d time.Duration) bool {
	v := millis(d)
	if v == t.intervalMillis() {
		return false
	}
	if !t.started || v == t.interval {
		t.interval = v
		t.hasPending = false
		return true
	}
	t.pending = v
	t.hasPending = true
	return true
}

// SetIntervalImmediate applies the period now and restarts it.
func (t *Timer) SetIntervalImmediate(d time.Duration) bool {
	v := millis(d)
	if v == t.interval && !t.hasPending {
		return false
	}
	t.interval = v
	t.hasPending = false
	t.Step()
	return true
}

func (t *Timer) intervalMillis() uint32 {
	if t.hasPending {
		return t.pending
	}
	return t.interval
}

// Interval returns the interval that governs the next period, which is the
// pending one if a change is waiting.
func (t *Timer) Interval() time.Duration { return duration(t.intervalMillis()) }

// CurrInterval is the length of the running period including any delta.
func (t *Timer) CurrInterval() time.Duration {
	v := int64(t.interval) + int64(t.delta)
	if v < 0 {
		v = 0
	}
	return time.Duration(v) * time.Millisecond
}

// AddDelta stretches (or shrinks) the running period without touching the
// configured interval. The delta is cleared on the next Step.
func (t *Timer) AddDelta(d time.Duration) {
	v := int32(d.Milliseconds())
	t.delta += v
	t.nextUp += uint32(v)
}

func (t *Timer) Delta() time.Duration { return time.Duration(t.delta) * time.Millisecond }

func (t *Timer) TimeRemaining() time.Duration {
	if !t.started {
		return 0
	}
	now := t.now()
	if due(now, t.nextUp) {
		return 0
	}
	return duration(t.nextUp - now)
}

func (t *Timer) TimeSinceTriggered() time.Duration {
	if !t.started {
		return 0
	}
	return duration(t.now() - t.lastUp)
}

func (t *Timer) TimeSinceStarted() time.Duration {
	if !t.started {
		return 0
	}
	return duration(t.now() - t.startedAt)
}

func (t *Timer) StepCount() uint32 { return t.steps }

// Rollovers counts deadlines that landed past the wrap of the clock.
func (t *Timer) Rollovers() uint32 { return t.rollovers }
