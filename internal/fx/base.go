package fx

import (
	"math/rand"
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/colors"
	"github.com/coreman2200/funtimes-ledfx/internal/fixed"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

// Movement selects how an effect maps its phase onto pixel positions.
type Movement int

const (
	MoveForward Movement = iota + 1
	MoveBackward
	MoveBackForth
	MoveRandom
	MoveStill
)

func (m Movement) String() string {
	switch m {
	case MoveForward:
		return "forward"
	case MoveBackward:
		return "backward"
	case MoveBackForth:
		return "backforth"
	case MoveRandom:
		return "random"
	case MoveStill:
		return "still"
	}
	return "unknown"
}

// ParseMovement accepts the names produced by Movement.String.
func ParseMovement(s string) (Movement, bool) {
	for m := MoveForward; m <= MoveStill; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Base carries the state shared by every effect. Phase runs 1..Size and
// VPhase 1..VCycleRange; Cycle and VCycle count completed passes.
type Base struct {
	timer.Ranged

	name        string
	size        int
	phase       int
	vphase      int
	cycle       uint32
	vcycle      uint32
	vcycleRange int
	movement    Movement
	color       colors.Color
	fade        pixel.FadeType

	frozen      bool
	initialized bool
	updated     bool
	seconds     uint32

	emit Emitter
}

// NewBase returns effect state for size pixels ticking every interval,
// held inside [min,max]. The first tick is due as soon as the effect starts.
func NewBase(name string, size int, interval, min, max time.Duration) Base {
	b := Base{
		name:        name,
		size:        size,
		phase:       1,
		vphase:      1,
		vcycleRange: size,
		movement:    MoveForward,
		color:       colors.New(),
		updated:     true,
	}
	b.Ranged.SetRange(min, max)
	b.Ranged.SetInterval(interval)
	b.SetStartExpired(true)
	return b
}

// NewBaseSpeed is NewBase with the interval given as a 0..255 speed.
func NewBaseSpeed(name string, size int, speed uint8, min, max time.Duration) Base {
	b := NewBase(name, size, min, min, max)
	b.Ranged.SetSpeed(speed)
	return b
}

func (b *Base) FX() *Base { return b }

// Attach binds the effect to its owner's clock and event stream.
func (b *Base) Attach(clock timer.Clock, emit Emitter) {
	b.SetClock(clock)
	b.emit = emit
}

func (b *Base) notify(e Event) {
	if b.emit != nil {
		b.emit(e)
	}
}

func (b *Base) notifyParam(p Param) { b.notify(Event{Kind: EventParamChange, Param: p}) }

// NotifyChange reports a custom parameter change by name.
func (b *Base) NotifyChange(name string) {
	b.notify(Event{Kind: EventParamChange, Param: ParamCustom, Message: name})
}

// Log forwards a free-form message to the owner.
func (b *Base) Log(msg string) { b.notify(Event{Kind: EventLog, Message: msg}) }

func (b *Base) Name() string { return b.name }
func (b *Base) Size() int    { return b.size }

func (b *Base) Phase() int         { return b.phase }
func (b *Base) VPhase() int        { return b.vphase }
func (b *Base) Cycle() uint32      { return b.cycle }
func (b *Base) VCycle() uint32     { return b.vcycle }
func (b *Base) VCycleRange() int   { return b.vcycleRange }
func (b *Base) Seconds() uint32    { return b.seconds }
func (b *Base) Initialized() bool  { return b.initialized }
func (b *Base) Movement() Movement { return b.movement }

func (b *Base) Fade() pixel.FadeType { return b.fade }

// Color exposes the effect's color state for drawing.
func (b *Base) Color() *colors.Color { return &b.color }

// SetVCycleRange decouples the virtual cycle from the pixel count.
func (b *Base) SetVCycleRange(n int) bool {
	n = max(1, n)
	if n == b.vcycleRange {
		return false
	}
	b.vcycleRange = n
	if b.vphase > n {
		b.vphase = 1
	}
	b.notifyParam(ParamVCycleRange)
	return true
}

func (b *Base) SetMovement(m Movement) bool {
	if m == b.movement || m < MoveForward || m > MoveStill {
		return false
	}
	b.movement = m
	b.notifyParam(ParamMovement)
	return true
}

func (b *Base) SetFade(f pixel.FadeType) bool {
	if f == b.fade {
		return false
	}
	b.fade = f
	b.notifyParam(ParamFade)
	return true
}

func (b *Base) SetInterval(d time.Duration) bool {
	if !b.Ranged.SetInterval(d) {
		return false
	}
	b.notifyParam(ParamInterval)
	return true
}

func (b *Base) SetSpeed(speed uint8) bool {
	if !b.Ranged.SetSpeed(speed) {
		return false
	}
	b.notifyParam(ParamSpeed)
	return true
}

func (b *Base) SetRGB(c pixel.RGB) bool {
	if !b.color.SetRGB(c) {
		return false
	}
	b.notifyParam(ParamColor)
	return true
}

func (b *Base) SetHSV(c colors.HSV) bool {
	if !b.color.SetHSV(c) {
		return false
	}
	b.notifyParam(ParamColor)
	return true
}

func (b *Base) SetPalette(p colors.Palette16) bool {
	if !b.color.SetPalette(p) {
		return false
	}
	b.notifyParam(ParamPalette)
	return true
}

// IsUpdated reports whether the last frame differs from the one before it.
func (b *Base) IsUpdated() bool {
	if b.color.IsUpdated() {
		b.updated = true
	}
	return b.updated
}

func (b *Base) SetUpdated(v bool) { b.updated = v }

func (b *Base) Frozen() bool { return b.frozen }

// Freeze stops phase progress; frozen effects only see WhileFrozen.
func (b *Base) Freeze() { b.frozen = true }

func (b *Base) Unfreeze() { b.frozen = false }

// Pause freezes the effect on behalf of a user and reports it.
func (b *Base) Pause() {
	if b.frozen {
		return
	}
	b.frozen = true
	b.notify(Event{Kind: EventPaused})
}

func (b *Base) Resume() {
	if !b.frozen {
		return
	}
	b.frozen = false
	b.notify(Event{Kind: EventResumed})
}

// MovementPhase maps the current phase to a 1-based pixel position
// according to the movement mode.
func (b *Base) MovementPhase() int {
	n := b.size
	if n <= 0 {
		return 1
	}
	switch b.movement {
	case MoveBackward:
		return fixed.Mirror(b.phase-1, n) + 1
	case MoveBackForth:
		if b.cycle%2 == 1 {
			return fixed.Mirror(b.phase-1, n) + 1
		}
	case MoveRandom:
		return 1 + rand.Intn(n)
	case MoveStill:
		return 1
	}
	return b.phase
}

// AlphaBlend mixes a toward c using the effect's fade curve.
func (b *Base) AlphaBlend(a, c pixel.RGB, alpha uint8) pixel.RGB {
	return pixel.AlphaBlend(a, c, alpha, b.fade)
}
