package fx

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

const (
	OverlayMinInterval = 0
	OverlayMaxInterval = 50 * time.Millisecond

	DefaultRepeatDelay = 500 * time.Millisecond
)

// Overlay is a short-lived effect drawn over a segment. Each pixel carries
// its own alpha; black pixels are transparent. An overlay runs Repeat
// virtual cycles, pausing RepeatDelay between them, then reports done.
type Overlay struct {
	Base

	Alpha       []uint8
	MaxAlpha    uint8
	Repeat      uint32
	RepeatDelay time.Duration
	Continuous  bool

	completed      bool
	nextCycleStart uint32
}

// OverlayEffect is an Effect built on Overlay.
type OverlayEffect interface {
	Effect
	Layer() *Overlay
}

func NewOverlay(name string, size int, speed uint8, repeat uint32) Overlay {
	return Overlay{
		Base:        NewBaseSpeed(name, size, speed, OverlayMinInterval, OverlayMaxInterval),
		Alpha:       make([]uint8, size),
		MaxAlpha:    255,
		Repeat:      max(1, repeat),
		RepeatDelay: DefaultRepeatDelay,
	}
}

func (o *Overlay) Layer() *Overlay { return o }

func (o *Overlay) IsDone() bool { return o.completed }

// Complete ends the overlay at the next segment update.
func (o *Overlay) Complete() { o.completed = true }

func (o *Overlay) OnVCycleEnd(buf pixel.Buffer) {
	if o.VCycle() >= o.Repeat && !o.Continuous {
		o.completed = true
		return
	}
	o.nextCycleStart = o.Now() + uint32(o.RepeatDelay.Milliseconds())
	o.Freeze()
}

func (o *Overlay) WhileFrozen(buf pixel.Buffer) {
	if int32(o.Now()-o.nextCycleStart) >= 0 {
		o.Unfreeze()
	}
}

// ApplyOverlay composites src over dest using the per-pixel alpha, capped
// at MaxAlpha. Black source pixels leave dest untouched.
func (o *Overlay) ApplyOverlay(src, dest pixel.Buffer) {
	n := min(len(src), len(dest), len(o.Alpha))
	for i := 0; i < n; i++ {
		if src[i].IsBlack() {
			continue
		}
		a := min(o.Alpha[i], o.MaxAlpha)
		if a == 0 {
			continue
		}
		dest[i] = dest[i].Blend(src[i], a)
	}
}
