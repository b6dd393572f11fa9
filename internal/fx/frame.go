package fx

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fixed"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

const DefaultFadeThreshold = 3 * time.Millisecond

// FrameProvider turns an effect's discrete frames into a per-tick output.
// With cross-fade on it keeps the previous frame (curr) and the newest one
// (next) and blends between them across the effect's interval, so a slow
// effect still animates smoothly at the display rate.
type FrameProvider struct {
	curr pixel.Buffer
	next pixel.Buffer

	direct        bool
	crossFade     bool
	tooFast       bool
	primed        bool
	fadeThreshold time.Duration

	prior uint8
	steps int
	fade  pixel.FadeType
}

// NewFrameProvider owns a copy of initial as its first frame.
func NewFrameProvider(initial pixel.Buffer) *FrameProvider {
	return &FrameProvider{
		curr:          initial.Clone(),
		crossFade:     true,
		fadeThreshold: DefaultFadeThreshold,
	}
}

// NewDirectFrameProvider renders straight into live, which must not be
// written by anyone else. Cross-fade still works: the newest frame is kept
// aside and each blend step moves live the rest of the way toward it.
func NewDirectFrameProvider(live pixel.Buffer) *FrameProvider {
	return &FrameProvider{
		curr:          live,
		direct:        true,
		crossFade:     true,
		fadeThreshold: DefaultFadeThreshold,
	}
}

func (p *FrameProvider) Direct() bool { return p.direct }

// Frame is the settled frame.
func (p *FrameProvider) Frame() pixel.Buffer { return p.curr }

func (p *FrameProvider) CrossFade() bool { return p.crossFade }

// Active reports whether cross-fading is actually in effect.
func (p *FrameProvider) Active() bool { return p.crossFade && !p.tooFast }

func (p *FrameProvider) BlendAmount() uint8 { return p.prior }
func (p *FrameProvider) BlendSteps() int    { return p.steps }

func (p *FrameProvider) SetFadeThreshold(d time.Duration) { p.fadeThreshold = d }

// SetCrossFade records the preference. Turning it off settles on the newest
// frame and frees the second buffer.
func (p *FrameProvider) SetCrossFade(v bool) bool {
	if v == p.crossFade {
		return false
	}
	p.crossFade = v
	if !p.Active() {
		p.Release()
	}
	return true
}

// CheckCrossFade disables blending while the effect ticks at or below the
// fade threshold; there is nothing to blend between at that rate.
func (p *FrameProvider) CheckCrossFade(e Effect) {
	p.tooFast = e.FX().Interval() <= p.fadeThreshold
	if !p.Active() {
		p.Release()
	}
}

// Release settles on the newest frame and drops the cross-fade buffer.
func (p *FrameProvider) Release() {
	if p.next == nil {
		return
	}
	copy(p.curr, p.next)
	p.next = nil
	p.prior, p.steps = 0, 0
}

// Reset forgets the frame history so the next frame lands without a fade.
func (p *FrameProvider) Reset() {
	p.primed = false
	p.prior, p.steps = 0, 0
}

// UpdateFrame writes this tick's output for e into dest. A nil dest means
// the provider's own frame.
func (p *FrameProvider) UpdateFrame(dest pixel.Buffer, e Effect) {
	b := e.FX()
	if dest == nil {
		dest = p.curr
	}
	if b.IsUp() || b.TimeRemaining() <= p.fadeThreshold {
		if b.IsUp() || p.next == nil {
			p.prior, p.steps = 0, 0
			p.step(e)
			copyFrame(dest, p.curr)
			return
		}
		// Close enough to the next tick: resolve a started blend to the
		// newest frame, otherwise hold the current one until the tick.
		if p.steps > 0 {
			if p.direct {
				copy(p.curr, p.next)
			}
			copyFrame(dest, p.next)
			p.prior = 255
		} else {
			copyFrame(dest, p.curr)
		}
		return
	}

	if p.Active() && p.next != nil && b.IsUpdated() && (p.direct || !dest.Same(p.curr)) {
		since := b.TimeSinceTriggered().Milliseconds()
		span := b.CurrInterval().Milliseconds()
		blend := fixed.Clamp8(fixed.Map(since, 1, span, 1, 255))
		if blend < p.prior {
			blend = p.prior
		}
		p.fade = b.Fade()
		if p.direct {
			p.blendInPlace(blend)
			copyFrame(dest, p.curr)
		} else {
			pixel.Blend(dest, p.curr, p.next, blend, p.fade)
		}
		p.steps++
		p.prior = blend
		return
	}
	copyFrame(dest, p.curr)
}

// blendInPlace moves the aliased frame from the prior blend level to amt.
// curr already holds the blend at prior, so only the remaining share of the
// distance to next is applied.
func (p *FrameProvider) blendInPlace(amt uint8) {
	from := int64(pixel.Curve(p.prior, p.fade))
	to := int64(pixel.Curve(amt, p.fade))
	if from >= 255 || to <= from {
		return
	}
	pixel.NBlend(p.curr, p.next, fixed.Clamp8((to-from)*255/(255-from)))
}

func (p *FrameProvider) step(e Effect) {
	p.CheckCrossFade(e)
	if !p.Active() {
		Update(e, p.curr)
		p.primed = true
		return
	}
	if p.next == nil {
		p.next = p.curr.Clone()
	}
	if !p.primed {
		Update(e, p.next)
		copy(p.curr, p.next)
		p.primed = true
		return
	}
	copy(p.curr, p.next)
	Update(e, p.next)
}

// LastFrame copies the frame currently on display for [start,end] into dest.
func (p *FrameProvider) LastFrame(dest pixel.Buffer, start, end int) {
	start = max(0, start)
	end = min(end, len(p.curr)-1)
	if end < start {
		return
	}
	curr := p.curr[start : end+1]
	if p.direct || !p.Active() || p.next == nil || p.prior == 0 {
		copy(dest, curr)
		return
	}
	next := p.next[start : end+1]
	if p.prior == 255 {
		copy(dest, next)
		return
	}
	pixel.Blend(dest, curr, next, p.prior, p.fade)
}

func copyFrame(dest, src pixel.Buffer) {
	if dest.Same(src) {
		return
	}
	copy(dest, src)
}
