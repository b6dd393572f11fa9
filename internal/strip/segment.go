package strip

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fader"
	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/fx/effects"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

const (
	DimmerInterval  = 500 * time.Millisecond
	OpacityInterval = 750 * time.Millisecond
)

// Segment is a tagged range of the strip with its own effect. The primary
// segment spans the whole strip and owns the global dimmer; every other
// segment has an opacity over the primary and inherits the primary's
// brightness until given its own.
type Segment struct {
	ctl *Controller

	tag        string
	start, end int

	effect fx.Effect
	frames *fx.FrameProvider

	dimmer     *fader.Dimmer
	opacity    *fader.Opacity
	dropDimmer bool

	overlay       fx.OverlayEffect
	overlayBuf    pixel.Buffer
	overlayFrames *fx.FrameProvider

	stateChanged bool
}

func (s *Segment) Tag() string     { return s.tag }
func (s *Segment) Start() int      { return s.start }
func (s *Segment) End() int        { return s.end }
func (s *Segment) Len() int        { return s.end - s.start + 1 }
func (s *Segment) IsPrimary() bool { return s.ctl.primary == s }

func (s *Segment) FX() fx.Effect { return s.effect }

// Frames exposes the segment's frame provider.
func (s *Segment) Frames() *fx.FrameProvider { return s.frames }

func (s *Segment) emit(kind fx.EventKind, name string) {
	s.ctl.notify(s.tag, kind, name)
}

func (s *Segment) onEvent(e fx.Event) {
	s.emit(e.Kind, e.Name())
	if e.Kind != fx.EventLog {
		s.stateChanged = true
	}
}

func (s *Segment) attach(e fx.Effect) {
	e.FX().Attach(s.ctl.clock, s.onEvent)
}

// SetFX swaps the running effect; nil installs a Solid. The frame history
// is kept so the new effect fades in over the old one.
func (s *Segment) SetFX(e fx.Effect) {
	if e == nil {
		e = effects.NewSolid(s.Len())
	}
	if old := s.effect; old != nil {
		old.FX().Stop()
		s.emit(fx.EventStopped, old.FX().Name())
	}
	s.effect = e
	s.attach(e)
	e.FX().Start()
	s.brightnessToFX(s.activeDimmer().Value())
	s.emit(fx.EventStarted, e.FX().Name())
	s.stateChanged = true
}

func (s *Segment) brightnessToFX(level uint8) {
	if h, ok := s.effect.(fx.BrightnessHandler); ok {
		h.OnBrightness(level)
	}
}

// IsVisible reports whether the segment draws anything at all.
func (s *Segment) IsVisible() bool {
	return (s.effect != nil && s.effect.FX().Started()) || s.overlay != nil
}

// IsUpdated reports whether this tick changed the segment's pixels.
func (s *Segment) IsUpdated() bool {
	if !s.IsVisible() {
		return false
	}
	if s.effect.FX().IsUpdated() || s.activeDimmer().IsUpdated() || s.overlay != nil {
		return true
	}
	return s.opacity != nil && s.opacity.IsUpdated()
}

func (s *Segment) activeDimmer() *fader.Dimmer {
	if s.dimmer != nil {
		return s.dimmer
	}
	return s.ctl.primary.dimmer
}

// Brightness is the target of the dimmer in effect for this segment.
func (s *Segment) Brightness() uint8 { return s.activeDimmer().Target() }

// CurrentBrightness is the value the dimmer applies right now.
func (s *Segment) CurrentBrightness() uint8 { return s.activeDimmer().Value() }

// HasDimmer reports whether the segment controls its own brightness.
func (s *Segment) HasDimmer() bool { return s.dimmer != nil }

// SetBrightness fades the segment's brightness to level. A non-primary
// segment stops following the primary from here on.
func (s *Segment) SetBrightness(level uint8) bool {
	if s.dimmer == nil {
		inherited := s.ctl.primary.dimmer.Value()
		s.dimmer = fader.NewDimmer(s.ctl.clock, DimmerInterval, inherited)
		s.emit(fx.EventLocalBrightnessEnabled, "")
		s.stateChanged = true
	}
	s.dropDimmer = false
	if !s.dimmer.SetTarget(level) {
		return false
	}
	s.emit(fx.EventBrightnessChanged, "")
	s.stateChanged = true
	return true
}

// RemoveDimmer hands brightness back to the primary. The local dimmer first
// fades to the primary's target and is dropped once it gets there.
func (s *Segment) RemoveDimmer() bool {
	if s.IsPrimary() || s.dimmer == nil || s.dropDimmer {
		return false
	}
	s.dropDimmer = true
	s.dimmer.SetTarget(s.ctl.primary.dimmer.Target())
	s.stateChanged = true
	return true
}

func (s *Segment) settleDimmer() {
	if !s.dropDimmer {
		return
	}
	target := s.ctl.primary.dimmer.Target()
	if s.dimmer.Target() != target {
		s.dimmer.SetTarget(target)
		return
	}
	if s.dimmer.IsFading() || s.dimmer.Value() != target {
		return
	}
	s.dimmer = nil
	s.dropDimmer = false
	s.emit(fx.EventBrightnessChanged, "inherited")
	s.stateChanged = true
}

// Opacity is the opacity target; the primary is always opaque.
func (s *Segment) Opacity() uint8 {
	if s.opacity == nil {
		return 255
	}
	return s.opacity.Target()
}

func (s *Segment) SetOpacity(level uint8) bool {
	if s.opacity == nil || !s.opacity.SetTarget(level) {
		return false
	}
	s.emit(fx.EventOpacityChanged, "")
	s.stateChanged = true
	return true
}

func (s *Segment) SetCrossFade(v bool) bool {
	if !s.frames.SetCrossFade(v) {
		return false
	}
	s.emit(fx.EventParamChange, fx.ParamCrossFade.String())
	s.stateChanged = true
	return true
}

func (s *Segment) Pause()  { s.effect.FX().Pause() }
func (s *Segment) Resume() { s.effect.FX().Resume() }

func (s *Segment) Overlay() fx.OverlayEffect { return s.overlay }

// SetOverlay starts o over this segment, replacing any running overlay.
func (s *Segment) SetOverlay(o fx.OverlayEffect) {
	if o == nil {
		s.RemoveOverlay()
		return
	}
	if s.overlay != nil {
		s.RemoveOverlay()
	}
	s.overlay = o
	s.overlayBuf = pixel.New(o.FX().Size())
	s.overlayFrames = fx.NewDirectFrameProvider(s.overlayBuf)
	s.overlayFrames.SetCrossFade(false)
	s.attach(o)
	o.FX().Start()
	s.emit(fx.EventOverlayStarted, o.FX().Name())
	s.stateChanged = true
}

// SetOverlayCrossFade blends between overlay frames. It is off for every
// new overlay.
func (s *Segment) SetOverlayCrossFade(v bool) bool {
	if s.overlayFrames == nil || !s.overlayFrames.SetCrossFade(v) {
		return false
	}
	s.emit(fx.EventParamChange, "overlay_crossfade")
	s.stateChanged = true
	return true
}

func (s *Segment) RemoveOverlay() {
	if s.overlay == nil {
		return
	}
	name := s.overlay.FX().Name()
	s.dropOverlay()
	s.emit(fx.EventOverlayStopped, name)
}

func (s *Segment) dropOverlay() {
	s.overlay.FX().Stop()
	s.overlay = nil
	s.overlayBuf = nil
	s.overlayFrames = nil
	s.stateChanged = true
}

func (s *Segment) view(live pixel.Buffer) pixel.Buffer { return live[s.start : s.end+1] }

// updateFrame renders the segment into its slice of live.
func (s *Segment) updateFrame(live pixel.Buffer) {
	if !s.IsVisible() {
		if s.opacity != nil {
			s.opacity.Release()
		}
		return
	}
	view := s.view(live)

	if s.dimmer != nil {
		s.dimmer.Update()
		s.settleDimmer()
	}
	if d := s.activeDimmer(); d.IsUpdated() {
		s.brightnessToFX(d.Value())
	}

	s.frames.UpdateFrame(view, s.effect)
	s.activeDimmer().Apply(view)

	if s.opacity != nil {
		s.opacity.Update()
		if s.opacity.Value() < 255 {
			primary := s.ctl.primary
			bg := s.opacity.Background(len(view))
			primary.frames.LastFrame(bg, s.start, s.end)
			primary.dimmer.Apply(bg)
			s.opacity.Apply(view)
		}
	}
}

// updateOverlay advances the overlay and composites it over live.
func (s *Segment) updateOverlay(live pixel.Buffer) {
	if s.overlay == nil {
		return
	}
	if s.overlay.Layer().IsDone() {
		name := s.overlay.FX().Name()
		s.dropOverlay()
		s.emit(fx.EventOverlayCompleted, name)
		return
	}
	s.overlayFrames.UpdateFrame(s.overlayBuf, s.overlay)
	s.overlay.Layer().ApplyOverlay(s.overlayBuf, s.view(live))
}
