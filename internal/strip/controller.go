// Package strip composes effect segments into a single frame and pushes it
// to an Output.
package strip

import (
	"time"

	"github.com/coreman2200/funtimes-ledfx/internal/fader"
	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

const (
	PrimaryTag        = "primary"
	DefaultMinRefresh = time.Second
)

// Controller owns the live frame and the ordered segment list. It is not
// safe for concurrent use; callers serialize Update with every setter.
type Controller struct {
	out   Output
	clock timer.Clock
	sink  Sink

	live     pixel.Buffer
	segments []*Segment
	primary  *Segment

	minRefresh      *timer.Timer
	minRefreshEvery time.Duration
	primaryFX       fx.Effect
	forceRedraw     bool

	centerOffset int
	brightness   uint8
	showCount    uint64
}

type Option func(*Controller)

func WithClock(c timer.Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

func WithSink(s Sink) Option { return func(ctl *Controller) { ctl.sink = s } }

// WithMinRefresh forces a redraw at least this often even when nothing
// changed. Zero disables it.
func WithMinRefresh(d time.Duration) Option {
	return func(ctl *Controller) { ctl.minRefreshEvery = d }
}

func WithPrimaryEffect(e fx.Effect) Option { return func(ctl *Controller) { ctl.primaryFX = e } }

// NewController builds a controller for n pixels with a primary segment
// running a Solid unless WithPrimaryEffect says otherwise.
func NewController(out Output, n int, opts ...Option) *Controller {
	if n < 1 {
		n = 1
	}
	c := &Controller{
		out:             out,
		clock:           timer.System(),
		sink:            LogSink{},
		live:            pixel.New(n),
		minRefreshEvery: DefaultMinRefresh,
		brightness:      255,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = NopSink{}
	}
	if c.minRefreshEvery > 0 {
		c.minRefresh = timer.New(c.clock, c.minRefreshEvery)
		c.minRefresh.Start()
	}

	c.primary = &Segment{ctl: c, tag: PrimaryTag, start: 0, end: n - 1}
	c.primary.dimmer = fader.NewDimmer(c.clock, DimmerInterval, 255)
	c.primary.frames = fx.NewFrameProvider(c.live)
	c.segments = []*Segment{c.primary}
	c.primary.SetFX(c.primaryFX)
	c.primaryFX = nil
	return c
}

func (c *Controller) notify(tag string, kind fx.EventKind, name string) {
	c.sink.OnFXEvent(tag, kind, name)
}

func (c *Controller) Clock() timer.Clock { return c.clock }
func (c *Controller) Len() int           { return len(c.live) }

// Buffer is the live frame as of the last Update.
func (c *Controller) Buffer() pixel.Buffer { return c.live }

func (c *Controller) Primary() *Segment { return c.primary }

// Segments returns the segments in render order, primary first.
func (c *Controller) Segments() []*Segment {
	out := make([]*Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Segment looks up a segment by tag.
func (c *Controller) Segment(tag string) (*Segment, bool) {
	for _, s := range c.segments {
		if s.tag == tag {
			return s, true
		}
	}
	return nil, false
}

// SegmentOrPrimary looks up a segment by tag, falling back to the primary.
func (c *Controller) SegmentOrPrimary(tag string) *Segment {
	if s, ok := c.Segment(tag); ok {
		return s
	}
	return c.primary
}

// AddSegment adds a segment over [start,end] running e (a Solid when nil).
// The range is clamped to the strip. An existing tag is returned unchanged.
// New segments start transparent.
func (c *Controller) AddSegment(tag string, start, end int, e fx.Effect) *Segment {
	if s, ok := c.Segment(tag); ok {
		return s
	}
	n := len(c.live)
	start = min(max(start, 0), n-1)
	end = min(max(end, start), n-1)

	s := &Segment{ctl: c, tag: tag, start: start, end: end}
	s.opacity = fader.NewOpacity(c.clock, OpacityInterval, 0)
	s.frames = fx.NewFrameProvider(c.live[start : end+1])
	c.segments = append(c.segments, s)
	s.SetFX(e)
	return s
}

// RemoveSegment stops and drops a segment. The primary cannot be removed.
func (c *Controller) RemoveSegment(tag string) bool {
	for i, s := range c.segments {
		if s.tag != tag || s == c.primary {
			continue
		}
		if s.overlay != nil {
			s.RemoveOverlay()
		}
		s.effect.FX().Stop()
		s.emit(fx.EventStopped, s.effect.FX().Name())
		c.segments = append(c.segments[:i], c.segments[i+1:]...)
		c.forceRedraw = true
		return true
	}
	return false
}

// Update renders one tick. It pushes the frame to the output only when
// something changed or the minimum refresh interval elapsed, and reports
// whether it did.
func (c *Controller) Update() (bool, error) {
	redraw := c.forceRedraw
	c.forceRedraw = false

	for _, s := range c.segments {
		s.updateFrame(c.live)
		if s.stateChanged {
			s.stateChanged = false
			redraw = true
			c.sink.OnFXStateChange(s)
		}
	}
	for _, s := range c.segments {
		s.updateOverlay(c.live)
		if s.stateChanged {
			s.stateChanged = false
			redraw = true
			c.sink.OnFXStateChange(s)
		}
		if s.IsUpdated() {
			redraw = true
		}
	}

	if c.minRefresh != nil && c.minRefresh.IsUp() {
		c.minRefresh.Step()
		redraw = true
	}
	if !redraw {
		return false, nil
	}
	return true, c.Show()
}

// Show pushes the live frame to the output, rotated by the center offset.
func (c *Controller) Show() error {
	c.showCount++
	if c.out == nil {
		return nil
	}
	if c.centerOffset == 0 {
		return c.out.Flush(c.live)
	}
	pixel.RotateForward(c.live, c.centerOffset)
	err := c.out.Flush(c.live)
	pixel.RotateBackward(c.live, c.centerOffset)
	return err
}

// ShowCount is the number of frames pushed since construction.
func (c *Controller) ShowCount() uint64 { return c.showCount }

func (c *Controller) CenterOffset() int { return c.centerOffset }

// SetCenterOffset rotates the physical output by offset pixels, so pixel 0
// of every segment lands offset pixels along the strip.
func (c *Controller) SetCenterOffset(offset int) {
	n := len(c.live)
	offset %= n
	if offset < 0 {
		offset += n
	}
	if offset != c.centerOffset {
		c.centerOffset = offset
		c.forceRedraw = true
	}
}

func (c *Controller) GlobalBrightness() uint8 { return c.brightness }

// SetGlobalBrightness sets the output's hardware brightness and shows the
// current frame at the new level.
func (c *Controller) SetGlobalBrightness(level uint8) (bool, error) {
	if level == c.brightness {
		return false, nil
	}
	c.brightness = level
	if c.out != nil {
		if err := c.out.SetGlobalBrightness(level); err != nil {
			return true, err
		}
	}
	return true, c.Show()
}
