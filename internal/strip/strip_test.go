package strip

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/fx/effects"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

type memOutput struct {
	frames []pixel.Buffer
	level  uint8
	err    error
}

func (m *memOutput) Flush(frame pixel.Buffer) error {
	m.frames = append(m.frames, frame.Clone())
	return m.err
}

func (m *memOutput) SetGlobalBrightness(level uint8) error {
	m.level = level
	return nil
}

func (m *memOutput) last() pixel.Buffer { return m.frames[len(m.frames)-1] }

type sinkEvent struct {
	tag  string
	kind fx.EventKind
	name string
}

type recSink struct {
	events  []sinkEvent
	changes []string
}

func (r *recSink) OnFXEvent(tag string, kind fx.EventKind, name string) {
	r.events = append(r.events, sinkEvent{tag, kind, name})
}

func (r *recSink) OnFXStateChange(s *Segment) { r.changes = append(r.changes, s.Tag()) }

func (r *recSink) count(kind fx.EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func newRedStrip(t *testing.T, n int) (*Controller, *memOutput, *recSink, *timer.ManualClock) {
	t.Helper()
	clk := timer.NewManualClock(0)
	out := &memOutput{}
	sink := &recSink{}
	c := NewController(out, n,
		WithClock(clk),
		WithSink(sink),
		WithPrimaryEffect(effects.NewSolidColor(n, pixel.Red)),
	)
	return c, out, sink, clk
}

func run(t *testing.T, c *Controller, clk *timer.ManualClock, d, step time.Duration) {
	t.Helper()
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		clk.Advance(step)
		_, err := c.Update()
		require.NoError(t, err)
	}
}

func TestSolidPrimaryFillsStrip(t *testing.T) {
	c, out, _, _ := newRedStrip(t, 10)

	shown, err := c.Update()
	require.NoError(t, err)
	require.True(t, shown)

	for i, px := range out.last() {
		assert.Equal(t, pixel.Red, px, "pixel %d", i)
	}
	assert.Equal(t, uint64(1), c.ShowCount())
}

func TestSegmentFadesInOverPrimary(t *testing.T) {
	c, out, _, clk := newRedStrip(t, 10)
	_, err := c.Update()
	require.NoError(t, err)

	seg := c.AddSegment("left", 0, 4, effects.NewSolidColor(5, pixel.Blue))
	require.True(t, seg.SetOpacity(255))
	run(t, c, clk, time.Second, 50*time.Millisecond)

	frame := out.last()
	for i := 0; i < 5; i++ {
		assert.Equal(t, pixel.Blue, frame[i], "pixel %d", i)
	}
	for i := 5; i < 10; i++ {
		assert.Equal(t, pixel.Red, frame[i], "pixel %d", i)
	}
	assert.False(t, seg.opacity.HasBackground())
}

func TestPrimaryBrightnessFadesToBlack(t *testing.T) {
	c, _, _, clk := newRedStrip(t, 10)
	_, err := c.Update()
	require.NoError(t, err)

	require.True(t, c.Primary().SetBrightness(0))

	var lumas []uint8
	for _, at := range []time.Duration{0, 250 * time.Millisecond, 250 * time.Millisecond} {
		clk.Advance(at)
		_, err := c.Update()
		require.NoError(t, err)
		lumas = append(lumas, c.Buffer()[0].Luma())
	}

	require.Len(t, lumas, 3)
	assert.Greater(t, lumas[0], lumas[1])
	assert.Greater(t, lumas[1], lumas[2])
	for i, px := range c.Buffer() {
		assert.Equal(t, pixel.Black, px, "pixel %d", i)
	}
}

func TestTransparentSegmentShowsPrimary(t *testing.T) {
	c, out, _, clk := newRedStrip(t, 10)
	c.AddSegment("left", 0, 4, effects.NewSolidColor(5, pixel.Blue))

	for i := 0; i < 3; i++ {
		_, err := c.Update()
		require.NoError(t, err)
		clk.Advance(20 * time.Millisecond)
	}
	for i, px := range out.last() {
		assert.Equal(t, pixel.Red, px, "pixel %d", i)
	}
}

func TestSegmentLookup(t *testing.T) {
	c, _, _, _ := newRedStrip(t, 10)
	left := c.AddSegment("left", 0, 4, nil)

	got, ok := c.Segment("left")
	require.True(t, ok)
	assert.Same(t, left, got)

	_, ok = c.Segment("nope")
	assert.False(t, ok)
	assert.Same(t, c.Primary(), c.SegmentOrPrimary("nope"))
	assert.Same(t, left, c.SegmentOrPrimary("left"))

	again := c.AddSegment("left", 2, 3, nil)
	assert.Same(t, left, again)
	assert.Len(t, c.Segments(), 2)
	assert.Equal(t, "Solid", left.FX().FX().Name())
}

func TestAddSegmentClampsRange(t *testing.T) {
	c, _, _, _ := newRedStrip(t, 10)
	s := c.AddSegment("wide", -3, 40, nil)
	assert.Equal(t, 0, s.Start())
	assert.Equal(t, 9, s.End())
	assert.Equal(t, 10, s.Len())
	assert.False(t, s.IsPrimary())
	assert.True(t, c.Primary().IsPrimary())
}

func TestNoOpSettersStaySilent(t *testing.T) {
	c, _, sink, _ := newRedStrip(t, 10)
	seg := c.AddSegment("left", 0, 4, nil)
	sink.events = nil

	assert.False(t, c.Primary().SetBrightness(255))
	assert.False(t, seg.SetOpacity(0))
	assert.False(t, c.Primary().SetOpacity(10))
	assert.Empty(t, sink.events)

	assert.True(t, seg.SetOpacity(128))
	assert.False(t, seg.SetOpacity(128))
	assert.Equal(t, 1, sink.count(fx.EventOpacityChanged))
}

func TestLocalDimmerRemovalWaitsForPrimaryLevel(t *testing.T) {
	c, _, sink, clk := newRedStrip(t, 10)
	seg := c.AddSegment("left", 0, 4, nil)
	assert.False(t, seg.HasDimmer())
	assert.Equal(t, uint8(255), seg.Brightness())

	require.True(t, seg.SetBrightness(100))
	assert.True(t, seg.HasDimmer())
	assert.Equal(t, 1, sink.count(fx.EventLocalBrightnessEnabled))
	assert.Equal(t, uint8(255), c.Primary().Brightness())
	run(t, c, clk, 600*time.Millisecond, 50*time.Millisecond)
	assert.Equal(t, uint8(100), seg.CurrentBrightness())

	require.True(t, seg.RemoveDimmer())
	assert.False(t, seg.RemoveDimmer())
	_, err := c.Update()
	require.NoError(t, err)
	assert.True(t, seg.HasDimmer(), "dimmer must survive until the fade back ends")

	run(t, c, clk, 600*time.Millisecond, 50*time.Millisecond)
	assert.False(t, seg.HasDimmer())
	assert.Equal(t, uint8(255), seg.CurrentBrightness())
	assert.False(t, c.Primary().RemoveDimmer())
}

func TestOverlayLifecycleEvents(t *testing.T) {
	c, _, sink, clk := newRedStrip(t, 10)
	c.Primary().SetOverlay(effects.NewPulse(10))
	require.NotNil(t, c.Primary().Overlay())
	assert.True(t, c.Primary().IsVisible())

	for i := 0; i < 200 && c.Primary().Overlay() != nil; i++ {
		clk.Advance(50 * time.Millisecond)
		_, err := c.Update()
		require.NoError(t, err)
	}

	assert.Nil(t, c.Primary().Overlay())
	assert.Equal(t, 1, sink.count(fx.EventOverlayStarted))
	assert.Equal(t, 1, sink.count(fx.EventOverlayCompleted))
	assert.Zero(t, sink.count(fx.EventOverlayStopped))

	c.Primary().SetOverlay(effects.NewPulse(10))
	c.Primary().RemoveOverlay()
	assert.Equal(t, 1, sink.count(fx.EventOverlayStopped))
}

func TestCenterOffsetRotatesOutputOnly(t *testing.T) {
	c, out, _, clk := newRedStrip(t, 10)
	dot := c.AddSegment("dot", 0, 0, effects.NewSolidColor(1, pixel.Blue))
	dot.SetOpacity(255)
	run(t, c, clk, time.Second, 50*time.Millisecond)

	c.SetCenterOffset(13)
	assert.Equal(t, 3, c.CenterOffset())
	shown, err := c.Update()
	require.NoError(t, err)
	require.True(t, shown)

	assert.Equal(t, pixel.Blue, out.last()[3])
	assert.Equal(t, pixel.Red, out.last()[0])
	assert.Equal(t, pixel.Blue, c.Buffer()[0])

	c.SetCenterOffset(-1)
	assert.Equal(t, 9, c.CenterOffset())
}

func TestMinRefreshForcesRedraw(t *testing.T) {
	clk := timer.NewManualClock(0)
	c := NewController(&memOutput{}, 4,
		WithClock(clk),
		WithSink(NopSink{}),
		WithMinRefresh(time.Second),
	)
	run(t, c, clk, 200*time.Millisecond, 100*time.Millisecond)

	shown, err := c.Update()
	require.NoError(t, err)
	assert.False(t, shown)

	shown = false
	for i := 0; i < 10 && !shown; i++ {
		clk.Advance(100 * time.Millisecond)
		shown, err = c.Update()
		require.NoError(t, err)
	}
	assert.True(t, shown)
	assert.Equal(t, uint32(1000), clk.Millis())
}

func TestGlobalBrightnessReachesOutput(t *testing.T) {
	c, out, _, _ := newRedStrip(t, 4)

	changed, err := c.SetGlobalBrightness(255)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = c.SetGlobalBrightness(64)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint8(64), out.level)
	assert.Equal(t, uint8(64), c.GlobalBrightness())
	assert.Len(t, out.frames, 1)
}

func TestUpdateReturnsFlushError(t *testing.T) {
	c, out, _, _ := newRedStrip(t, 4)
	out.err = errors.New("bus gone")
	_, err := c.Update()
	assert.EqualError(t, err, "bus gone")
}

func TestRemoveSegment(t *testing.T) {
	c, _, sink, _ := newRedStrip(t, 10)
	c.AddSegment("left", 0, 4, nil)

	assert.False(t, c.RemoveSegment(PrimaryTag))
	assert.True(t, c.RemoveSegment("left"))
	assert.False(t, c.RemoveSegment("left"))
	assert.Len(t, c.Segments(), 1)
	assert.Equal(t, 1, sink.count(fx.EventStopped))
}

func TestStateChangesReachSink(t *testing.T) {
	c, _, sink, _ := newRedStrip(t, 10)
	seg := c.AddSegment("left", 0, 4, nil)
	_, err := c.Update()
	require.NoError(t, err)
	assert.Equal(t, []string{PrimaryTag, "left"}, sink.changes)

	seg.Pause()
	assert.True(t, seg.FX().FX().Frozen())
	seg.Resume()
	assert.Equal(t, 1, sink.count(fx.EventPaused))
	assert.Equal(t, 1, sink.count(fx.EventResumed))

	seg.FX().FX().SetSpeed(10)
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, sinkEvent{"left", fx.EventParamChange, "speed"}, last)
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recSink{}, &recSink{}
	clk := timer.NewManualClock(0)
	c := NewController(nil, 3, WithClock(clk), WithSink(MultiSink{a, b, LogSink{}}))
	_, err := c.Update()
	require.NoError(t, err)
	assert.Equal(t, a.events, b.events)
	assert.NotEmpty(t, a.events)
	assert.Equal(t, a.changes, b.changes)
}

type dimAware struct {
	*effects.Solid
	levels []uint8
}

func (d *dimAware) OnBrightness(level uint8) { d.levels = append(d.levels, level) }

func TestEffectsFollowEveryDimmerStep(t *testing.T) {
	clk := timer.NewManualClock(0)
	prim := &dimAware{Solid: effects.NewSolidColor(4, pixel.Red)}
	c := NewController(&memOutput{}, 4, WithClock(clk), WithSink(&recSink{}), WithPrimaryEffect(prim))
	left := &dimAware{Solid: effects.NewSolidColor(2, pixel.Blue)}
	c.AddSegment("left", 0, 1, left)
	assert.Equal(t, []uint8{255}, left.levels, "a new effect starts at the current level")

	_, err := c.Update()
	require.NoError(t, err)
	prim.levels, left.levels = nil, nil

	require.True(t, c.Primary().SetBrightness(0))
	var seen []uint8
	for i := 0; i < 5; i++ {
		clk.Advance(100 * time.Millisecond)
		_, err := c.Update()
		require.NoError(t, err)
		seen = append(seen, c.Primary().CurrentBrightness())
	}

	assert.Equal(t, seen, prim.levels)
	assert.Equal(t, prim.levels, left.levels, "inheriting segments see the primary's steps")
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i], seen[i-1])
	}
	assert.Equal(t, uint8(0), seen[len(seen)-1])

	clk.Advance(100 * time.Millisecond)
	_, err = c.Update()
	require.NoError(t, err)
	assert.Len(t, prim.levels, 5, "a settled dimmer is not reported again")
}

func TestOverlayCompletionReportedOnTheSameTick(t *testing.T) {
	c, _, sink, clk := newRedStrip(t, 6)
	_, err := c.Update()
	require.NoError(t, err)
	c.Primary().SetOverlay(effects.NewPulse(6))

	for i := 0; i < 200; i++ {
		clk.Advance(50 * time.Millisecond)
		before := len(sink.changes)
		_, err := c.Update()
		require.NoError(t, err)
		if c.Primary().Overlay() == nil {
			require.Greater(t, len(sink.changes), before)
			assert.Equal(t, PrimaryTag, sink.changes[len(sink.changes)-1])
			return
		}
	}
	t.Fatalf("overlay never completed")
}

func TestOverlayCrossFade(t *testing.T) {
	c, _, sink, clk := newRedStrip(t, 6)
	seg := c.Primary()
	assert.False(t, seg.SetOverlayCrossFade(true), "no overlay yet")

	seg.SetOverlay(effects.NewPulse(6))
	require.True(t, seg.SetOverlayCrossFade(true))
	assert.False(t, seg.SetOverlayCrossFade(true))
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, sinkEvent{PrimaryTag, fx.EventParamChange, "overlay_crossfade"}, last)

	lit := false
	for i := 0; i < 500 && seg.Overlay() != nil; i++ {
		clk.Advance(20 * time.Millisecond)
		_, err := c.Update()
		require.NoError(t, err)
		if c.Buffer()[0] != pixel.Red {
			lit = true
		}
	}
	assert.Nil(t, seg.Overlay())
	assert.True(t, lit, "the overlay drew over the primary")
	assert.Equal(t, 1, sink.count(fx.EventOverlayCompleted))
}
