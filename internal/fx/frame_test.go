package fx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

type fill struct {
	Base
	c pixel.RGB
}

func (f *fill) WriteNextFrame(buf pixel.Buffer) { buf.Fill(f.c) }

func newFill(clk timer.Clock, size int, interval time.Duration, c pixel.RGB) *fill {
	f := &fill{Base: NewBase("fill", size, interval, time.Millisecond, 5*time.Second), c: c}
	f.Attach(clk, nil)
	f.Start()
	return f
}

func TestFirstFrameLandsWithoutFade(t *testing.T) {
	clk := timer.NewManualClock(0)
	e := newFill(clk, 4, 100*time.Millisecond, pixel.Red)
	p := NewFrameProvider(pixel.New(4))
	dest := pixel.New(4)

	p.UpdateFrame(dest, e)
	for _, c := range dest {
		assert.Equal(t, pixel.Red, c)
	}
	assert.True(t, p.Active())
}

func TestCrossFadeBlendNeverRegresses(t *testing.T) {
	clk := timer.NewManualClock(0)
	e := newFill(clk, 2, 100*time.Millisecond, pixel.Red)
	p := NewFrameProvider(pixel.New(2))
	dest := pixel.New(2)

	p.UpdateFrame(dest, e)
	e.c = pixel.Blue

	clk.Advance(100 * time.Millisecond)
	p.UpdateFrame(dest, e)
	assert.Equal(t, pixel.Red, dest[0], "previous frame shown at the start of the transition")

	clk.Advance(50 * time.Millisecond)
	p.UpdateFrame(dest, e)
	mid := p.BlendAmount()
	assert.True(t, mid > 100 && mid < 150, "blend=%d", mid)
	assert.True(t, dest[0].R > 0 && dest[0].B > 0, "mixing red and blue: %+v", dest[0])

	// The running period grows mid-transition; the blend must hold.
	e.AddDelta(300 * time.Millisecond)
	clk.Advance(10 * time.Millisecond)
	p.UpdateFrame(dest, e)
	assert.GreaterOrEqual(t, p.BlendAmount(), mid)
	assert.Equal(t, 2, p.BlendSteps())

	clk.Set(498)
	p.UpdateFrame(dest, e)
	assert.Equal(t, pixel.Blue, dest[0], "snaps to the newest frame inside the threshold")
	assert.Equal(t, uint8(255), p.BlendAmount())

	last := pixel.New(2)
	p.LastFrame(last, 0, 1)
	assert.Equal(t, pixel.Blue, last[1])

	clk.Set(500)
	p.UpdateFrame(dest, e)
	assert.Equal(t, pixel.Blue, dest[0])
	assert.Equal(t, uint8(0), p.BlendAmount())
}

func TestCrossFadeOffBelowThreshold(t *testing.T) {
	clk := timer.NewManualClock(0)
	e := newFill(clk, 2, 2*time.Millisecond, pixel.Green)
	p := NewFrameProvider(pixel.New(2))
	dest := pixel.New(2)

	p.UpdateFrame(dest, e)
	assert.False(t, p.Active())
	assert.True(t, p.CrossFade(), "preference is kept")
	assert.Equal(t, pixel.Green, dest[1])
}

func TestSetCrossFadeOffSettlesOnNewest(t *testing.T) {
	clk := timer.NewManualClock(0)
	e := newFill(clk, 2, 100*time.Millisecond, pixel.Red)
	p := NewFrameProvider(pixel.New(2))
	dest := pixel.New(2)
	p.UpdateFrame(dest, e)

	e.c = pixel.Blue
	clk.Advance(100 * time.Millisecond)
	p.UpdateFrame(dest, e)
	require.Equal(t, pixel.Red, p.Frame()[0])

	require.True(t, p.SetCrossFade(false))
	assert.False(t, p.SetCrossFade(false))
	assert.Equal(t, pixel.Blue, p.Frame()[0])

	clk.Advance(100 * time.Millisecond)
	p.UpdateFrame(dest, e)
	assert.Equal(t, pixel.Blue, dest[0])
}

func TestLastFrameClampsRange(t *testing.T) {
	clk := timer.NewManualClock(0)
	e := newFill(clk, 3, 100*time.Millisecond, pixel.White)
	p := NewFrameProvider(pixel.New(3))
	p.UpdateFrame(nil, e)

	dest := pixel.New(3)
	p.LastFrame(dest, -2, 10)
	assert.Equal(t, pixel.Buffer{pixel.White, pixel.White, pixel.White}, dest)
}

func TestDirectProviderCrossFadesInPlace(t *testing.T) {
	clk := timer.NewManualClock(0)
	live := pixel.New(2)
	e := newFill(clk, 2, 100*time.Millisecond, pixel.Red)
	p := NewDirectFrameProvider(live)
	require.True(t, p.CrossFade())
	require.True(t, p.Active())

	p.UpdateFrame(live, e)
	assert.Equal(t, pixel.Red, live[1])

	e.c = pixel.Blue
	clk.Advance(100 * time.Millisecond)
	p.UpdateFrame(live, e)
	assert.Equal(t, pixel.Red, live[0])

	for _, d := range []time.Duration{50, 25, 10} {
		clk.Advance(d * time.Millisecond)
		p.UpdateFrame(live, e)
		want := pixel.Red.Blend(pixel.Blue, p.BlendAmount())
		assert.InDelta(t, int(want.R), int(live[0].R), 3, "blend=%d", p.BlendAmount())
		assert.InDelta(t, int(want.B), int(live[0].B), 3, "blend=%d", p.BlendAmount())
	}
	assert.True(t, live[0].R > 0 && live[0].B > 0, "mixing red and blue: %+v", live[0])

	last := pixel.New(2)
	p.LastFrame(last, 0, 1)
	assert.Equal(t, live, last, "what was written is what was shown")

	clk.Set(198)
	p.UpdateFrame(live, e)
	assert.Equal(t, pixel.Blue, live[0])

	require.True(t, p.SetCrossFade(false))
	assert.False(t, p.Active())
	require.True(t, p.SetCrossFade(true))

	clk.Set(200)
	p.UpdateFrame(live, e)
	assert.Equal(t, pixel.Blue, live[1])
}

func TestThresholdHoldBeforeAnyBlendKeepsCurrentFrame(t *testing.T) {
	clk := timer.NewManualClock(0)
	e := newFill(clk, 2, 100*time.Millisecond, pixel.Red)
	p := NewFrameProvider(pixel.New(2))
	dest := pixel.New(2)
	p.UpdateFrame(dest, e)

	e.c = pixel.Blue
	clk.Advance(100 * time.Millisecond)
	p.UpdateFrame(dest, e)

	// straight into the threshold window without a blended tick
	clk.Set(198)
	p.UpdateFrame(dest, e)
	assert.Equal(t, pixel.Red, dest[0])
	assert.Zero(t, p.BlendAmount())

	last := pixel.New(2)
	p.LastFrame(last, 0, 1)
	assert.Equal(t, pixel.Buffer{pixel.Red, pixel.Red}, last)
}
