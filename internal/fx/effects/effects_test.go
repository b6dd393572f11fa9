package effects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

func start(e fx.Effect, clk timer.Clock) {
	e.FX().Attach(clk, nil)
	e.FX().Start()
}

func TestSolidOnlyRedrawsOnColorChange(t *testing.T) {
	clk := timer.NewManualClock(0)
	s := NewSolidColor(3, pixel.Red)
	start(s, clk)
	buf := pixel.New(3)

	fx.Update(s, buf)
	assert.Equal(t, pixel.Buffer{pixel.Red, pixel.Red, pixel.Red}, buf)
	assert.True(t, s.IsUpdated())

	fx.Update(s, buf)
	assert.False(t, s.IsUpdated())

	s.SetRGB(pixel.Green)
	assert.True(t, s.IsUpdated())
	fx.Update(s, buf)
	assert.Equal(t, pixel.Green, buf[1])
}

func TestSolidDefaults(t *testing.T) {
	s := NewSolid(1)
	assert.Equal(t, 100*time.Millisecond, s.Interval())
	lo, hi := s.Range()
	assert.Equal(t, 100*time.Millisecond, lo)
	assert.Equal(t, 1000*time.Millisecond, hi)
}

func TestChaseRotates(t *testing.T) {
	clk := timer.NewManualClock(0)
	c := NewChase(6)
	c.Spacing = 3
	start(c, clk)
	buf := pixel.New(6)

	fx.Update(c, buf)
	assert.Equal(t, pixel.Buffer{pixel.Black, pixel.White, pixel.Black, pixel.Black, pixel.White, pixel.Black}, buf)

	fx.Update(c, buf)
	assert.Equal(t, pixel.White, buf[2])
	assert.Equal(t, pixel.White, buf[5])

	c.SetMovement(fx.MoveBackward)
	fx.Update(c, buf)
	assert.Equal(t, pixel.White, buf[1])
	assert.Equal(t, pixel.White, buf[4])
}

func TestRainbowTurnsHue(t *testing.T) {
	clk := timer.NewManualClock(0)
	r := NewRainbow(8)
	start(r, clk)
	buf := pixel.New(8)

	fx.Update(r, buf)
	first := buf[0]
	assert.Equal(t, pixel.Red, first)
	assert.NotEqual(t, buf[0], buf[4])

	fx.Update(r, buf)
	assert.NotEqual(t, first, buf[0])
}

func TestPaletteSpreadsColors(t *testing.T) {
	clk := timer.NewManualClock(0)
	p := NewPalette(16)
	start(p, clk)
	buf := pixel.New(16)
	fx.Update(p, buf)
	assert.NotEqual(t, buf[0], buf[8])

	prev := buf.Clone()
	fx.Update(p, buf)
	assert.Equal(t, prev[1], buf[0], "scrolled by one")
}

func TestPulseSwellsAndCompletes(t *testing.T) {
	clk := timer.NewManualClock(0)
	p := NewPulse(2)
	start(p, clk)
	buf := pixel.New(2)

	var peak uint8
	ticks := 0
	for !p.IsDone() && ticks < 500 {
		fx.Update(p, buf)
		peak = max(peak, p.Alpha[0])
		ticks++
	}
	require.True(t, p.IsDone())
	assert.Equal(t, pulseSteps, ticks)
	assert.Greater(t, peak, uint8(200))
	assert.Equal(t, uint8(240), p.MaxAlpha)
	assert.Equal(t, pixel.White, buf[0])
}

func TestRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"calibrate", "calibrate_rgb", "chase", "palette", "pulse", "rainbow", "solid"}, r.List())

	e, err := r.New("solid", 4)
	require.NoError(t, err)
	assert.Equal(t, "Solid", e.FX().Name())
	assert.Equal(t, 4, e.FX().Size())

	_, err = r.New("nope", 4)
	assert.Error(t, err)

	o, err := r.NewOverlay("pulse", 4)
	require.NoError(t, err)
	assert.Len(t, o.Layer().Alpha, 4)

	_, err = r.NewOverlay("solid", 4)
	assert.Error(t, err)
}

func TestCalibrateSweepsAndCyclesChannels(t *testing.T) {
	clk := timer.NewManualClock(0)
	c := NewCalibrate(3)
	start(c, clk)
	buf := pixel.New(3)

	for i := 0; i < 3; i++ {
		fx.Update(c, buf)
		for j := range buf {
			if j == i {
				assert.Equal(t, pixel.White, buf[j])
			} else {
				assert.True(t, buf[j].IsBlack(), "pixel %d on step %d", j, i)
			}
		}
	}
	assert.Equal(t, uint32(1), c.Cycle())

	require.True(t, c.SetMode(RGBChannels))
	assert.False(t, c.SetMode(RGBChannels))
	assert.False(t, c.SetMode("plane_z"))
	for _, want := range []pixel.RGB{pixel.Red, pixel.Green, pixel.Blue, pixel.Red} {
		fx.Update(c, buf)
		assert.Equal(t, pixel.Buffer{want, want, want}, buf)
	}
}
