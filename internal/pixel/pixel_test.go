package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFadeToBlackBy(t *testing.T) {
	b := New(3)
	b.Fill(Red)
	b.FadeToBlackBy(0)
	assert.Equal(t, Red, b[0])

	b.FadeToBlackBy(255)
	for _, p := range b {
		assert.True(t, p.IsBlack())
	}
}

func TestNBlendExactEnds(t *testing.T) {
	dst := Buffer{Red, Red}
	over := Buffer{Blue, Blue}

	NBlend(dst, over, 0)
	assert.Equal(t, Buffer{Red, Red}, dst)

	NBlend(dst, over, 255)
	assert.Equal(t, Buffer{Blue, Blue}, dst)
}

func TestNBlendMidpoint(t *testing.T) {
	dst := Buffer{Red}
	NBlend(dst, Buffer{Blue}, 128)
	assert.InDelta(t, 127, int(dst[0].R), 1)
	assert.InDelta(t, 128, int(dst[0].B), 1)
}

func TestCurveEndpoints(t *testing.T) {
	for _, f := range []FadeType{FadeLinear, FadeGamma, FadeCubic} {
		assert.Equal(t, uint8(0), Curve(0, f), f.String())
		assert.Equal(t, uint8(255), Curve(255, f), f.String())
	}
	assert.Less(t, Curve(64, FadeGamma), uint8(64))
	assert.Less(t, Curve(64, FadeCubic), uint8(64))
}

func TestRotate(t *testing.T) {
	b := Buffer{{R: 1}, {R: 2}, {R: 3}, {R: 4}}
	RotateForward(b, 1)
	assert.Equal(t, Buffer{{R: 4}, {R: 1}, {R: 2}, {R: 3}}, b)

	RotateBackward(b, 1)
	assert.Equal(t, Buffer{{R: 1}, {R: 2}, {R: 3}, {R: 4}}, b)

	RotateForward(b, 6)
	assert.Equal(t, Buffer{{R: 3}, {R: 4}, {R: 1}, {R: 2}}, b)
}

func TestBytesAndLuma(t *testing.T) {
	b := Buffer{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, b.Bytes())
	assert.Equal(t, uint8(0), Black.Luma())
	assert.Greater(t, Green.Luma(), Red.Luma())
}

func TestSame(t *testing.T) {
	b := New(4)
	assert.True(t, b.Same(b[:2]))
	assert.False(t, b.Same(b.Clone()))
	assert.False(t, Buffer(nil).Same(b))
}
