package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapEndpoints(t *testing.T) {
	assert.Equal(t, int64(1), Map(0, 0, 255, 1, 5000))
	assert.Equal(t, int64(5000), Map(255, 0, 255, 1, 5000))
	assert.Equal(t, int64(0), Map(1, 1, 5000, 0, 255))
	assert.Equal(t, int64(255), Map(5000, 1, 5000, 0, 255))
	assert.Equal(t, int64(7), Map(3, 3, 3, 7, 9), "empty input range maps to outMin")
}

func TestMapDescending(t *testing.T) {
	assert.Equal(t, int64(255), Map(0, 0, 500, 255, 0))
	mid := Map(250, 0, 500, 255, 0)
	assert.True(t, mid > 100 && mid < 160, "midpoint %d", mid)
	assert.True(t, Map(400, 0, 500, 255, 0) < mid)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 2, AddWrap(14, 4, 15))
	assert.Equal(t, 15, AddWrap(14, 1, 15))
	assert.Equal(t, 0, AddWrap(15, 1, 15))
	assert.Equal(t, 13, SubWrap(1, 4, 15))
	assert.Equal(t, 0, SubWrap(4, 4, 15))
	assert.Equal(t, 0, AddWrap(3, 3, -1))
}

func TestScaleAndBlendExact(t *testing.T) {
	for _, v := range []uint8{0, 1, 127, 200, 255} {
		assert.Equal(t, v, Scale8(v, 255))
		assert.Equal(t, uint8(0), Scale8(v, 0))
		assert.Equal(t, v, Blend8(v, 33, 0))
		assert.Equal(t, uint8(33), Blend8(v, 33, 255))
	}
	half := Blend8(0, 255, 128)
	assert.InDelta(t, 128, int(half), 1)
}

func TestClampAndMirror(t *testing.T) {
	assert.Equal(t, uint8(0), Clamp8(-4))
	assert.Equal(t, uint8(255), Clamp8(300))
	assert.Equal(t, uint8(12), Clamp8(12))
	assert.Equal(t, 9, Mirror(0, 10))
	assert.Equal(t, 0, Mirror(9, 10))
}
