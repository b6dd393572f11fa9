// Package fixed holds the integer math shared by timers, faders and pixel
// blending. Everything here works on small unsigned ranges and never allocates.
package fixed

// Map linearly maps x from [inMin,inMax] onto [outMin,outMax] using integer
// math. When the input range is wider than the output range the output is
// widened by one step so the upper bound is reachable; this keeps
// speed<->interval conversions symmetric at both ends.
func Map(x, inMin, inMax, outMin, outMax int64) int64 {
	if inMax == inMin {
		return outMin
	}
	if inMax-inMin > outMax-outMin {
		return (x-inMin)*(outMax-outMin+1)/(inMax-inMin+1) + outMin
	}
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// AddWrap returns index+offset wrapped into [0,max].
func AddWrap(index, offset, max int) int {
	n := max + 1
	if n <= 0 {
		return 0
	}
	return ((index+offset)%n + n) % n
}

// SubWrap returns index-offset wrapped into [0,max].
func SubWrap(index, offset, max int) int {
	return AddWrap(index, -offset, max)
}

// Scale8 scales i by s/256 with the "fixed" rounding so Scale8(255, 255) == 255
// and Scale8(x, 0) == 0.
func Scale8(i, s uint8) uint8 {
	return uint8((uint16(i) * (1 + uint16(s))) >> 8)
}

// Blend8 mixes a toward b by amt/255. Both ends are exact: amt 0 yields a,
// amt 255 yields b.
func Blend8(a, b, amt uint8) uint8 {
	partial := uint16(a)<<8 | uint16(b)
	partial += uint16(b) * uint16(amt)
	partial -= uint16(a) * uint16(amt)
	return uint8(partial >> 8)
}

// Clamp8 clamps v into the uint8 range.
func Clamp8(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Mirror returns the index reflected inside a run of n positions.
func Mirror(i, n int) int {
	return n - 1 - i
}
