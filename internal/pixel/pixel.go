// Package pixel defines the 8-bit RGB pixel and the buffer operations the
// compositing pipeline is built from.
package pixel

import "github.com/coreman2200/funtimes-ledfx/internal/fixed"

type RGB struct{ R, G, B uint8 }

var (
	Black = RGB{}
	White = RGB{255, 255, 255}
	Red   = RGB{R: 255}
	Green = RGB{G: 255}
	Blue  = RGB{B: 255}
)

func (c RGB) IsBlack() bool { return c == Black }

// Scale multiplies every channel by s/255.
func (c RGB) Scale(s uint8) RGB {
	return RGB{fixed.Scale8(c.R, s), fixed.Scale8(c.G, s), fixed.Scale8(c.B, s)}
}

// FadeToBlackBy dims by amt; 0 leaves the color alone, 255 yields black.
func (c RGB) FadeToBlackBy(amt uint8) RGB { return c.Scale(255 - amt) }

// Blend moves c toward o by amt/255, exact at both ends.
func (c RGB) Blend(o RGB, amt uint8) RGB {
	return RGB{fixed.Blend8(c.R, o.R, amt), fixed.Blend8(c.G, o.G, amt), fixed.Blend8(c.B, o.B, amt)}
}

// Luma is the perceived brightness (Rec. 709 weights in 8-bit fixed point).
func (c RGB) Luma() uint8 {
	return uint8((uint16(c.R)*54 + uint16(c.G)*183 + uint16(c.B)*18) >> 8)
}

// Buffer is a run of pixels. Sub-views are plain reslices of the owner's buffer.
type Buffer []RGB

func New(n int) Buffer {
	if n < 0 {
		n = 0
	}
	return make(Buffer, n)
}

// Clone returns an owned copy.
func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}

func (b Buffer) Fill(c RGB) {
	for i := range b {
		b[i] = c
	}
}

func (b Buffer) Clear() { b.Fill(Black) }

func (b Buffer) FadeToBlackBy(amt uint8) {
	if amt == 0 {
		return
	}
	for i := range b {
		b[i] = b[i].FadeToBlackBy(amt)
	}
}

func (b Buffer) Scale(s uint8) {
	if s == 255 {
		return
	}
	for i := range b {
		b[i] = b[i].Scale(s)
	}
}

func (b Buffer) Equal(o Buffer) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

// Same reports whether both buffers view the same backing storage.
func (b Buffer) Same(o Buffer) bool {
	return len(b) > 0 && len(o) > 0 && &b[0] == &o[0]
}

// Bytes flattens the buffer into RGB triples.
func (b Buffer) Bytes() []byte {
	out := make([]byte, 0, len(b)*3)
	for _, p := range b {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}

// NBlend blends overlay into dst in place, amt being the overlay's weight.
func NBlend(dst, overlay Buffer, amt uint8) {
	if amt == 0 {
		return
	}
	n := min(len(dst), len(overlay))
	if amt == 255 {
		copy(dst[:n], overlay[:n])
		return
	}
	for i := 0; i < n; i++ {
		dst[i] = dst[i].Blend(overlay[i], amt)
	}
}

// Blend writes the mix of a and b into dst.
func Blend(dst, a, b Buffer, amt uint8, fade FadeType) {
	n := min(len(dst), len(a), len(b))
	for i := 0; i < n; i++ {
		dst[i] = AlphaBlend(a[i], b[i], amt, fade)
	}
}

// RotateForward shifts every pixel steps positions toward the end; pixels
// falling off the end reappear at the start.
func RotateForward(b Buffer, steps int) {
	n := len(b)
	if n == 0 {
		return
	}
	steps = fixed.AddWrap(0, steps, n-1)
	if steps == 0 {
		return
	}
	reverse(b)
	reverse(b[:steps])
	reverse(b[steps:])
}

// RotateBackward shifts every pixel steps positions toward the start.
func RotateBackward(b Buffer, steps int) {
	RotateForward(b, -steps)
}

func reverse(b Buffer) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
