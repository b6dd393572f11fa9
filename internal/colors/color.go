// Package colors holds the color state an effect draws with: a single RGB or
// HSV value, or a 16/256 entry palette walked by a step index and a shift
// offset.
package colors

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-ledfx/internal/fixed"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

type Mode int

const (
	SingleRGB Mode = iota
	SingleHSV
	Palette16Mode
	Palette256Mode
)

func (m Mode) String() string {
	switch m {
	case SingleRGB:
		return "rgb"
	case SingleHSV:
		return "hsv"
	case Palette16Mode:
		return "palette16"
	case Palette256Mode:
		return "palette256"
	}
	return "unknown"
}

// HSV with all components in 0..255; hue wraps around the color wheel.
type HSV struct{ H, S, V uint8 }

func (h HSV) RGB() pixel.RGB {
	return fromColorful(colorful.Hsv(float64(h.H)*360/256, float64(h.S)/255, float64(h.V)/255))
}

const MaxPaletteRange = 16

// Color is the color state of one effect. Reading it with Get clears the
// updated flag; Peek leaves it alone.
type Color struct {
	mode   Mode
	rgb    pixel.RGB
	hsv    HSV
	pal    Palette16
	pal256 *Palette256

	prange     int
	index      int
	offset     int
	stepDelta  int
	shiftDelta int

	updated bool
}

// New returns palette state over the rainbow palette, marked updated.
func New() Color {
	return Color{
		mode:      Palette16Mode,
		pal:       Rainbow,
		prange:    MaxPaletteRange,
		stepDelta: 1,
		updated:   true,
	}
}

func (c *Color) Mode() Mode { return c.mode }

func (c *Color) SetMode(m Mode) bool {
	if c.mode == m {
		return false
	}
	c.mode = m
	if m == Palette256Mode && c.pal256 == nil {
		exp := c.pal.Expand()
		c.pal256 = &exp
	}
	c.index = min(c.index, c.maxIndex())
	c.offset = min(c.offset, c.span()-1)
	c.updated = true
	return true
}

func (c *Color) SetRGB(v pixel.RGB) bool {
	if c.mode == SingleRGB && c.rgb == v {
		return false
	}
	c.rgb = v
	c.mode = SingleRGB
	c.updated = true
	return true
}

func (c *Color) SetHSV(v HSV) bool {
	if c.mode == SingleHSV && c.hsv == v {
		return false
	}
	c.hsv = v
	c.mode = SingleHSV
	c.updated = true
	return true
}

func (c *Color) HSV() HSV { return c.hsv }

// SetPalette switches to 16 entry palette mode.
func (c *Color) SetPalette(p Palette16) bool {
	if c.mode == Palette16Mode && c.pal == p {
		return false
	}
	c.pal = p
	c.pal256 = nil
	c.mode = Palette16Mode
	c.updated = true
	return true
}

// SetPalette256 switches to 256 entry palette mode.
func (c *Color) SetPalette256(p Palette256) {
	c.pal256 = &p
	c.mode = Palette256Mode
	c.updated = true
}

func (c *Color) Palette() Palette16 { return c.pal }

func (c *Color) PaletteRange() int {
	if c.prange == 0 {
		return MaxPaletteRange
	}
	return c.prange
}

// SetPaletteRange limits a 16 palette to its first r entries, clamped to 1..16.
func (c *Color) SetPaletteRange(r int) bool {
	r = max(1, min(r, MaxPaletteRange))
	if r == c.PaletteRange() {
		return false
	}
	c.prange = r
	c.index = min(c.index, c.maxIndex())
	c.offset = min(c.offset, c.span()-1)
	c.updated = true
	return true
}

// span is the count of addressable palette positions.
func (c *Color) span() int {
	if c.mode == Palette256Mode {
		return 256
	}
	return 16 * c.PaletteRange()
}

// maxIndex is the largest step index.
func (c *Color) maxIndex() int {
	switch c.mode {
	case Palette256Mode, SingleHSV:
		return 255
	case Palette16Mode:
		return c.PaletteRange() - 1
	}
	return 0
}

func (c *Color) scaleIndex(i int) int {
	if c.mode == Palette16Mode {
		return i * 16
	}
	return i
}

func (c *Color) Index() int  { return c.index }
func (c *Color) Offset() int { return c.offset }

func (c *Color) SetIndex(i int) {
	c.index = fixed.AddWrap(0, i, c.maxIndex())
	c.updated = true
}

func (c *Color) SetOffset(o int) {
	c.offset = fixed.AddWrap(0, o, c.span()-1)
	c.updated = true
}

func (c *Color) StepDelta() int  { return c.stepDelta }
func (c *Color) ShiftDelta() int { return c.shiftDelta }

func (c *Color) SetStepDelta(d int)  { c.stepDelta = d }
func (c *Color) SetShiftDelta(d int) { c.shiftDelta = d }

// Step advances the index by the step delta. In HSV mode it walks the hue.
func (c *Color) Step() {
	switch c.mode {
	case SingleRGB:
		return
	case SingleHSV:
		c.hsv.H = uint8(fixed.AddWrap(int(c.hsv.H), c.stepDelta, 255))
	default:
		c.index = fixed.AddWrap(c.index, c.stepDelta, c.maxIndex())
	}
	c.updated = true
}

// Shift rotates the palette offset by the shift delta.
func (c *Color) Shift() {
	if c.shiftDelta == 0 || (c.mode != Palette16Mode && c.mode != Palette256Mode) {
		return
	}
	c.offset = fixed.AddWrap(c.offset, c.shiftDelta, c.span()-1)
	c.updated = true
}

// RelativeIndex maps a step index to a palette position, including the shift.
func (c *Color) RelativeIndex(i int) int {
	return fixed.AddWrap(c.scaleIndex(i), c.offset, c.span()-1)
}

// At samples the palette at a raw 0..255 position, offset by the shift.
// Single color modes return their color.
func (c *Color) At(pos int) pixel.RGB {
	switch c.mode {
	case SingleRGB:
		return c.rgb
	case SingleHSV:
		return c.hsv.RGB()
	case Palette256Mode:
		return c.pal256.At(uint8(fixed.AddWrap(pos, c.offset, 255)))
	}
	return c.pal.At(uint8(fixed.AddWrap(pos, c.offset, c.span()-1)))
}

// Peek returns the current color without clearing the updated flag.
func (c *Color) Peek() pixel.RGB {
	switch c.mode {
	case SingleRGB:
		return c.rgb
	case SingleHSV:
		return c.hsv.RGB()
	case Palette256Mode:
		return c.pal256.At(uint8(c.RelativeIndex(c.index)))
	}
	return c.pal.At(uint8(c.RelativeIndex(c.index)))
}

// Get returns the current color and marks it consumed.
func (c *Color) Get() pixel.RGB {
	c.updated = false
	return c.Peek()
}

func (c *Color) IsUpdated() bool { return c.updated }

func (c *Color) SetUpdated(v bool) { c.updated = v }
