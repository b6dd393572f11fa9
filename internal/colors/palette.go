package colors

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Palette16 is a 16 entry palette sampled with linear blending between
// neighbouring entries, giving 256 addressable colors.
type Palette16 [16]pixel.RGB

// At samples the palette at a 0..255 index.
func (p Palette16) At(index uint8) pixel.RGB {
	hi, lo := index>>4, index&0x0F
	c := p[hi]
	if lo == 0 {
		return c
	}
	return c.Blend(p[(hi+1)&0x0F], lo<<4)
}

// Expand renders the palette into 256 discrete entries.
func (p Palette16) Expand() Palette256 {
	var out Palette256
	for i := range out {
		out[i] = p.At(uint8(i))
	}
	return out
}

// Palette256 is a fully expanded palette.
type Palette256 [256]pixel.RGB

func (p *Palette256) At(index uint8) pixel.RGB { return p[index] }

// Stop anchors a gradient color at a 0..255 position.
type Stop struct {
	Pos   uint8
	Color pixel.RGB
}

// Gradient builds a palette by interpolating between stops in RGB space.
// Stops must be sorted by Pos.
func Gradient(stops ...Stop) Palette16 {
	var p Palette16
	if len(stops) == 0 {
		return p
	}
	for i := range p {
		pos := uint8(i * 255 / 15)
		p[i] = sampleStops(stops, pos)
	}
	return p
}

func sampleStops(stops []Stop, pos uint8) pixel.RGB {
	if pos <= stops[0].Pos {
		return stops[0].Color
	}
	for i := 0; i < len(stops)-1; i++ {
		a, b := stops[i], stops[i+1]
		if pos >= a.Pos && pos <= b.Pos {
			if b.Pos == a.Pos {
				return b.Color
			}
			t := float64(pos-a.Pos) / float64(b.Pos-a.Pos)
			return fromColorful(toColorful(a.Color).BlendRgb(toColorful(b.Color), t))
		}
	}
	return stops[len(stops)-1].Color
}

func toColorful(c pixel.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) pixel.RGB {
	r, g, b := c.Clamped().RGB255()
	return pixel.RGB{R: r, G: g, B: b}
}

// ParseHex parses "#rrggbb".
func ParseHex(s string) (pixel.RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return pixel.RGB{}, err
	}
	return fromColorful(c), nil
}

// FromHex builds a palette from hex colors. Sixteen colors are taken
// verbatim; any other count is spread evenly as gradient stops.
func FromHex(hexes ...string) (Palette16, error) {
	if len(hexes) == 0 {
		return Palette16{}, fmt.Errorf("empty palette")
	}
	cols := make([]pixel.RGB, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return Palette16{}, fmt.Errorf("color %d: %w", i, err)
		}
		cols[i] = c
	}
	if len(cols) == 16 {
		var p Palette16
		copy(p[:], cols)
		return p, nil
	}
	if len(cols) == 1 {
		var p Palette16
		for i := range p {
			p[i] = cols[0]
		}
		return p, nil
	}
	stops := make([]Stop, len(cols))
	for i, c := range cols {
		stops[i] = Stop{Pos: uint8(i * 255 / (len(cols) - 1)), Color: c}
	}
	return Gradient(stops...), nil
}

func mustHex(hexes ...string) Palette16 {
	p, err := FromHex(hexes...)
	if err != nil {
		panic(err)
	}
	return p
}
