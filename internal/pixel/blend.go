package pixel

import (
	"math"

	"github.com/fogleman/ease"

	"github.com/coreman2200/funtimes-ledfx/internal/fixed"
)

// FadeType picks the curve an alpha value is shaped by before blending.
type FadeType int

const (
	FadeLinear FadeType = iota
	FadeGamma
	FadeCubic
)

func (f FadeType) String() string {
	switch f {
	case FadeGamma:
		return "gamma"
	case FadeCubic:
		return "cubic"
	default:
		return "linear"
	}
}

const gamma = 2.8

var gammaLUT [256]uint8

func init() {
	for i := range gammaLUT {
		gammaLUT[i] = uint8(math.Pow(float64(i)/255, gamma)*255 + 0.5)
	}
}

// Gamma8 applies the LED gamma curve to a single channel value.
func Gamma8(v uint8) uint8 { return gammaLUT[v] }

// Curve shapes alpha by the fade type. 0 and 255 map to themselves.
func Curve(alpha uint8, fade FadeType) uint8 {
	switch fade {
	case FadeGamma:
		return gammaLUT[alpha]
	case FadeCubic:
		return fixed.Clamp8(int64(math.Round(ease.InOutCubic(float64(alpha)/255) * 255)))
	default:
		return alpha
	}
}

// AlphaBlend mixes a toward b by alpha after shaping it with fade.
func AlphaBlend(a, b RGB, alpha uint8, fade FadeType) RGB {
	return a.Blend(b, Curve(alpha, fade))
}
