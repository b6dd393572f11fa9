package effects

import (
	"github.com/fogleman/ease"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

const pulseSteps = 64

// Pulse is an overlay that swells the whole segment toward its color and
// back, once per virtual cycle.
type Pulse struct {
	fx.Overlay
}

func NewPulse(size int) *Pulse {
	p := &Pulse{Overlay: fx.NewOverlay("Pulse", size, 200, 1)}
	p.MaxAlpha = 240
	p.SetMovement(fx.MoveStill)
	p.SetVCycleRange(pulseSteps)
	p.Color().SetRGB(pixel.White)
	return p
}

func (p *Pulse) WriteNextFrame(buf pixel.Buffer) {
	// triangle 0..1..0 across the cycle, eased at both ends
	x := float64(p.VPhase()-1) / float64(p.VCycleRange()-1)
	if x > 0.5 {
		x = 1 - x
	}
	level := uint8(ease.InOutQuad(x*2) * 255)
	for i := range p.Alpha {
		p.Alpha[i] = level
	}
	buf.Fill(p.Color().Peek())
	p.SetUpdated(true)
}
