package output

import (
	"sync"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Limiter keeps a frame inside a power budget in two stages:
//  1. white cap: per pixel, R+G+B is scaled down to at most WhiteCap
//  2. budget: the estimated strip current is scaled to stay under BudgetMA,
//     easing in from Knee*BudgetMA
//
// Zero fields disable their stage (ChanMA and Knee fall back to defaults).
type Limiter struct {
	WhiteCap int
	ChanMA   float64
	BudgetMA float64
	Knee     float64
}

const (
	DefaultChanMA = 20.0
	DefaultKnee   = 0.9
)

func (l Limiter) chanMA() float64 {
	if l.ChanMA > 0 {
		return l.ChanMA
	}
	return DefaultChanMA
}

func (l Limiter) knee() float64 {
	if l.Knee > 0 && l.Knee < 1 {
		return l.Knee
	}
	return DefaultKnee
}

// Current estimates what buf draws in mA.
func (l Limiter) Current(buf pixel.Buffer) float64 {
	var sum int
	for _, px := range buf {
		sum += int(px.R) + int(px.G) + int(px.B)
	}
	return float64(sum) / 255 * l.chanMA()
}

func (l Limiter) Apply(buf pixel.Buffer) {
	if l.WhiteCap > 0 && l.WhiteCap < 3*255 {
		wc := float64(l.WhiteCap)
		for i, px := range buf {
			s := int(px.R) + int(px.G) + int(px.B)
			if s > l.WhiteCap {
				buf[i] = scaleRGB(px, wc/float64(s))
			}
		}
	}

	if l.BudgetMA <= 0 {
		return
	}
	total := l.Current(buf)
	if total <= 0 {
		return
	}
	ratio := total / l.BudgetMA
	knee := l.knee()
	if ratio <= knee {
		return
	}
	s := l.BudgetMA / total
	if ratio <= 1 {
		// ease from 1 at the knee down to budget/total at the budget
		t := (ratio - knee) / (1 - knee)
		s = 1 - t*(1-s)
	}
	for i, px := range buf {
		buf[i] = scaleRGB(px, s)
	}
}

func scaleRGB(c pixel.RGB, s float64) pixel.RGB {
	if s >= 1 {
		return c
	}
	return pixel.RGB{R: uint8(float64(c.R) * s), G: uint8(float64(c.G) * s), B: uint8(float64(c.B) * s)}
}

// Limited runs every frame through a Limiter before handing it on.
type Limited struct {
	Output
	Limiter Limiter

	mu      sync.Mutex
	scratch pixel.Buffer
}

func NewLimited(out Output, l Limiter) *Limited {
	return &Limited{Output: out, Limiter: l}
}

func (l *Limited) Flush(frame pixel.Buffer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scratch = scaled(l.scratch, frame, 255)
	l.Limiter.Apply(l.scratch)
	return l.Output.Flush(l.scratch)
}

func (l *Limited) Close() error {
	if c, ok := l.Output.(Closer); ok {
		return c.Close()
	}
	return nil
}
