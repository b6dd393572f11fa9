package sequence

import (
	"sort"

	"github.com/fogleman/ease"
)

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		return ease.InOutQuad(x)
	case "cubic":
		return ease.InOutCubic(x)
	case "sine":
		return ease.InOutSine(x)
	case "out":
		return ease.OutQuad(x)
	default:
		return x
	}
}

// Sort orders the keyframes by time.
func (e Envelope) Sort() {
	sort.SliceStable(e, func(i, j int) bool { return e[i].T < e[j].T })
}

// Eval returns the value of the envelope at time t (seconds).
// No keys yields 0; outside the keyed range the end values hold.
func (e Envelope) Eval(t float64) float64 {
	n := len(e)
	if n == 0 {
		return 0
	}
	if t <= e[0].T {
		return e[0].V
	}
	if t >= e[n-1].T {
		return e[n-1].V
	}
	i := sort.Search(n, func(i int) bool { return e[i].T > t }) - 1
	a, b := e[i], e[i+1]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := easeApply(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}

// BoolEval thresholds the envelope at 0.5.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}
