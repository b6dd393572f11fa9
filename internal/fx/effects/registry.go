package effects

import (
	"fmt"
	"sort"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
)

// Constructor builds an effect sized for a segment.
type Constructor func(size int) fx.Effect

type Registry struct{ m map[string]Constructor }

func NewRegistry() *Registry { return &Registry{m: map[string]Constructor{}} }

// Default returns a registry holding every stock effect.
func Default() *Registry {
	r := NewRegistry()
	r.Register("solid", func(n int) fx.Effect { return NewSolid(n) })
	r.Register("palette", func(n int) fx.Effect { return NewPalette(n) })
	r.Register("rainbow", func(n int) fx.Effect { return NewRainbow(n) })
	r.Register("chase", func(n int) fx.Effect { return NewChase(n) })
	r.Register("pulse", func(n int) fx.Effect { return NewPulse(n) })
	r.Register("calibrate", func(n int) fx.Effect { return NewCalibrate(n) })
	r.Register("calibrate_rgb", func(n int) fx.Effect {
		c := NewCalibrate(n)
		c.SetMode(RGBChannels)
		return c
	})
	return r
}

func (r *Registry) Register(name string, c Constructor) {
	if c == nil {
		return
	}
	r.m[name] = c
}

func (r *Registry) Get(name string) (Constructor, bool) { c, ok := r.m[name]; return c, ok }

// New builds the named effect.
func (r *Registry) New(name string, size int) (fx.Effect, error) {
	c, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("effect not found: %s", name)
	}
	return c(size), nil
}

// NewOverlay builds the named effect and checks it can be layered.
func (r *Registry) NewOverlay(name string, size int) (fx.OverlayEffect, error) {
	e, err := r.New(name, size)
	if err != nil {
		return nil, err
	}
	o, ok := e.(fx.OverlayEffect)
	if !ok {
		return nil, fmt.Errorf("effect %s is not an overlay", name)
	}
	return o, nil
}

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
