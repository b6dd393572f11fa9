// Package app wires a strip controller, its segments and the sequence
// player from configuration and runs them at a fixed frame rate.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfx/internal/colors"
	"github.com/coreman2200/funtimes-ledfx/internal/config"
	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/fx/effects"
	"github.com/coreman2200/funtimes-ledfx/internal/sequence"
	"github.com/coreman2200/funtimes-ledfx/internal/strip"
	"github.com/coreman2200/funtimes-ledfx/internal/ws"
)

var ErrUnknownSegment = errors.New("unknown segment")

// App serializes every touch of the controller behind one mutex: the tick
// loop, the sequence player and remote commands.
type App struct {
	mu sync.Mutex

	Ctl      *strip.Controller
	Seq      *sequence.Player
	Effects  *effects.Registry
	Palettes *colors.Palettes

	frames uint64
	errs   zerolog.Logger
}

// Build creates the controller and segments described by cfg. Segments
// declared in config start fully opaque unless they set an opacity.
func Build(cfg *config.Config, out strip.Output, sink strip.Sink, opts ...strip.Option) (*App, error) {
	a := &App{
		Effects:  effects.Default(),
		Palettes: colors.DefaultPalettes(),
		errs:     log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 5 * time.Second}),
	}
	for name, hexes := range cfg.Palettes {
		if err := a.Palettes.AddHex(name, hexes); err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}
	}

	opts = append([]strip.Option{
		strip.WithSink(sink),
		strip.WithMinRefresh(time.Duration(cfg.MinRefreshMs) * time.Millisecond),
	}, opts...)
	a.Ctl = strip.NewController(out, cfg.LEDs, opts...)
	a.Ctl.SetCenterOffset(cfg.CenterOffset)
	if _, err := a.Ctl.SetGlobalBrightness(uint8(cfg.Brightness)); err != nil {
		log.Warn().Err(err).Msg("set global brightness")
	}

	for _, sc := range cfg.Segments {
		if err := a.addSegment(sc); err != nil {
			return nil, err
		}
	}

	a.Seq = sequence.NewPlayer(sequence.Hooks{
		StartClip: a.startClip,
		SetParam:  a.setParam,
		SetBool:   a.setBool,
		Done:      func() { log.Info().Msg("sequence finished") },
	})
	if cfg.Sequence != nil {
		if err := a.Seq.Load(*cfg.Sequence); err != nil {
			return nil, fmt.Errorf("sequence: %w", err)
		}
		a.Seq.Start()
	}
	return a, nil
}

func (a *App) addSegment(sc config.Segment) error {
	var e fx.Effect
	if sc.Effect != "" {
		n := sc.End - sc.Start + 1
		if sc.Tag == strip.PrimaryTag {
			n = a.Ctl.Len()
		}
		var err error
		if e, err = a.Effects.New(sc.Effect, n); err != nil {
			return fmt.Errorf("segment %s: %w", sc.Tag, err)
		}
	}

	var seg *strip.Segment
	if sc.Tag == strip.PrimaryTag {
		seg = a.Ctl.Primary()
		if e != nil {
			seg.SetFX(e)
		}
	} else {
		seg = a.Ctl.AddSegment(sc.Tag, sc.Start, sc.End, e)
		seg.SetOpacity(255)
	}

	base := seg.FX().FX()
	if sc.Speed != nil {
		base.SetSpeed(clamp8(*sc.Speed))
	}
	if sc.Movement != "" {
		m, ok := fx.ParseMovement(sc.Movement)
		if !ok {
			return fmt.Errorf("segment %s: unknown movement %q", sc.Tag, sc.Movement)
		}
		base.SetMovement(m)
	}
	if err := a.paint(base, sc.Color, sc.Palette); err != nil {
		return fmt.Errorf("segment %s: %w", sc.Tag, err)
	}
	if sc.Brightness != nil {
		seg.SetBrightness(clamp8(*sc.Brightness))
	}
	if sc.Opacity != nil {
		seg.SetOpacity(clamp8(*sc.Opacity))
	}
	if sc.CrossFade != nil {
		seg.SetCrossFade(*sc.CrossFade)
	}
	return nil
}

func (a *App) paint(base *fx.Base, color, palette string) error {
	if color != "" {
		c, err := colors.ParseHex(color)
		if err != nil {
			return err
		}
		base.SetRGB(c)
	}
	if palette != "" {
		p, ok := a.Palettes.Get(palette)
		if !ok {
			return fmt.Errorf("unknown palette %q", palette)
		}
		base.SetPalette(p)
	}
	return nil
}

func clamp8(v int) uint8 {
	return uint8(min(max(v, 0), 255))
}

func (a *App) startClip(c sequence.Clip) {
	seg := a.Ctl.SegmentOrPrimary(c.Segment)
	if c.Effect != "" {
		e, err := a.Effects.New(c.Effect, seg.Len())
		if err != nil {
			log.Warn().Err(err).Str("clip", c.Name).Msg("clip effect")
		} else {
			seg.SetFX(e)
		}
	}
	if err := a.paint(seg.FX().FX(), c.Color, c.Palette); err != nil {
		log.Warn().Err(err).Str("clip", c.Name).Msg("clip colors")
	}
	if c.Overlay != "" {
		o, err := a.Effects.NewOverlay(c.Overlay, seg.Len())
		if err != nil {
			log.Warn().Err(err).Str("clip", c.Name).Msg("clip overlay")
			return
		}
		seg.SetOverlay(o)
	}
}

func (a *App) setParam(segment, name string, v float64) {
	seg := a.Ctl.SegmentOrPrimary(segment)
	level := clamp8(int(v + 0.5))
	switch name {
	case "brightness":
		seg.SetBrightness(level)
	case "opacity":
		seg.SetOpacity(level)
	case "speed":
		seg.FX().FX().SetSpeed(level)
	case "global_brightness":
		if _, err := a.Ctl.SetGlobalBrightness(level); err != nil {
			a.errs.Warn().Err(err).Msg("global brightness")
		}
	default:
		a.errs.Debug().Str("param", name).Msg("unknown sequence param")
	}
}

func (a *App) setBool(segment, name string, b bool) {
	seg := a.Ctl.SegmentOrPrimary(segment)
	switch name {
	case "crossfade":
		seg.SetCrossFade(b)
	case "pause":
		if b {
			seg.Pause()
		} else {
			seg.Resume()
		}
	default:
		a.errs.Debug().Str("param", name).Msg("unknown sequence switch")
	}
}

// Apply executes a remote command. Unlike the sequence player, commands
// must name an existing segment (or none, for the primary).
func (a *App) Apply(cmd ws.Command) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	seg := a.Ctl.Primary()
	if cmd.Segment != "" {
		s, ok := a.Ctl.Segment(cmd.Segment)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSegment, cmd.Segment)
		}
		seg = s
	}
	if cmd.Effect != "" {
		e, err := a.Effects.New(cmd.Effect, seg.Len())
		if err != nil {
			return err
		}
		seg.SetFX(e)
	}
	if err := a.paint(seg.FX().FX(), cmd.Color, cmd.Palette); err != nil {
		return err
	}
	if cmd.Overlay != "" {
		o, err := a.Effects.NewOverlay(cmd.Overlay, seg.Len())
		if err != nil {
			return err
		}
		seg.SetOverlay(o)
	}
	if cmd.Speed != nil {
		seg.FX().FX().SetSpeed(clamp8(*cmd.Speed))
	}
	if cmd.Brightness != nil {
		seg.SetBrightness(clamp8(*cmd.Brightness))
	}
	if cmd.Opacity != nil {
		seg.SetOpacity(clamp8(*cmd.Opacity))
	}
	if cmd.Pause != nil {
		if *cmd.Pause {
			seg.Pause()
		} else {
			seg.Resume()
		}
	}
	if cmd.Global != nil {
		if _, err := a.Ctl.SetGlobalBrightness(clamp8(*cmd.Global)); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the sequence by dt seconds and renders one tick.
func (a *App) Step(dt float64) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Seq.Tick(dt)
	shown, err := a.Ctl.Update()
	if shown {
		a.frames++
	}
	return shown, err
}

// Frames is the number of frames pushed by Step.
func (a *App) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Health reports engine state for the preview server's /health.
func (a *App) Health() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	segs := []string{}
	for _, s := range a.Ctl.Segments() {
		segs = append(segs, s.Tag())
	}
	return map[string]any{
		"segments":   segs,
		"sequence":   a.Seq.State,
		"shows":      a.Ctl.ShowCount(),
		"brightness": a.Ctl.GlobalBrightness(),
		"effects":    a.Effects.List(),
	}
}

// Run ticks at fps until ctx is cancelled. Output errors are logged
// (sampled) and the loop carries on.
func (a *App) Run(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if _, err := a.Step(dt); err != nil {
				a.errs.Warn().Err(err).Msg("flush")
			}
		}
	}
}
