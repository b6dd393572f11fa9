// Command seqsim plays a configured sequence headless against a simulated
// strip on a manual clock, as fast as the CPU allows, and logs what the
// strip shows once per simulated second.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-ledfx/internal/app"
	"github.com/coreman2200/funtimes-ledfx/internal/config"
	"github.com/coreman2200/funtimes-ledfx/internal/output"
	"github.com/coreman2200/funtimes-ledfx/internal/sequence"
	"github.com/coreman2200/funtimes-ledfx/internal/strip"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "strip config (segments, palettes, sequence)")
		programPath = flag.String("program", "", "optional program YAML; replaces the config's sequence")
		fps         = flag.Int("fps", 60, "simulation frames per second")
		maxSeconds  = flag.Float64("seconds", 60, "stop after this much simulated time")
		events      = flag.Bool("events", false, "log every fx event")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *events {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *programPath != "" {
		prog, err := loadProgram(*programPath)
		if err != nil {
			log.Fatal().Err(err).Msg("read program")
		}
		cfg.Sequence = prog
	}
	if cfg.Sequence == nil {
		log.Fatal().Msg("no sequence: provide -program or a config with a sequence")
	}
	if *fps <= 0 {
		*fps = 60
	}

	clock := timer.NewManualClock(0)
	sim := output.NewSim()
	sim.Quiet = true
	a, err := app.Build(cfg, sim, strip.LogSink{}, strip.WithClock(clock))
	if err != nil {
		log.Fatal().Err(err).Msg("build strip")
	}

	dt := time.Second / time.Duration(*fps)
	steps := int(*maxSeconds * float64(*fps))
	for i := 1; i <= steps; i++ {
		clock.Advance(dt)
		if _, err := a.Step(dt.Seconds()); err != nil {
			log.Warn().Err(err).Msg("flush")
		}
		if i%*fps == 0 {
			report(a, sim)
		}
		if a.Seq.State == sequence.Idle {
			break
		}
	}
	t, _ := a.Seq.Position()
	log.Info().Float64("t", t).Uint64("frames", a.Frames()).Int("flushes", sim.Count()).Msg("done")
}

func report(a *app.App, sim *output.Sim) {
	t, idx := a.Seq.Position()
	ev := log.Info().Float64("t", t).Int("clip", idx)
	for _, s := range a.Ctl.Segments() {
		ev = ev.Str(s.Tag(), s.FX().FX().Name())
	}
	frame := sim.Frame()
	var sum int
	for _, c := range frame {
		sum += int(c.R) + int(c.G) + int(c.B)
	}
	if len(frame) > 0 {
		ev = ev.Int("avg_luma", sum/(3*len(frame)))
	}
	ev.Msg("tick")
}

func loadProgram(path string) (*sequence.Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var prog sequence.Program
	if err := yaml.Unmarshal(b, &prog); err != nil {
		return nil, err
	}
	return &prog, nil
}
