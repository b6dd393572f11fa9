package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-ledfx/internal/app"
	"github.com/coreman2200/funtimes-ledfx/internal/config"
	"github.com/coreman2200/funtimes-ledfx/internal/output"
	"github.com/coreman2200/funtimes-ledfx/internal/strip"
	"github.com/coreman2200/funtimes-ledfx/internal/ws"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		leds       = flag.Int("leds", 60, "number of pixels on the strip")
		fps        = flag.Int("fps", 60, "target frames per second")
		brightness = flag.Int("brightness", 255, "global brightness 0..255")
		driver     = flag.String("driver", "sim", "driver: sim | spi | screen | mqtt")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		verbose    = flag.Bool("v", false, "log every fx event")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = config.Default()
		cfg.LEDs = *leds
		cfg.FPS = *fps
		cfg.Brightness = *brightness
		cfg.Driver = *driver
		cfg.Preview.Addr = *addr
	}
	if *simOnly {
		cfg.Driver = "sim"
	}

	// ---- Output selection, falling back to SIM ----
	hw, selected := openOutput(cfg)
	var out output.Output = hw
	if cfg.Power.LimitAmps > 0 || cfg.Power.WhiteCap > 0 {
		out = output.NewLimited(hw, output.Limiter{
			WhiteCap: cfg.Power.WhiteCap,
			ChanMA:   cfg.Power.ChanMA,
			BudgetMA: cfg.Power.LimitAmps * 1000,
		})
	}

	hub := ws.NewHub()
	a, err := app.Build(cfg, output.Multi{out, hub}, strip.MultiSink{strip.LogSink{}, hub})
	if err != nil {
		log.Fatal().Err(err).Msg("build strip")
	}
	hub.OnCommand = a.Apply
	hub.Info = func() map[string]any {
		info := a.Health()
		info["driver"] = selected
		info["fps"] = cfg.FPS
		return info
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	hub.Routes(mux)

	listen := cfg.Preview.Addr
	if listen == "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr:         listen,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx, cfg.FPS)
	go func() {
		log.Info().Str("addr", listen).Str("driver", selected).Int("leds", cfg.LEDs).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Uint64("frames", a.Frames()).Msg("shutting down")

	cancel()
	_ = srv.Close()
	if c, ok := hw.(output.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close output")
		}
	}
}

// openOutput builds the configured hardware output. Any failure logs and
// falls back to the simulator so the preview keeps working.
func openOutput(cfg *config.Config) (output.Output, string) {
	switch cfg.Driver {
	case "sim":
		return output.NewSim(), "sim"

	case "spi":
		d, err := output.OpenSPI(output.SPIConfig{
			Dev:        cfg.SPI.Dev,
			Freq:       physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz,
			NumPixels:  cfg.LEDs,
			ColorOrder: cfg.ColorOrder,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("dev", cfg.SPI.Dev).
				Int("speed_hz", cfg.SPI.SpeedHz).
				Msg("SPI init failed; falling back to SIM")
			return output.NewSim(), "sim"
		}
		return d, "spi"

	case "screen":
		return output.NewConsole(cfg.LEDs), "screen"

	case "mqtt":
		client, err := output.DialMQTT(output.MQTTConfig{
			URL:      cfg.MQTT.URL,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			QoS:      cfg.MQTT.QoS,
		})
		if err != nil {
			log.Warn().Err(err).Str("driver", "mqtt").Str("url", cfg.MQTT.URL).Msg("MQTT connect failed; falling back to SIM")
			return output.NewSim(), "sim"
		}
		return output.NewMQTT(client, cfg.MQTT.Topic, cfg.MQTT.QoS), "mqtt"

	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		return output.NewSim(), "sim"
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
