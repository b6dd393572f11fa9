package strip

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Output is the physical side of the strip.
type Output interface {
	// Flush pushes the frame to the hardware.
	Flush(frame pixel.Buffer) error
	// SetGlobalBrightness scales output below the software dimmers.
	SetGlobalBrightness(level uint8) error
}

// Sink receives every event raised by segments and their effects. Calls are
// synchronous, from inside Controller.Update or the setter that caused them.
type Sink interface {
	OnFXEvent(tag string, kind fx.EventKind, name string)
	OnFXStateChange(s *Segment)
}

// LogSink writes events to zerolog. A nil Logger means the global logger.
type LogSink struct {
	Logger *zerolog.Logger
}

func (l LogSink) logger() *zerolog.Logger {
	if l.Logger == nil {
		return &log.Logger
	}
	return l.Logger
}

func (l LogSink) OnFXEvent(tag string, kind fx.EventKind, name string) {
	ev := l.logger().Debug()
	if kind == fx.EventLog {
		ev = l.logger().Info()
	}
	ev.Str("segment", tag).Stringer("event", kind).Str("name", name).Msg("fx event")
}

func (l LogSink) OnFXStateChange(s *Segment) {
	l.logger().Debug().
		Str("segment", s.Tag()).
		Str("effect", s.FX().FX().Name()).
		Uint8("brightness", s.Brightness()).
		Uint8("opacity", s.Opacity()).
		Bool("visible", s.IsVisible()).
		Msg("fx state")
}

// MultiSink fans events out in order.
type MultiSink []Sink

func (m MultiSink) OnFXEvent(tag string, kind fx.EventKind, name string) {
	for _, s := range m {
		s.OnFXEvent(tag, kind, name)
	}
}

func (m MultiSink) OnFXStateChange(seg *Segment) {
	for _, s := range m {
		s.OnFXStateChange(seg)
	}
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) OnFXEvent(string, fx.EventKind, string) {}
func (NopSink) OnFXStateChange(*Segment)               {}
