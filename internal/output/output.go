// Package output holds the sinks a strip controller can flush frames to:
// an nrzled SPI strip, a terminal preview, an MQTT stream and an in-memory
// simulator.
package output

import (
	"errors"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// Output pushes frames to hardware.
type Output interface {
	Flush(frame pixel.Buffer) error
	SetGlobalBrightness(level uint8) error
}

// Closer is implemented by outputs holding a device or connection.
type Closer interface {
	Close() error
}

// Multi flushes to every output in order and joins their errors.
type Multi []Output

func (m Multi) Flush(frame pixel.Buffer) error {
	var errs []error
	for _, o := range m {
		if err := o.Flush(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SetGlobalBrightness(level uint8) error {
	var errs []error
	for _, o := range m {
		if err := o.SetGlobalBrightness(level); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, o := range m {
		if c, ok := o.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Sim keeps the last frame in memory and logs a compact summary of each
// one (average and first pixel), useful for headless runs and tests.
type Sim struct {
	mu    sync.Mutex
	count int
	level uint8
	last  pixel.Buffer
	Quiet bool
}

func NewSim() *Sim { return &Sim{level: 255} }

func (s *Sim) Flush(frame pixel.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.last = scaled(s.last, frame, s.level)

	if s.Quiet || len(frame) == 0 {
		return nil
	}
	var r, g, b int
	for _, px := range s.last {
		r += int(px.R)
		g += int(px.G)
		b += int(px.B)
	}
	n := len(s.last)
	log.Trace().
		Int("frame", s.count).
		Ints("avg", []int{r / n, g / n, b / n}).
		Str("first", hexRGB(s.last[0])).
		Msg("sim frame")
	return nil
}

func (s *Sim) SetGlobalBrightness(level uint8) error {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
	return nil
}

// Frame returns a copy of the last frame flushed, brightness applied.
func (s *Sim) Frame() pixel.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone()
}

func (s *Sim) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func hexRGB(c pixel.RGB) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// scaled writes frame scaled by level into dst, growing it as needed.
func scaled(dst, frame pixel.Buffer, level uint8) pixel.Buffer {
	if len(dst) != len(frame) {
		dst = pixel.New(len(frame))
	}
	copy(dst, frame)
	dst.Scale(level)
	return dst
}
