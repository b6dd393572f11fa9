package output

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// DefaultSPIFreq suits WS281x strips driven through nrzled.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// Drawer renders frames onto a one row periph display: an nrzled strip or
// the terminal screen.
type Drawer struct {
	mu     sync.Mutex
	d      display.Drawer
	img    *image.NRGBA
	order  [3]byte
	level  uint8
	closer func() error
}

// NewDrawer wraps d for a strip of n pixels. order permutes the channels
// before drawing ("RGB" when empty); nrzled already emits GRB on the wire.
func NewDrawer(d display.Drawer, n int, order string) (*Drawer, error) {
	o, err := parseOrder(order)
	if err != nil {
		return nil, err
	}
	return &Drawer{
		d:     d,
		img:   image.NewNRGBA(image.Rect(0, 0, n, 1)),
		order: o,
		level: 255,
	}, nil
}

func parseOrder(order string) ([3]byte, error) {
	if order == "" {
		return [3]byte{'R', 'G', 'B'}, nil
	}
	order = strings.ToUpper(order)
	if len(order) != 3 || !strings.ContainsRune(order, 'R') || !strings.ContainsRune(order, 'G') || !strings.ContainsRune(order, 'B') {
		return [3]byte{}, fmt.Errorf("invalid color order %q", order)
	}
	return [3]byte{order[0], order[1], order[2]}, nil
}

func (d *Drawer) pick(px color.NRGBA, ch byte) uint8 {
	switch ch {
	case 'R':
		return px.R
	case 'G':
		return px.G
	}
	return px.B
}

func (d *Drawer) Flush(frame pixel.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := min(len(frame), d.img.Rect.Dx())
	for i := 0; i < n; i++ {
		c := frame[i].Scale(d.level)
		px := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
		d.img.SetNRGBA(i, 0, color.NRGBA{
			R: d.pick(px, d.order[0]),
			G: d.pick(px, d.order[1]),
			B: d.pick(px, d.order[2]),
			A: 255,
		})
	}
	if err := d.d.Draw(d.d.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

func (d *Drawer) SetGlobalBrightness(level uint8) error {
	d.mu.Lock()
	d.level = level
	d.mu.Unlock()
	return nil
}

// Close blanks the strip and releases the port.
func (d *Drawer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.d.Halt()
	if d.closer != nil {
		if cerr := d.closer(); err == nil {
			err = cerr
		}
		d.closer = nil
	}
	return err
}

// SPIConfig selects the spidev port and bus speed for an nrzled strip.
type SPIConfig struct {
	Dev        string
	Freq       physic.Frequency
	NumPixels  int
	ColorOrder string
}

// OpenSPI initializes the host drivers and opens an nrzled strip on the
// configured port ("" picks the first one registered).
func OpenSPI(cfg SPIConfig) (*Drawer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	port, err := spireg.Open(cfg.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", cfg.Dev, err)
	}
	d, err := NewNRZ(port, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	d.closer = port.Close
	log.Info().Str("port", port.String()).Int("leds", cfg.NumPixels).Msg("spi strip ready")
	return d, nil
}

// NewNRZ drives an nrzled strip over an already opened port.
func NewNRZ(port spi.Port, cfg SPIConfig) (*Drawer, error) {
	freq := cfg.Freq
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: cfg.NumPixels,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := dev.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return NewDrawer(dev, cfg.NumPixels, cfg.ColorOrder)
}

// NewConsole previews the strip as colored blocks in the terminal.
func NewConsole(n int) *Drawer {
	d, _ := NewDrawer(screen.New(n), n, "")
	return d
}
