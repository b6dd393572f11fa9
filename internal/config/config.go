package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-ledfx/internal/sequence"
)

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps"`
	ChanMA    float64 `yaml:"chan_ma,omitempty"`   // mA per channel at full scale, WS2812 ~20
	WhiteCap  int     `yaml:"white_cap,omitempty"` // max R+G+B per pixel, 0 = off
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty = first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type MQTT struct {
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	QoS      byte   `yaml:"qos"`
}

type Preview struct {
	Addr string `yaml:"addr"` // HTTP listen address for /ws, /events, /health
}

// Segment describes one segment at startup. The first entry tagged
// "primary" (if any) configures the primary instead of adding one.
type Segment struct {
	Tag        string `yaml:"tag"`
	Start      int    `yaml:"start"`
	End        int    `yaml:"end"`
	Effect     string `yaml:"effect,omitempty"`
	Speed      *int   `yaml:"speed,omitempty"`
	Color      string `yaml:"color,omitempty"`
	Palette    string `yaml:"palette,omitempty"`
	Movement   string `yaml:"movement,omitempty"`
	Brightness *int   `yaml:"brightness,omitempty"`
	Opacity    *int   `yaml:"opacity,omitempty"`
	CrossFade  *bool  `yaml:"crossfade,omitempty"`
}

type Config struct {
	Driver       string `yaml:"driver"` // "sim" | "spi" | "screen" | "mqtt"
	LEDs         int    `yaml:"leds"`
	FPS          int    `yaml:"fps"`
	Brightness   int    `yaml:"brightness"` // global, 0..255
	MinRefreshMs int    `yaml:"min_refresh_ms"`
	CenterOffset int    `yaml:"center_offset,omitempty"`
	ColorOrder   string `yaml:"color_order,omitempty"`

	Power   PowerCfg `yaml:"power"`
	SPI     SPI      `yaml:"spi,omitempty"`
	MQTT    MQTT     `yaml:"mqtt,omitempty"`
	Preview Preview  `yaml:"preview,omitempty"`

	Segments []Segment           `yaml:"segments,omitempty"`
	Palettes map[string][]string `yaml:"palettes,omitempty"`
	Sequence *sequence.Program   `yaml:"sequence,omitempty"`
}

var Drivers = []string{"sim", "spi", "screen", "mqtt"}

// Default is a 60 pixel simulated strip.
func Default() *Config {
	return &Config{
		Driver:       "sim",
		LEDs:         60,
		FPS:          60,
		Brightness:   255,
		MinRefreshMs: 1000,
		Power: PowerCfg{
			ChanMA: 20,
		},
		Preview: Preview{Addr: ":8080"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the fields a controller cannot clamp on its own.
func (c *Config) Validate() error {
	var errs []error
	known := false
	for _, d := range Drivers {
		known = known || d == c.Driver
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	if c.LEDs <= 0 || c.LEDs > 0xffff {
		errs = append(errs, fmt.Errorf("leds must be in 1..65535, got %d", c.LEDs))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		errs = append(errs, fmt.Errorf("brightness must be in 0..255, got %d", c.Brightness))
	}
	if c.Driver == "mqtt" && (c.MQTT.URL == "" || c.MQTT.Topic == "") {
		errs = append(errs, errors.New("mqtt driver needs mqtt.url and mqtt.topic"))
	}
	seen := map[string]bool{}
	for i, s := range c.Segments {
		switch {
		case s.Tag == "":
			errs = append(errs, fmt.Errorf("segment %d: missing tag", i))
		case seen[s.Tag]:
			errs = append(errs, fmt.Errorf("segment %q: duplicate tag", s.Tag))
		case s.Start < 0 || s.End < s.Start || s.End >= c.LEDs:
			errs = append(errs, fmt.Errorf("segment %q: range %d..%d outside strip of %d", s.Tag, s.Start, s.End, c.LEDs))
		}
		seen[s.Tag] = true
	}
	return errors.Join(errs...)
}
