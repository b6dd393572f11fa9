package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
)

// MQTTConfig points at the broker an ledrx style receiver listens on.
type MQTTConfig struct {
	URL      string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
}

const connectTimeout = 5 * time.Second

// DialMQTT connects to the broker and returns the live client.
func DialMQTT(cfg MQTTConfig) (mqtt.Client, error) {
	id := cfg.ClientID
	if id == "" {
		id = "ledfx"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(id).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info().Str("broker", cfg.URL).Msg("mqtt connected")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Str("broker", cfg.URL).Msg("mqtt connection lost")
		})

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", cfg.URL)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.URL, err)
	}
	return client, nil
}

// MQTT publishes every frame as a binary message.
type MQTT struct {
	mu      sync.Mutex
	client  mqtt.Client
	topic   string
	qos     byte
	level   uint8
	scratch pixel.Buffer
}

func NewMQTT(client mqtt.Client, topic string, qos byte) *MQTT {
	return &MQTT{client: client, topic: topic, qos: qos, level: 255}
}

func (m *MQTT) Flush(frame pixel.Buffer) error {
	m.mu.Lock()
	m.scratch = scaled(m.scratch, frame, m.level)
	b := MarshalFrame(m.scratch)
	m.mu.Unlock()

	tok := m.client.Publish(m.topic, m.qos, false, b)
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

func (m *MQTT) SetGlobalBrightness(level uint8) error {
	m.mu.Lock()
	m.level = level
	m.mu.Unlock()
	return nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

// MarshalFrame encodes a frame as a little endian uint16 pixel count
// followed by R,G,B bytes per pixel.
func MarshalFrame(frame pixel.Buffer) []byte {
	data := make([]byte, 2, 2+3*len(frame))
	binary.LittleEndian.PutUint16(data, uint16(len(frame)))
	for _, px := range frame {
		data = append(data, px.R, px.G, px.B)
	}
	return data
}

var ErrShortFrame = errors.New("frame shorter than its pixel count")

// UnmarshalFrame decodes what MarshalFrame produces.
func UnmarshalFrame(data []byte) (pixel.Buffer, error) {
	if len(data) < 2 {
		return nil, ErrShortFrame
	}
	n := int(binary.LittleEndian.Uint16(data))
	if len(data) < 2+3*n {
		return nil, ErrShortFrame
	}
	out := pixel.New(n)
	for i := range out {
		o := 2 + 3*i
		out[i] = pixel.RGB{R: data[o], G: data[o+1], B: data[o+2]}
	}
	return out, nil
}
