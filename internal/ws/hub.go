// Package ws serves a browser preview of the strip: frames and engine
// events are pushed to websocket clients, and a control socket accepts
// commands.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/strip"
)

const (
	writeWait = 200 * time.Millisecond
	// sendQueue is how many messages a subscriber may fall behind before
	// further ones are dropped for it.
	sendQueue = 32
)

// Command is one control message. Nil fields are left alone.
type Command struct {
	Segment    string `json:"segment"`
	Effect     string `json:"effect,omitempty"`
	Color      string `json:"color,omitempty"`
	Palette    string `json:"palette,omitempty"`
	Brightness *int   `json:"brightness,omitempty"`
	Opacity    *int   `json:"opacity,omitempty"`
	Speed      *int   `json:"speed,omitempty"`
	Global     *int   `json:"global_brightness,omitempty"`
	Overlay    string `json:"overlay,omitempty"`
	Pause      *bool  `json:"pause,omitempty"`
}

// Hub is both a strip.Output and a strip.Sink. Put it in an output.Multi
// next to the real strip to mirror frames to the browser.
type Hub struct {
	mu        sync.RWMutex
	frames    map[*client]bool
	events    map[*client]bool
	dropped   atomic.Uint64
	frameID   uint64
	level     uint8
	leds      int
	startTime time.Time

	// OnCommand applies control messages; nil rejects them.
	OnCommand func(Command) error
	// Info adds fields to /health.
	Info func() map[string]any

	up websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		frames:    map[*client]bool{},
		events:    map[*client]bool{},
		level:     255,
		startTime: time.Now(),
		up:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Level   uint8  `json:"level"`
	RGB     []byte `json:"rgb"`
}

type eventMsg struct {
	T       int64        `json:"t"`
	Segment string       `json:"segment"`
	Event   fx.EventKind `json:"event"`
	Name    string       `json:"name,omitempty"`
}

type stateMsg struct {
	T          int64  `json:"t"`
	Segment    string `json:"segment"`
	Effect     string `json:"effect"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Brightness uint8  `json:"brightness"`
	Opacity    uint8  `json:"opacity"`
	Visible    bool   `json:"visible"`
	Local      bool   `json:"local_brightness"`
}

type helloMsg struct {
	Hello   string `json:"hello"`
	FrameID uint64 `json:"frame_id"`
	LEDs    int    `json:"leds"`
}

func (h *Hub) Flush(frame pixel.Buffer) error {
	h.mu.Lock()
	h.frameID++
	h.leds = len(frame)
	msg := frameMsg{T: time.Now().UnixNano(), FrameID: h.frameID, Level: h.level, RGB: frame.Bytes()}
	h.mu.Unlock()

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.broadcast(h.frames, b)
	return nil
}

func (h *Hub) SetGlobalBrightness(level uint8) error {
	h.mu.Lock()
	h.level = level
	h.mu.Unlock()
	return nil
}

func (h *Hub) OnFXEvent(tag string, kind fx.EventKind, name string) {
	b, _ := json.Marshal(eventMsg{T: time.Now().UnixNano(), Segment: tag, Event: kind, Name: name})
	h.broadcast(h.events, b)
}

func (h *Hub) OnFXStateChange(s *strip.Segment) {
	b, _ := json.Marshal(stateMsg{
		T:          time.Now().UnixNano(),
		Segment:    s.Tag(),
		Effect:     s.FX().FX().Name(),
		Start:      s.Start(),
		End:        s.End(),
		Brightness: s.Brightness(),
		Opacity:    s.Opacity(),
		Visible:    s.IsVisible(),
		Local:      s.HasDimmer() && !s.IsPrimary(),
	})
	h.broadcast(h.events, b)
}

// client is one subscriber. Only its write pump touches the connection
// for writing; the render loop hands messages over through out.
type client struct {
	conn *websocket.Conn
	out  chan []byte
}

func (c *client) writePump() {
	for b := range c.out {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("ws write")
			c.conn.Close()
			for range c.out {
			}
			return
		}
	}
}

// broadcast queues b for every subscriber in set without waiting on the
// network. A subscriber whose queue is full misses b.
func (h *Hub) broadcast(set map[*client]bool, b []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range set {
		select {
		case c.out <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped is the number of messages skipped for slow subscribers.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func send(conn *websocket.Conn, v any) {
	b, _ := json.Marshal(v)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (h *Hub) subscribe(w http.ResponseWriter, r *http.Request, set map[*client]bool, kind string) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, out: make(chan []byte, sendQueue)}
	h.mu.Lock()
	hello, _ := json.Marshal(helloMsg{Hello: kind, FrameID: h.frameID, LEDs: h.leds})
	c.out <- hello
	set[c] = true
	h.mu.Unlock()
	go c.writePump()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(set, c)
			close(c.out)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleFramesWS streams every flushed frame.
func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, h.frames, "frames")
}

// HandleEventsWS streams segment events and state changes.
func (h *Hub) HandleEventsWS(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, h.events, "events")
}

type reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HandleControlWS applies a Command per message and answers each one.
func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			send(conn, reply{Error: err.Error()})
			continue
		}
		if h.OnCommand == nil {
			send(conn, reply{Error: "control disabled"})
			continue
		}
		if err := h.OnCommand(cmd); err != nil {
			log.Debug().Err(err).Str("segment", cmd.Segment).Msg("control")
			send(conn, reply{Error: err.Error()})
			continue
		}
		send(conn, reply{OK: true})
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"leds":     h.leds,
		"level":    h.level,
		"clients":  len(h.frames) + len(h.events),
		"dropped":  h.dropped.Load(),
	}
	h.mu.RUnlock()
	if h.Info != nil {
		for k, v := range h.Info() {
			resp[k] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Routes registers the hub's handlers on mux.
func (h *Hub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/events", h.HandleEventsWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
}
