package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledfx/internal/fx"
	"github.com/coreman2200/funtimes-ledfx/internal/pixel"
	"github.com/coreman2200/funtimes-ledfx/internal/strip"
	"github.com/coreman2200/funtimes-ledfx/internal/timer"
)

func newServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	h.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesReachClients(t *testing.T) {
	h := NewHub()
	srv := newServer(t, h)
	c := dial(t, srv, "/ws")

	var hello helloMsg
	readJSON(t, c, &hello)
	assert.Equal(t, "frames", hello.Hello)

	require.NoError(t, h.SetGlobalBrightness(40))
	require.NoError(t, h.Flush(pixel.Buffer{pixel.Red, pixel.Blue}))

	var got frameMsg
	readJSON(t, c, &got)
	assert.Equal(t, uint64(1), got.FrameID)
	assert.Equal(t, uint8(40), got.Level)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 255}, got.RGB)
}

func TestEventsAndStateReachClients(t *testing.T) {
	h := NewHub()
	srv := newServer(t, h)
	c := dial(t, srv, "/events")

	var hello helloMsg
	readJSON(t, c, &hello)
	assert.Equal(t, "events", hello.Hello)

	ctl := strip.NewController(h, 6, strip.WithClock(timer.NewManualClock(0)), strip.WithSink(h))

	var ev map[string]any
	readJSON(t, c, &ev)
	assert.Equal(t, "primary", ev["segment"])
	assert.Equal(t, "started", ev["event"])
	assert.Equal(t, "Solid", ev["name"])

	_, err := ctl.Update()
	require.NoError(t, err)

	var st stateMsg
	readJSON(t, c, &st)
	assert.Equal(t, "primary", st.Segment)
	assert.Equal(t, "Solid", st.Effect)
	assert.Equal(t, 5, st.End)
	assert.Equal(t, uint8(255), st.Brightness)
	assert.True(t, st.Visible)

	h.OnFXEvent("left", fx.EventLog, "hello there")
	readJSON(t, c, &ev)
	assert.Equal(t, "log", ev["event"])
	assert.Equal(t, "hello there", ev["name"])
}

func TestControlRoundTrip(t *testing.T) {
	h := NewHub()
	var got []Command
	h.OnCommand = func(c Command) error {
		if c.Segment == "missing" {
			return errors.New("no such segment")
		}
		got = append(got, c)
		return nil
	}
	srv := newServer(t, h)
	c := dial(t, srv, "/control")

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"segment":"left","brightness":12}`)))
	var r reply
	readJSON(t, c, &r)
	assert.True(t, r.OK)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Brightness)
	assert.Equal(t, 12, *got[0].Brightness)
	assert.Nil(t, got[0].Opacity)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"segment":"missing"}`)))
	r = reply{}
	readJSON(t, c, &r)
	assert.False(t, r.OK)
	assert.Equal(t, "no such segment", r.Error)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	r = reply{}
	readJSON(t, c, &r)
	assert.False(t, r.OK)
	assert.NotEmpty(t, r.Error)
}

func TestHealth(t *testing.T) {
	h := NewHub()
	h.Info = func() map[string]any { return map[string]any{"driver": "sim"} }
	require.NoError(t, h.Flush(pixel.New(3)))

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["frame_id"])
	assert.Equal(t, float64(3), body["leds"])
	assert.Equal(t, "sim", body["driver"])
}

func TestStalledClientDoesNotBlockFlush(t *testing.T) {
	h := NewHub()
	srv := newServer(t, h)
	dial(t, srv, "/ws") // never read from

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.frames) == 1
	}, 2*time.Second, 10*time.Millisecond)

	frame := pixel.New(3000)
	start := time.Now()
	for i := 0; i < 2000; i++ {
		require.NoError(t, h.Flush(frame))
	}
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Positive(t, h.Dropped())
}
