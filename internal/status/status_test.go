package status

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VoiceChat/internal/assistant"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	s := NewServer("", slog.Default())
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	return s, url
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(time.Second))
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) assistant.State {
	t.Helper()
	var msg StateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg.State
}

func TestNewClientReceivesCurrentState(t *testing.T) {
	s, url := newTestServer(t)
	s.Publish(assistant.StateListening)

	conn := dial(t, url)
	assert.Equal(t, assistant.StateListening, readState(t, conn))
}

func TestPublishBroadcastsToAllClients(t *testing.T) {
	s, url := newTestServer(t)

	first := dial(t, url)
	second := dial(t, url)
	readState(t, first) // initial idle
	readState(t, second)

	require.Eventually(t, func() bool {
		return s.ClientCount() == 2
	}, time.Second, 5*time.Millisecond)

	s.Publish(assistant.StateSpeaking)

	assert.Equal(t, assistant.StateSpeaking, readState(t, first))
	assert.Equal(t, assistant.StateSpeaking, readState(t, second))
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	s, url := newTestServer(t)

	conn := dial(t, url)
	readState(t, conn)
	conn.Close()

	require.Eventually(t, func() bool {
		return s.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// publishing with no clients is fine
	s.Publish(assistant.StateIdle)
}
