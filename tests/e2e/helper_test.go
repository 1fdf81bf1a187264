package e2e_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Helper function to create a WebSocket dialer
func newDialer(subprotocols ...string) *websocket.Dialer {
	return &websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
		Subprotocols:     subprotocols,
	}
}

type envelope struct {
	Timestamp time.Time       `json:"timestamp"`
	Origin    string          `json:"origin"`
	Nickname  string          `json:"nickname"`
	Data      json.RawMessage `json:"data"`
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Failed to decode envelope %q: %v", raw, err)
	}
	return env
}

func expectText(t *testing.T, conn *websocket.Conn, want string) envelope {
	t.Helper()

	env := readEnvelope(t, conn)
	var got string
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("Data %q is not a string: %v", env.Data, err)
	}
	if got != want {
		t.Fatalf("Data = %q, want %q", got, want)
	}
	return env
}

func sendCommand(t *testing.T, conn *websocket.Conn, command string, params map[string]string) {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"command": command, "params": params})
	if err != nil {
		t.Fatalf("Failed to marshal command: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}
}
