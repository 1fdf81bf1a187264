package e2e_test

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/ws"
)

func startHub(t *testing.T, cfg *ws.ServerConfig) chathub.Hub {
	t.Helper()

	hub := ws.New(cfg)
	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hub.Stop(stopCtx)
	})

	time.Sleep(200 * time.Millisecond)
	return hub
}

func TestBasicEcho(t *testing.T) {
	t.Parallel()

	startHub(t, ws.NewConfig(":18082"))

	conn, _, err := newDialer("echo").Dial("ws://localhost:18082/", nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	testPayload := []byte("Hello!")
	if err := conn.WriteMessage(websocket.TextMessage, testPayload); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, response, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if kind != websocket.TextMessage || string(response) != string(testPayload) {
		t.Errorf("Echo returned (%d, %q), want (%d, %q)", kind, response, websocket.TextMessage, testPayload)
	}
}

// TestTwoPeerChatScenario drives a full chat session between two peers:
// join announcements, a message each way, a nick change and a departure.
func TestTwoPeerChatScenario(t *testing.T) {
	t.Parallel()

	hub := startHub(t, ws.NewConfig(":18081"))

	emil, _, err := newDialer("broadcast").Dial("ws://localhost:18081/?nickname=emil", nil)
	if err != nil {
		t.Fatalf("Failed to connect emil: %v", err)
	}
	defer emil.Close()
	expectText(t, emil, "Nickname set to emil")

	joel, _, err := newDialer("broadcast").Dial("ws://localhost:18081/?nickname=joel", nil)
	if err != nil {
		t.Fatalf("Failed to connect joel: %v", err)
	}
	defer joel.Close()
	expectText(t, joel, "Nickname set to joel")

	env := expectText(t, emil, "joel has connected")
	if env.Origin != "server" || env.Nickname != "Server" {
		t.Errorf("Arrival attributed to %s/%s, want server/Server", env.Origin, env.Nickname)
	}

	if got := hub.ConnCount(); got != 2 {
		t.Fatalf("ConnCount = %d, want 2", got)
	}

	sendCommand(t, emil, "message", map[string]string{"message": "hi joel"})
	env = expectText(t, joel, "hi joel")
	if env.Origin != "user" || env.Nickname != "emil" {
		t.Errorf("Message attributed to %s/%s, want user/emil", env.Origin, env.Nickname)
	}

	sendCommand(t, joel, "message", map[string]string{"message": "hi emil"})
	expectText(t, emil, "hi emil")

	sendCommand(t, joel, "nick", map[string]string{"nickname": "max"})
	expectText(t, emil, "joel changed nick to max")
	expectText(t, joel, "Nick changed to max")

	sendCommand(t, joel, "message", map[string]string{"message": "new name"})
	env = expectText(t, emil, "new name")
	if env.Nickname != "max" {
		t.Errorf("Post-rename message attributed to %q, want max", env.Nickname)
	}

	joel.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	joel.Close()

	expectText(t, emil, "max has disconnected")

	deadline := time.Now().Add(5 * time.Second)
	for hub.ConnCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := hub.ConnCount(); got != 1 {
		t.Errorf("ConnCount after departure = %d, want 1", got)
	}
}

// TestLivenessTimeout verifies that a peer which stops answering pings is
// dropped within two heartbeat ticks and its departure is announced.
func TestLivenessTimeout(t *testing.T) {
	t.Parallel()

	cfg := ws.NewConfig(":18083")
	cfg.PingInterval = 150 * time.Millisecond
	hub := startHub(t, cfg)

	emil, _, err := newDialer("broadcast").Dial("ws://localhost:18083/?nickname=emil", nil)
	if err != nil {
		t.Fatalf("Failed to connect emil: %v", err)
	}
	defer emil.Close()
	expectText(t, emil, "Nickname set to emil")

	joel, _, err := newDialer("broadcast").Dial("ws://localhost:18083/?nickname=joel", nil)
	if err != nil {
		t.Fatalf("Failed to connect joel: %v", err)
	}
	defer joel.Close()
	expectText(t, joel, "Nickname set to joel")
	expectText(t, emil, "joel has connected")

	// joel keeps reading but never answers pings. Dropping the ping handler
	// suppresses the automatic pong reply.
	joel.SetPingHandler(func(string) error { return nil })
	go func() {
		for {
			if _, _, err := joel.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Two ticks without a pong and the monitor reaps the connection. emil
	// answers pings as a side effect of blocking in expectText.
	env := expectText(t, emil, "joel has disconnected")
	if env.Origin != "server" {
		t.Errorf("Departure attributed to %q, want server", env.Origin)
	}

	deadline := time.Now().Add(5 * time.Second)
	for hub.ConnCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := hub.ConnCount(); got != 1 {
		t.Errorf("ConnCount after timeout = %d, want 1", got)
	}
}
