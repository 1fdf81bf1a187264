package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/protocol"
)

// writeWait bounds every write to the peer, control frames included.
const writeWait = 10 * time.Second

// message pairs a websocket frame type with its payload so the echo relay
// can reflect binary frames as binary and text as text.
type message struct {
	kind int
	data []byte
}

// Conn implements the chathub.Conn interface.
type Conn struct {
	id          string
	conn        *websocket.Conn
	remoteAddr  string
	subprotocol string
	ctx         context.Context
	cancel      context.CancelFunc
	sendCh      chan message
	mu          sync.RWMutex
	closed      bool
	nickname    string
	alive       bool
	rateLimiter *rate.Limiter
}

// newConn wraps an upgraded websocket connection. The subprotocol is fixed
// here and never changes for the lifetime of the session.
func newConn(conn *websocket.Conn, remoteAddr, subprotocol string, rateLimitConfig *RateLimitConfig) *Conn {
	ctx, cancel := context.WithCancel(context.Background())

	var limiter *rate.Limiter
	if rateLimitConfig != nil && rateLimitConfig.Enabled {
		limiter = rate.NewLimiter(rateLimitConfig.MessagesPerSecond, rateLimitConfig.Burst)
	}

	c := &Conn{
		id:          uuid.New().String(),
		conn:        conn,
		remoteAddr:  remoteAddr,
		subprotocol: subprotocol,
		ctx:         ctx,
		cancel:      cancel,
		sendCh:      make(chan message, 256),
		alive:       true,
		rateLimiter: limiter,
	}

	// The heartbeat monitor sends the pings; the pong lands here.
	conn.SetPongHandler(func(string) error {
		c.markAlive()
		return nil
	})

	go c.writePump()

	return c
}

// ID returns the connection's stable opaque identity.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer's network address.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Subprotocol returns the subprotocol negotiated at admission.
func (c *Conn) Subprotocol() string {
	return c.subprotocol
}

// Nickname returns the current nickname. Empty for echo connections.
func (c *Conn) Nickname() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nickname
}

func (c *Conn) setNickname(nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nickname = nickname
}

// Send wraps data in an envelope and queues it for delivery.
func (c *Conn) Send(ctx context.Context, data any, origin, nickname string) error {
	env := protocol.NewEnvelope(data, origin, nickname)
	payload, err := protocol.EncodeEnvelope(env)
	if err != nil {
		return fmt.Errorf("%s: %w", chathub.ErrFailedToEncode, err)
	}
	return c.enqueue(ctx, message{kind: websocket.TextMessage, data: payload})
}

// reflect queues a raw inbound frame back to the sender unchanged. Echo
// relay only.
func (c *Conn) reflect(kind int, data []byte) error {
	return c.enqueue(c.ctx, message{kind: kind, data: data})
}

func (c *Conn) enqueue(ctx context.Context, msg message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return fmt.Errorf(chathub.ErrConnectionClosed)
	}

	// Keep the lock while queueing to prevent a race with Close().
	select {
	case c.sendCh <- msg:
		c.mu.RUnlock()
		return nil
	case <-ctx.Done():
		c.mu.RUnlock()
		return ctx.Err()
	case <-c.ctx.Done():
		c.mu.RUnlock()
		return fmt.Errorf(chathub.ErrContextCancelled)
	}
}

// Close closes the connection with a normal closure handshake.
func (c *Conn) Close(ctx context.Context) error {
	return c.CloseWithCode(ctx, websocket.CloseNormalClosure, "")
}

// CloseWithCode closes the connection with a close code and optional reason.
func (c *Conn) CloseWithCode(ctx context.Context, code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	msg := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(time.Second)
	c.conn.WriteControl(websocket.CloseMessage, msg, deadline)

	close(c.sendCh)
	return c.conn.Close()
}

// terminate drops the transport without a closing handshake. Used by the
// heartbeat monitor for peers that stopped answering probes.
func (c *Conn) terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.sendCh)
	c.conn.Close()
}

// IsOpen reports whether the transport is still open.
func (c *Conn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// markAlive records a liveness probe response.
func (c *Conn) markAlive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = true
}

// armProbe reports whether the peer answered since the previous probe and
// arms the next detection window. A connection found unarmed twice in a row
// is dead.
func (c *Conn) armProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.alive
	c.alive = false
	return was
}

// ping sends a liveness probe. Control frames may be written concurrently
// with the write pump.
func (c *Conn) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// allowMessage checks the per-connection rate limit for one inbound frame.
func (c *Conn) allowMessage() bool {
	if c.rateLimiter == nil {
		return true
	}
	return c.rateLimiter.Allow()
}

// writePump pumps queued messages to the websocket connection. The context
// is cancelled on exit: a pump that died on a transport error must release
// senders blocked on a full queue, or a single dead peer wedges fan-out and
// the heartbeat monitor behind it.
func (c *Conn) writePump() {
	defer c.conn.Close()
	defer c.cancel()

	for {
		select {
		case msg, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(msg.kind, msg.data); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
