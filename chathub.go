package chathub

import "context"

// Hub is a running connection hub. It accepts websocket upgrade requests,
// negotiates the subprotocol per connection, relays chat traffic among
// broadcast-mode peers and reflects echo-mode traffic.
//
// Example usage:
//
//	import "github.com/luciancaetano/chathub/ws"
//
//	hub := ws.New(ws.NewConfig(":1337"))
//	hub.Start(ctx)
//	...
//	hub.Stop(ctx)
type Hub interface {
	// Start starts the hub and begins listening for connections.
	// The hub keeps running until Stop is called or the context is
	// cancelled.
	//
	// Returns an error if the hub is already running or the network
	// address cannot be bound.
	Start(ctx context.Context) error

	// Stop halts the heartbeat ticker, closes every open connection and
	// shuts the listening transport down. The final state of in-flight
	// connections is not a guaranteed graceful drain.
	Stop(ctx context.Context) error

	// ConnCount returns the number of currently registered connections,
	// echo and broadcast alike.
	ConnCount() int
}

// Conn represents one live connection registered with the hub.
//
// Identity is stable for the lifetime of the session. The subprotocol is
// fixed at admission and never changes; the nickname is mutable via the
// "nick" command (broadcast mode only).
type Conn interface {
	// ID returns the opaque identity of the connection, generated at
	// admission and constant until the connection closes.
	ID() string

	// RemoteAddr returns the peer's network address ("IP:port").
	RemoteAddr() string

	// Subprotocol returns the negotiated subprotocol, either
	// SubprotocolBroadcast or SubprotocolEcho.
	Subprotocol() string

	// Nickname returns the connection's current nickname. Empty for echo
	// connections.
	Nickname() string

	// Send wraps data in an envelope attributed to origin/nickname and
	// queues it for delivery. Returns an error if the connection is
	// closed or the context is cancelled.
	Send(ctx context.Context, data any, origin, nickname string) error

	// Close closes the connection with a normal closure handshake.
	Close(ctx context.Context) error

	// IsOpen reports whether the transport is still open. Fan-out skips
	// connections that are closing or closed.
	IsOpen() bool
}

// Verification is the outcome of a token check.
type Verification struct {
	Accepted bool
	Reason   string
}

// TokenVerifier is the optional auth collaborator consulted during
// admission of broadcast connections. A call error is treated as a
// rejection (fail-closed); it never aborts the handshake handler.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Verification, error)
}

// Player is a persisted game participant.
type Player struct {
	Nickname string `json:"nickname"`
	Position string `json:"position"`
	Model    string `json:"model"`
}

// PlayerStore is the optional persistence collaborator consulted by the
// game extension: "move" commands persist positions, and joining players
// exchange the stored roster. Store errors degrade to best-effort
// defaults; they never fail a connection.
type PlayerStore interface {
	// UpdatePosition stores the player's position, creating the record
	// if the nickname is unknown.
	UpdatePosition(ctx context.Context, nickname, position string) error

	// FindOne returns the stored player for nickname.
	FindOne(ctx context.Context, nickname string) (Player, error)

	// FindAll returns every stored player.
	FindAll(ctx context.Context) ([]Player, error)
}
