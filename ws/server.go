// Package ws is the public constructor surface for the chat hub.
package ws

import (
	"github.com/rs/zerolog"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/websocket"
)

type ServerConfig = websocket.ServerConfig
type RateLimitConfig = websocket.RateLimitConfig

// DefaultPingInterval is the default heartbeat period.
const DefaultPingInterval = websocket.DefaultPingInterval

// New creates a new hub from the given configuration.
//
// Example:
//
//	cfg := ws.NewConfig(":1337")
//	cfg.AllowedOrigin = "https://chat.example.com"
//	cfg.Verifier = myVerifier
//	hub := ws.New(cfg)
//	hub.Start(ctx)
func New(cfg *ServerConfig) chathub.Hub {
	return websocket.New(cfg)
}

// NewConfig returns a ServerConfig with sensible defaults: default rate
// limiting, the default heartbeat period, no origin restriction, no
// collaborators and a no-op logger.
func NewConfig(addr string) *ServerConfig {
	return &ServerConfig{
		Addr:            addr,
		RateLimitConfig: DefaultRateLimitConfig(),
		PingInterval:    DefaultPingInterval,
		Logger:          zerolog.Nop(),
	}
}

// Negotiate selects the subprotocol for an ordered client offer list. It is
// exposed for callers embedding the hub behind their own HTTP stack.
func Negotiate(offered []string) string {
	return websocket.Negotiate(offered)
}

// DefaultRateLimitConfig returns the default rate limit configuration.
func DefaultRateLimitConfig() *RateLimitConfig {
	return websocket.DefaultRateLimitConfig()
}

// NoRateLimit returns a configuration with rate limiting disabled.
func NoRateLimit() *RateLimitConfig {
	return websocket.NoRateLimit()
}
