// Package chathub provides a real-time websocket connection hub with two
// negotiated wire behaviors: broadcast (group chat) and echo (point-to-point
// reflect).
//
// Every upgraded connection selects a subprotocol during the handshake. The
// first offered subprotocol decides: "broadcast" joins the shared chat hub,
// anything else (including "echo" and unknown values) degrades to echo mode.
// A request that offers no subprotocol is still accepted and handled as echo.
//
// # Quick Start
//
//	import (
//	    "github.com/luciancaetano/chathub/ws"
//	)
//
//	cfg := ws.NewConfig(":1337")
//	cfg.AllowedOrigin = "https://chat.example.com"
//	hub := ws.New(cfg)
//
//	if err := hub.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Broadcast Protocol
//
// Broadcast connections must carry a non-empty "nickname" query parameter and
// may carry a "token" parameter checked against an optional TokenVerifier.
// Inbound frames are JSON commands:
//
//	{"command": "message", "params": {"message": "hi"}}
//	{"command": "nick",    "params": {"nickname": "joel"}}
//	{"command": "move",    "params": {"position": "10,4"}}   (game mode only)
//
// Every outbound frame is a JSON envelope:
//
//	{"timestamp": ..., "origin": "server"|"user", "nickname": ..., "data": ...}
//
// Malformed or unknown commands never affect other connections; the sender
// receives an error envelope with a fixed human-readable string.
//
// # Liveness
//
// A shared heartbeat ticker pings every connection at a fixed interval
// (default 30s). A peer that misses one ping response is terminated on the
// following tick and its departure is announced to the remaining peers.
//
// # Admission
//
// Broadcast handshakes are screened before the upgrade: origin allow-listing
// (403), optional token verification (401, fail-closed), and the required
// nickname (401). Echo handshakes always pass.
//
// # Non-upgrade Requests
//
// Any plain HTTP request receives a fixed JSON acknowledgement. The server
// also exposes /healthz and prometheus metrics on /metrics.
//
// # Rate Limiting
//
// Each connection has an independent token bucket limiter. Exceeding it
// closes the connection with code 1008 (Policy Violation).
package chathub
