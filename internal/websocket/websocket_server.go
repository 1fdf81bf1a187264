package websocket

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/metrics"
)

// DefaultPingInterval is the heartbeat period. A peer that misses a single
// probe response is terminated on the following tick.
const DefaultPingInterval = 30 * time.Second

// RateLimitConfig defines rate limiting configuration for connections.
type RateLimitConfig struct {
	// MessagesPerSecond defines how many messages a connection can send per second
	MessagesPerSecond rate.Limit
	// Burst defines the maximum burst size (token bucket capacity)
	Burst int
	// Enabled determines if rate limiting is active
	Enabled bool
}

// DefaultRateLimitConfig returns the default rate limit configuration.
// Allows 100 messages per second with burst of 200.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit returns a configuration with rate limiting disabled.
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled: false,
	}
}

// ServerConfig configures a hub instance. The collaborators are optional:
// a nil Verifier skips token checks, and the game extension is active only
// when GameMode is set (Store may still be nil; position lookups then
// degrade to empty defaults).
type ServerConfig struct {
	Addr            string
	AllowedOrigin   string
	Verifier        chathub.TokenVerifier
	Store           chathub.PlayerStore
	GameMode        bool
	PingInterval    time.Duration
	RateLimitConfig *RateLimitConfig
	Logger          zerolog.Logger
}

// Server implements the chathub.Hub interface.
type Server struct {
	addr     string
	server   *http.Server
	registry *registry

	allowedOrigin   string
	verifier        chathub.TokenVerifier
	store           chathub.PlayerStore
	gameMode        bool
	pingInterval    time.Duration
	rateLimitConfig *RateLimitConfig

	mu          sync.Mutex
	running     bool
	monitorStop chan struct{}
	monitorDone chan struct{}

	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New creates a new hub instance with the specified configuration.
func New(cfg *ServerConfig) *Server {
	if cfg.RateLimitConfig == nil {
		cfg.RateLimitConfig = DefaultRateLimitConfig()
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	return &Server{
		addr:            cfg.Addr,
		registry:        newRegistry(),
		allowedOrigin:   cfg.AllowedOrigin,
		verifier:        cfg.Verifier,
		store:           cfg.Store,
		gameMode:        cfg.GameMode,
		pingInterval:    cfg.PingInterval,
		rateLimitConfig: cfg.RateLimitConfig,
		log:             cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The admission gate owns the origin policy; the upgrader
			// must not apply its same-host default on top of it.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the hub's HTTP handler: websocket upgrades on any path,
// the fixed JSON acknowledgement for plain requests, plus /healthz and
// prometheus metrics on /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.HandleFunc("/*", s.handleRequest)
	return r
}

// Start starts the hub and begins listening for connections.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf(chathub.ErrServerAlreadyRunning)
	}
	s.running = true
	s.monitorStop = make(chan struct{})
	s.monitorDone = make(chan struct{})
	s.mu.Unlock()

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go s.runMonitor()

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Check for immediate startup errors with a small timeout
	select {
	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		close(s.monitorStop)
		s.mu.Unlock()
		<-s.monitorDone
		return err
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(stopCtx)
	case <-time.After(100 * time.Millisecond):
		s.log.Info().Str("addr", s.addr).Msg("hub listening")
		return nil
	}
}

// Stop halts the heartbeat ticker, closes every open connection and shuts
// the listening transport down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.monitorStop)
	s.mu.Unlock()

	<-s.monitorDone

	for _, c := range s.registry.snapshot() {
		s.closeConn(ctx, c)
	}

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ConnCount returns the number of currently registered connections.
func (s *Server) ConnCount() int {
	return s.registry.len()
}

// handleRequest is the catch-all route: it upgrades websocket handshakes
// and acknowledges everything else with a fixed JSON body.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		s.handleAck(w, r)
		return
	}

	offered := websocket.Subprotocols(r)
	selected := Negotiate(offered)
	s.log.Debug().Strs("offered", offered).Str("selected", selected).Msg("subprotocol negotiation")

	if decision := s.admit(r, selected); !decision.Accepted {
		metrics.AdmissionRejections.WithLabelValues(strconv.Itoa(decision.Code)).Inc()
		s.log.Warn().
			Int("code", decision.Code).
			Str("reason", decision.Reason).
			Str("remote_addr", r.RemoteAddr).
			Msg("upgrade rejected")
		http.Error(w, decision.Reason, decision.Code)
		return
	}

	var responseHeader http.Header
	if selected != "" {
		responseHeader = http.Header{"Sec-WebSocket-Protocol": []string{selected}}
	}

	conn, err := s.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		s.log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	// An unspecified subprotocol is still admitted and handled as echo.
	mode := selected
	if mode != chathub.SubprotocolBroadcast {
		mode = chathub.SubprotocolEcho
	}

	c := newConn(conn, r.RemoteAddr, mode, s.rateLimitConfig)
	s.registry.add(c)
	metrics.ConnectionsActive.Inc()
	metrics.ConnectionsTotal.WithLabelValues(mode).Inc()
	s.log.Info().
		Str("conn_id", c.ID()).
		Str("subprotocol", mode).
		Str("remote_addr", c.RemoteAddr()).
		Int("total", s.registry.len()).
		Msg("connection admitted")

	if mode == chathub.SubprotocolBroadcast {
		s.joinBroadcast(c, r.URL.Query().Get("nickname"))
	}

	go s.readLoop(c)
}

// readLoop handles inbound frames for one connection until the transport
// closes. Broadcast frames go through the command dispatcher; echo frames
// are reflected verbatim.
func (s *Server) readLoop(c *Conn) {
	defer s.dropConn(c)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Str("conn_id", c.ID()).Msg("read error")
			}
			return
		}

		if !c.allowMessage() {
			s.log.Warn().Str("conn_id", c.ID()).Str("remote_addr", c.RemoteAddr()).Msg("rate limit exceeded")
			c.CloseWithCode(context.Background(), websocket.ClosePolicyViolation, "Rate limit exceeded")
			return
		}

		switch c.Subprotocol() {
		case chathub.SubprotocolBroadcast:
			s.dispatch(c, data)
		default:
			if err := c.reflect(kind, data); err != nil {
				return
			}
		}
	}
}

// dropConn removes a connection from the registry and announces its
// departure. Exactly one caller wins the removal; late callers no-op, so
// the close handler and the heartbeat monitor never announce twice.
func (s *Server) dropConn(c *Conn) {
	if !s.registry.remove(c.ID()) {
		return
	}
	metrics.ConnectionsActive.Dec()
	c.Close(context.Background())
	s.log.Info().
		Str("conn_id", c.ID()).
		Int("remaining", s.registry.len()).
		Msg("connection closed")

	if c.Subprotocol() == chathub.SubprotocolBroadcast {
		s.announceDeparture(c)
	}
}

// closeConn closes one connection during shutdown. The gauge moves only
// when this caller wins the removal; a racing dropConn may already have
// counted the departure.
func (s *Server) closeConn(ctx context.Context, c *Conn) {
	c.Close(ctx)
	if s.registry.remove(c.ID()) {
		metrics.ConnectionsActive.Dec()
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleAck answers any non-upgrade request, regardless of method or path.
func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("plain http request")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": chathub.AckBody})
}
