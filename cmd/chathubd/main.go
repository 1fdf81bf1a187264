// Command chathubd runs the chat hub as a standalone daemon.
//
// Configuration is layered: built-in defaults, an optional config.yaml and
// CHATHUB_* environment variables. A .env file in the working directory is
// loaded first if present.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/auth"
	"github.com/luciancaetano/chathub/internal/config"
	"github.com/luciancaetano/chathub/internal/store"
	"github.com/luciancaetano/chathub/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// No .env file is the common case; environment variables still apply.
		_ = err
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	scfg := ws.NewConfig(cfg.Addr)
	scfg.AllowedOrigin = cfg.AllowedOrigin
	scfg.GameMode = cfg.GameMode
	scfg.PingInterval = cfg.PingInterval
	scfg.Logger = logger
	scfg.RateLimitConfig = &ws.RateLimitConfig{
		MessagesPerSecond: rate.Limit(cfg.RateLimit.MessagesPerSecond),
		Burst:             cfg.RateLimit.Burst,
		Enabled:           cfg.RateLimit.Enabled,
	}

	if cfg.AuthToken != "" {
		scfg.Verifier = auth.NewStaticVerifier(cfg.AuthToken)
	}

	if cfg.GameMode {
		players, err := newPlayerStore(cfg.StorePath)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.StorePath).Msg("failed to open player store")
			os.Exit(1)
		}
		scfg.Store = players
	}

	hub := ws.New(scfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := hub.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to start hub")
		os.Exit(1)
	}
	logger.Info().Str("addr", cfg.Addr).Bool("game_mode", cfg.GameMode).Msg("chat hub started")

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hub.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		os.Exit(1)
	}
}

func newLogger(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func newPlayerStore(path string) (chathub.PlayerStore, error) {
	if path == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewFileStore(path)
}
