// Package config loads the daemon configuration with layered sources:
// struct defaults, then an optional YAML file, then environment variables
// (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the daemon's environment variables. A double
// underscore separates nesting levels: CHATHUB_LOG__LEVEL -> log.level.
const EnvPrefix = "CHATHUB_"

// DefaultConfigPaths lists where the config file is searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chathub/config.yaml",
}

// Config is the full daemon configuration.
type Config struct {
	// Addr is the listen address, e.g. ":1337".
	Addr string `koanf:"addr"`

	// AllowedOrigin restricts broadcast handshakes to one Origin header
	// value. Empty disables the check.
	AllowedOrigin string `koanf:"allowed_origin"`

	// AuthToken, when set, enables token verification with a static
	// pre-shared token.
	AuthToken string `koanf:"auth_token"`

	// GameMode activates the game extension: the "move" command and the
	// join-time roster exchange.
	GameMode bool `koanf:"game_mode"`

	// StorePath is the player store snapshot file. Empty selects the
	// in-memory store.
	StorePath string `koanf:"store_path"`

	// PingInterval is the heartbeat period.
	PingInterval time.Duration `koanf:"ping_interval"`

	RateLimit RateLimit `koanf:"rate_limit"`
	Log       Log       `koanf:"log"`
}

// RateLimit configures the per-connection token bucket.
type RateLimit struct {
	MessagesPerSecond float64 `koanf:"messages_per_second"`
	Burst             int     `koanf:"burst"`
	Enabled           bool    `koanf:"enabled"`
}

// Log configures the zerolog output.
type Log struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:         ":1337",
		PingInterval: 30 * time.Second,
		RateLimit: RateLimit{
			MessagesPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path overrides the default config file
// search; an empty path falls back to DefaultConfigPaths, and a missing
// file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the hub relies on.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.PingInterval <= 0 {
		return fmt.Errorf("ping_interval must be positive, got %s", c.PingInterval)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.RateLimit.Enabled && c.RateLimit.MessagesPerSecond <= 0 {
		return fmt.Errorf("rate_limit.messages_per_second must be positive when enabled")
	}
	return nil
}

// envTransform maps CHATHUB_LOG__LEVEL to log.level.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func findConfigFile() string {
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
