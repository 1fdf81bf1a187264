package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefault tests the built-in configuration values
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Addr != ":1337" {
		t.Errorf("Addr = %q, want :1337", cfg.Addr)
	}
	if cfg.PingInterval != 30*time.Second {
		t.Errorf("PingInterval = %s, want 30s", cfg.PingInterval)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.MessagesPerSecond != 100 || cfg.RateLimit.Burst != 200 {
		t.Errorf("RateLimit = %+v, want enabled 100/200", cfg.RateLimit)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults fail validation: %v", err)
	}
}

// TestLoadFile tests YAML file layering over the defaults
func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := strings.Join([]string{
		`addr: ":9000"`,
		`allowed_origin: "https://chat.example.com"`,
		`game_mode: true`,
		`ping_interval: 10s`,
		`rate_limit:`,
		`  messages_per_second: 5`,
		`  burst: 10`,
		`log:`,
		`  level: debug`,
		`  format: console`,
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Addr)
	}
	if cfg.AllowedOrigin != "https://chat.example.com" {
		t.Errorf("AllowedOrigin = %q", cfg.AllowedOrigin)
	}
	if !cfg.GameMode {
		t.Error("GameMode = false, want true")
	}
	if cfg.PingInterval != 10*time.Second {
		t.Errorf("PingInterval = %s, want 10s", cfg.PingInterval)
	}
	if cfg.RateLimit.MessagesPerSecond != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v, want 5/10", cfg.RateLimit)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want debug/console", cfg.Log)
	}
	// Untouched keys keep their defaults.
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled lost its default")
	}
}

// TestLoadEnvOverrides tests that environment variables win over the file
func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(`addr: ":9000"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CHATHUB_ADDR", ":7000")
	t.Setenv("CHATHUB_AUTH_TOKEN", "s3cret")
	t.Setenv("CHATHUB_LOG__LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %q, want :7000 (env must beat file)", cfg.Addr)
	}
	if cfg.AuthToken != "s3cret" {
		t.Errorf("AuthToken = %q, want s3cret", cfg.AuthToken)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

// TestValidate tests the invariants rejected at load time
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "empty addr",
			mutate: func(c *Config) { c.Addr = "" },
		},
		{
			name:   "zero ping interval",
			mutate: func(c *Config) { c.PingInterval = 0 },
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Log.Format = "xml" },
		},
		{
			name: "rate limit enabled without a rate",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.MessagesPerSecond = 0
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
