// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the web server configuration.
type Config struct {
	Addr string `env:"TARGETGAME_ADDR"`
	// Port is the platform-assigned port, used when Addr is unset.
	Port string `env:"PORT"`
	// DBPath selects SQLite storage; empty keeps profiles in memory.
	DBPath          string        `env:"TARGETGAME_DB_PATH"`
	ShutdownTimeout time.Duration `env:"TARGETGAME_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HitRadius       float64       `env:"TARGETGAME_HIT_RADIUS" envDefault:"0.8"`
	// SessionIdle is how long an unwatched session may go untouched before
	// it is dropped from memory.
	SessionIdle time.Duration `env:"TARGETGAME_SESSION_IDLE" envDefault:"30m"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the server configuration and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HitRadius <= 0 {
		return Config{}, fmt.Errorf("hit radius must be positive, got %v", cfg.HitRadius)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("shutdown timeout must be positive, got %v", cfg.ShutdownTimeout)
	}
	if cfg.SessionIdle <= 0 {
		return Config{}, fmt.Errorf("session idle must be positive, got %v", cfg.SessionIdle)
	}
	return cfg, nil
}

// ListenAddr returns the address to listen on.
func (c Config) ListenAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(c.Port); port != "" {
		return ":" + port
	}
	return ":8080"
}
