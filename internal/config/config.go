// Package config reads runtime settings from HEXFRONT_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the binary needs. Zero values are never used:
// each field has an env default.
type Config struct {
	DBPath      string `env:"DB_PATH" envDefault:"data/hexfront.db"`
	APIPort     int    `env:"API_PORT" envDefault:"8080"`
	AdminKey    string `env:"ADMIN_KEY"`
	CatalogPath string `env:"CATALOG"` // Optional TOML overrides
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Seed      int64 `env:"SEED" envDefault:"42"`
	MapRadius int   `env:"MAP_RADIUS" envDefault:"20"`
	Factions  int   `env:"FACTIONS" envDefault:"4"`

	TurnInterval    time.Duration `env:"TURN_INTERVAL" envDefault:"10s"`
	SaveEvery       int           `env:"SAVE_EVERY" envDefault:"4"` // Turns between full saves
	ParallelRefresh bool          `env:"PARALLEL_REFRESH" envDefault:"false"`
}

// Load parses the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "HEXFRONT_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MapRadius < 4:
		return fmt.Errorf("map radius %d too small (min 4)", c.MapRadius)
	case c.Factions < 1:
		return fmt.Errorf("need at least one faction, got %d", c.Factions)
	case c.APIPort < 0 || c.APIPort > 65535:
		return fmt.Errorf("invalid api port %d", c.APIPort)
	case c.TurnInterval <= 0:
		return fmt.Errorf("turn interval must be positive, got %s", c.TurnInterval)
	case c.SaveEvery < 1:
		return fmt.Errorf("save interval must be at least one turn, got %d", c.SaveEvery)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}
