package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Catalog source selection
const (
	CatalogSourceStatic = "static"
	CatalogSourceFile   = "file"
	CatalogSourceRedis  = "redis"
)

// Config holds server configuration, parsed from the environment
type Config struct {
	Host string `env:"ARENA_HOST" envDefault:""`
	Port int    `env:"ARENA_PORT" envDefault:"8080"`

	ReadTimeout     time.Duration `env:"ARENA_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"ARENA_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"ARENA_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	StartCountdown    time.Duration `env:"ARENA_START_COUNTDOWN" envDefault:"3s"`
	ReaperInterval    time.Duration `env:"ARENA_REAPER_INTERVAL" envDefault:"1m"`
	RoomIdleTimeout   time.Duration `env:"ARENA_ROOM_IDLE_TIMEOUT" envDefault:"30m"`
	PlayerIdleTimeout time.Duration `env:"ARENA_PLAYER_IDLE_TIMEOUT" envDefault:"10m"`

	// CatalogSource selects where character definitions come from:
	// static, file, or redis.
	CatalogSource string `env:"ARENA_CATALOG_SOURCE" envDefault:"static"`
	CatalogPath   string `env:"ARENA_CATALOG_PATH" envDefault:"data/characters.json"`
	RedisURL      string `env:"ARENA_REDIS_URL"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.CatalogSource {
	case CatalogSourceStatic, CatalogSourceFile:
	case CatalogSourceRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("ARENA_REDIS_URL required when ARENA_CATALOG_SOURCE=redis")
		}
	default:
		return nil, fmt.Errorf("invalid ARENA_CATALOG_SOURCE %q", cfg.CatalogSource)
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
