package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the zonewatch daemon configuration, loaded from the
// environment.
type Config struct {
	HostURL       string `env:"HOST_URL" envDefault:"ws://localhost:30000/zonewatch"`
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Ruleset       string `env:"RULESET" envDefault:"alienrpg"`
	Speaker       string `env:"SPEAKER_NAME" envDefault:"Zone Watch"`
	ZoneTypesPath string `env:"ZONE_TYPES_PATH"`
	// RollSeed pins the stress dice RNG; zero means a time-based seed.
	RollSeed int64 `env:"ROLL_SEED"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel converts the configured log level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
