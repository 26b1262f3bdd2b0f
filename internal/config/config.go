// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"salonpos/internal/core/policy"
)

// Config holds the full server configuration.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"12h"`

	// Timezone resolves "today" when opening the drawer.
	Timezone string `env:"SALON_TIMEZONE" envDefault:"America/Mexico_City"`

	// Till deviation rules (CEL, see internal/core/policy).
	DeviationWarningExpr  string `env:"DEVIATION_WARNING_RULE"`
	DeviationCriticalExpr string `env:"DEVIATION_CRITICAL_RULE"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DeviationWarningExpr == "" {
		cfg.DeviationWarningExpr = policy.DefaultWarningExpr
	}
	if cfg.DeviationCriticalExpr == "" {
		cfg.DeviationCriticalExpr = policy.DefaultCriticalExpr
	}
	return cfg, nil
}

// Location returns the salon timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Development reports whether the server runs in development mode.
func (c *Config) Development() bool {
	return c.Env == "development"
}
