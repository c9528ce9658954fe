// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. Command-line flags override these values.
type Config struct {
	Addr           string        `env:"CAMP_ADDR" envDefault:":8099"`
	DataDir        string        `env:"CAMP_DATA_DIR" envDefault:"/data"`
	StaticDir      string        `env:"CAMP_STATIC_DIR" envDefault:"./static"`
	Timezone       string        `env:"CAMP_TIMEZONE" envDefault:"Local"`
	MaxRetries     int           `env:"CAMP_MAX_RETRIES" envDefault:"3"`
	RetryBase      time.Duration `env:"CAMP_RETRY_BASE" envDefault:"1s"`
	ImportInterval time.Duration `env:"CAMP_IMPORT_INTERVAL" envDefault:"30m"`
	PaymentURL     string        `env:"CAMP_PAYMENT_URL" envDefault:"https://payments.camp-rental.local"`
	Version        string        `env:"VERSION" envDefault:"dev"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env cannot check by type alone.
func (c *Config) Validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("CAMP_MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}
	if c.RetryBase <= 0 {
		return fmt.Errorf("CAMP_RETRY_BASE must be positive, got %s", c.RetryBase)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. It decides which calendar day is "today".
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DBPath returns the SQLite database path inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "camp-rental.db")
}
