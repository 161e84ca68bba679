package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", c.Port)
	}
	if c.PGMaxConns < 1 {
		return errors.New("pg_max_conns must be >= 1")
	}
	if c.PGMinConns < 0 || c.PGMinConns > c.PGMaxConns {
		return fmt.Errorf("pg_min_conns must be between 0 and pg_max_conns (%d)", c.PGMaxConns)
	}
	if c.PGAcquireTimeout <= 0 {
		return errors.New("pg_acquire_timeout must be positive")
	}
	if c.RetentionKeep <= 0 {
		return errors.New("retention_keep must be positive")
	}
	switch c.IdempotencyBackend {
	case "redis", "none":
	default:
		return fmt.Errorf("idempotency_backend must be redis or none, got %q", c.IdempotencyBackend)
	}
	switch c.Provider {
	case "fake":
	case "http":
		if c.QuotesAPIBase == "" {
			return errors.New("quotes_api_base is required for provider=http")
		}
	default:
		return fmt.Errorf("provider must be fake or http, got %q", c.Provider)
	}
	if c.CollectExpirationDays < 0 {
		return errors.New("collect_expiration_days must be >= 0")
	}
	return nil
}
