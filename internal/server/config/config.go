// Package config handles runtime configuration for the sync server,
// loaded from environment variables over development defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the medsync server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - SQLitePath: path to the clinical records database file.
//   - BoltPath: path to the idempotency record store.
//   - JWTSecret: HMAC secret for validating access tokens (HS256).
//     Do not use the test default in prod.
//   - AccessTokenTTL: access token lifetime, used by local token tooling.
//   - IdempotencyTTL: retention window for idempotency records.
//   - SweepInterval: how often expired idempotency records are swept.
//   - RateLimit / RateWindow: per-client request budget.
type Config struct {
	Addr           string
	SQLitePath     string
	BoltPath       string
	JWTSecret      string
	AccessTokenTTL time.Duration
	IdempotencyTTL time.Duration
	SweepInterval  time.Duration
	RateLimit      int
	RateWindow     time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: The JWT secret is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SQLitePath = "medsync.db"
	c.BoltPath = "idempotency.db"
	c.JWTSecret = "dev-secret"
	c.AccessTokenTTL = 15 * time.Minute
	c.IdempotencyTTL = 24 * time.Hour
	c.SweepInterval = 10 * time.Minute
	c.RateLimit = 120
	c.RateWindow = 1 * time.Minute
}

// Load builds a Config by applying defaults and overlaying values from
// environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadEnv() error {
	overlayString(&c.Addr, "MEDSYNC_ADDR")
	overlayString(&c.SQLitePath, "MEDSYNC_SQLITE_PATH")
	overlayString(&c.BoltPath, "MEDSYNC_BOLT_PATH")
	overlayString(&c.JWTSecret, "MEDSYNC_JWT_SECRET")

	if err := overlayDuration(&c.AccessTokenTTL, "MEDSYNC_ACCESS_TOKEN_TTL"); err != nil {
		return err
	}
	if err := overlayDuration(&c.IdempotencyTTL, "MEDSYNC_IDEMPOTENCY_TTL"); err != nil {
		return err
	}
	if err := overlayDuration(&c.SweepInterval, "MEDSYNC_SWEEP_INTERVAL"); err != nil {
		return err
	}
	if err := overlayInt(&c.RateLimit, "MEDSYNC_RATE_LIMIT"); err != nil {
		return err
	}
	if err := overlayDuration(&c.RateWindow, "MEDSYNC_RATE_WINDOW"); err != nil {
		return err
	}

	return nil
}

func overlayString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*dst = d
	return nil
}

func overlayInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*dst = n
	return nil
}
