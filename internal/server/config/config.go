// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the server.
//
// Fields:
//   - Addr: HTTP listen address.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - AdminUser / AdminPassword: account created at start-up when missing.
//   - ShutdownTimeout: how long in-flight requests may run after a signal.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr            string
	DatabaseDSN     string
	AdminUser       string
	AdminPassword   string
	ShutdownTimeout time.Duration
	LogLevel        string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the admin credentials are insecure and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":5000"
	c.DatabaseDSN = ""
	c.AdminUser = "admin"
	c.AdminPassword = "admin"
	c.ShutdownTimeout = 5 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
