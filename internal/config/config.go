// Package config resolves runtime settings from defaults and environment.
package config

import (
	"fmt"
	"os"

	"github.com/abhisek/capitals/internal/store"
)

// Config holds process-wide settings.
type Config struct {
	// Driver selects the database backend. Values: "sqlite", "postgres".
	Driver store.Driver

	// DB is a SQLite file path or, for postgres, a connection string.
	// Empty means the default SQLite path.
	DB string

	// CSV is the bulk import file used to seed an empty catalog.
	// Empty means the bundled data.
	CSV string

	// HTTPAddr is the listen address for the serve command.
	HTTPAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:   store.DriverSQLite,
		HTTPAddr: ":8080",
		LogLevel: "info",
	}
}

// FromEnv builds a Config from CAPITALS_* environment variables, falling
// back to defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if d := os.Getenv("CAPITALS_DB_DRIVER"); d != "" {
		cfg.Driver = store.Driver(d)
	}
	if p := os.Getenv("CAPITALS_DB"); p != "" {
		cfg.DB = p
	}
	if c := os.Getenv("CAPITALS_CSV"); c != "" {
		cfg.CSV = c
	}
	if a := os.Getenv("CAPITALS_HTTP_ADDR"); a != "" {
		cfg.HTTPAddr = a
	}
	if l := os.Getenv("CAPITALS_LOG_LEVEL"); l != "" {
		cfg.LogLevel = l
	}

	return cfg
}

// Validate checks the driver and log level.
func (c Config) Validate() error {
	switch c.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.DB == "" {
			return fmt.Errorf("postgres driver requires a connection string (CAPITALS_DB or --db)")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Driver)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// DSN returns the connection string for the configured driver, creating
// the SQLite directory when needed.
func (c Config) DSN() (string, error) {
	if c.Driver == store.DriverPostgres {
		return c.DB, nil
	}
	path := c.DB
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return "", fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return "", fmt.Errorf("create DB directory: %w", err)
	}
	return store.SQLiteDSN(path), nil
}
