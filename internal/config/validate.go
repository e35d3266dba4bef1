package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Field + " " + e.Reason
}

func invalid(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return invalid("api.api_key", "is required (set %s)", EnvAPIKey)
	}
	if c.API.BaseURL == "" {
		return invalid("api.base_url", "is required")
	}
	if c.API.Timeout <= 0 {
		return invalid("api.timeout", "must be > 0")
	}
	if c.API.DirectoryTimeout <= 0 {
		return invalid("api.directory_timeout", "must be > 0")
	}
	if c.API.DirectoryRetries < 0 {
		return invalid("api.directory_retries", "must be >= 0")
	}

	switch strings.ToLower(c.Store.Driver) {
	case "postgres":
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return invalid("store.sqlite_path", "is required for the sqlite driver")
		}
	case "memory":
	default:
		return invalid("store.driver", "must be one of postgres, sqlite, memory, got %q", c.Store.Driver)
	}

	if c.Refresh.StaleAfter <= 0 {
		return invalid("refresh.stale_after", "must be > 0")
	}
	if c.Refresh.BackgroundInterval < 0 {
		return invalid("refresh.background_interval", "must be >= 0")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", "must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.URL == "" {
		if db.Host == "" {
			return invalid(prefix+".host", "is required")
		}
		if db.Name == "" {
			return invalid(prefix+".name", "is required")
		}
		if db.User == "" {
			return invalid(prefix+".user", "is required")
		}
		if db.Password == "" {
			return invalid(prefix+".password", "is required")
		}
	}
	if db.MaxConns < 1 {
		return invalid(prefix+".max_conns", "must be >= 1")
	}
	if db.MinConns < 0 {
		return invalid(prefix+".min_conns", "must be >= 0")
	}
	if db.MinConns > db.MaxConns {
		return invalid(prefix+".min_conns", "(%d) cannot exceed max_conns (%d)", db.MinConns, db.MaxConns)
	}
	return nil
}
