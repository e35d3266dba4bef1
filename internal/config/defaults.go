package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort       = 8000
	DefaultReadTimeout      = 15 * time.Second
	DefaultWriteTimeout     = 90 * time.Second
	DefaultRequestTimeout   = 60 * time.Second
	DefaultBaseURL          = "https://api.coingecko.com/api/v3"
	DefaultAPIKeyHeader     = "x-cg-demo-api-key"
	DefaultAPITimeout       = 30 * time.Second
	DefaultDirectoryTimeout = 15 * time.Second
	DefaultDirectoryRetries = 2
	DefaultStoreDriver      = "postgres"
	DefaultSQLitePath       = "coinsnap.db"
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultStaleAfter       = 5 * time.Minute
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}

	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.APIKeyHeader == "" {
		c.API.APIKeyHeader = DefaultAPIKeyHeader
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.DirectoryTimeout == 0 {
		c.API.DirectoryTimeout = DefaultDirectoryTimeout
	}
	if c.API.DirectoryRetries == 0 {
		c.API.DirectoryRetries = DefaultDirectoryRetries
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = DefaultSQLitePath
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Refresh defaults
	if c.Refresh.StaleAfter == 0 {
		c.Refresh.StaleAfter = DefaultStaleAfter
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
