package config

import "time"

// Config is the root configuration for a coinsnap instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// APIConfig holds CoinGecko API settings.
type APIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	APIKeyHeader     string        `yaml:"api_key_header"`    // x-cg-demo-api-key or x-cg-pro-api-key
	Timeout          time.Duration `yaml:"timeout"`           // markets call
	DirectoryTimeout time.Duration `yaml:"directory_timeout"` // coins/list call
	DirectoryRetries int           `yaml:"directory_retries"`
}

// StoreConfig selects the snapshot store backend.
type StoreConfig struct {
	Driver     string `yaml:"driver"` // postgres, sqlite or memory
	SQLitePath string `yaml:"sqlite_path"`
}

// DatabaseConfig holds the PostgreSQL connection used by the postgres store driver.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
// When URL is set it takes precedence over the discrete fields.
type DBConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RefreshConfig holds snapshot refresh settings.
type RefreshConfig struct {
	StaleAfter          time.Duration `yaml:"stale_after"`
	BackgroundInterval  time.Duration `yaml:"background_interval"` // 0 disables the poller
	DisableSingleFlight bool          `yaml:"disable_single_flight"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
