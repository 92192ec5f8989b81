package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, expanding ${ENV} references, and applies
// defaults.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	var cfg AppConfig
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills zero values.
func (c *AppConfig) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 30 * time.Second
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = 2 * time.Second
	}
	if c.Toast.DefaultDuration == 0 {
		c.Toast.DefaultDuration = 5 * time.Second
	}
	if c.Toast.ErrorDuration == 0 {
		c.Toast.ErrorDuration = 7 * time.Second
	}
	if c.LogBuffer.Capacity == 0 {
		c.LogBuffer.Capacity = 100
	}
	if c.LogBuffer.Key == "" {
		c.LogBuffer.Key = "app_logs"
	}
	if c.LogBuffer.UserAgent == "" {
		c.LogBuffer.UserAgent = "httpguard"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Database.Driver == "" {
		c.Storage.Database.Driver = "sqlite3"
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.Database.Driver == "" {
		c.Storage.Database.Driver = "pgx"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the settings the application cannot start without.
func (c *AppConfig) Validate() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: retry.max_retries must be >= 0", ErrInvalid)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("%w: retry.delay must be >= 0", ErrInvalid)
	}
	if c.LogBuffer.Capacity < 0 {
		return fmt.Errorf("%w: logbuffer.capacity must be >= 0", ErrInvalid)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.URL == "" {
			return fmt.Errorf("%w: storage.redis.url is required for the redis backend", ErrInvalid)
		}
	case BackendPostgres, BackendSQLite:
		if c.Storage.Database.URL == "" {
			return fmt.Errorf("%w: storage.database.url is required for the %s backend", ErrInvalid, c.Storage.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage.Backend)
	}
	return nil
}
