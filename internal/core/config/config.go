package config

import (
	"time"

	redisstore "github.com/vietddude/httpguard/internal/infra/redis"
	"github.com/vietddude/httpguard/internal/infra/storage/sqlstore"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Retry     RetryConfig     `yaml:"retry"`
	Toast     ToastConfig     `yaml:"toast"`
	LogBuffer LogBufferConfig `yaml:"logbuffer"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the status server settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"` // 0 disables the gRPC health service
}

// UpstreamConfig points at the API whose requests are guarded.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig holds the retry policy.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	Delay      time.Duration `yaml:"delay"`
}

// ToastConfig holds notification lifetimes.
type ToastConfig struct {
	DefaultDuration time.Duration `yaml:"default_duration"`
	ErrorDuration   time.Duration `yaml:"error_duration"`
}

// LogBufferConfig holds the local log history settings.
type LogBufferConfig struct {
	Capacity    int           `yaml:"capacity"`
	Key         string        `yaml:"key"`
	UserAgent   string        `yaml:"user_agent"`
	Development bool          `yaml:"development"`
	RemoteURL   string        `yaml:"remote_url"` // empty disables remote delivery
	Retention   time.Duration `yaml:"retention"`  // 0 = keep until evicted
}

// StorageConfig selects where the log history is persisted.
type StorageConfig struct {
	Backend  string            `yaml:"backend"` // memory, redis, postgres, sqlite
	Redis    redisstore.Config `yaml:"redis"`
	Database sqlstore.Config   `yaml:"database"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
