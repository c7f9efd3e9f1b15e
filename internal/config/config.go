// Package config loads configuration for the records binaries from a file
// and RECORDS_-prefixed environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full configuration for the records binaries.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourceConfig points at the upstream collection API.
type SourceConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	UserAgent         string  `mapstructure:"user_agent" validate:"required"`
	CollectionPath    string  `mapstructure:"collection_path"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// Timeout returns the request timeout as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// RedisConfig configures the shared budget store. An empty Addr disables the
// shared budget gate and leaves only local pacing.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// Enabled reports whether a budget store is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// ServerConfig configures the proxy listener.
type ServerConfig struct {
	Addr                   string `mapstructure:"addr" validate:"required"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// ShutdownTimeout returns the graceful shutdown window as a duration.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = "records-proxy/0.1 (+https://github.com/tallyhq/records-client)"
	}
	if c.Source.CollectionPath == "" {
		c.Source.CollectionPath = "/records"
	}
	if c.Source.RequestsPerSecond == 0 {
		c.Source.RequestsPerSecond = 10
	}
	if c.Source.Burst == 0 {
		c.Source.Burst = 5
	}
	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = 30
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
