package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file, layered under RECORDS_
// environment variables. An empty path skips the file and uses environment
// variables and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Register every key so environment variables bind even without a file.
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.user_agent", "")
	v.SetDefault("source.collection_path", "")
	v.SetDefault("source.requests_per_second", 0)
	v.SetDefault("source.burst", 0)
	v.SetDefault("source.timeout_seconds", 0)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server.addr", "")
	v.SetDefault("server.shutdown_timeout_seconds", 0)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("RECORDS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
