package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values. The store path follows the usual /tmp convention for
// ephemeral data.
const (
	DefaultPort            = "12345"
	DefaultStorePath       = "/tmp/blockfs.disk"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 5 * time.Minute
	DefaultStatsInterval   = 5 * time.Minute
)

// setDefaults registers every default with viper so they survive partial
// config files.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 0)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.stats_interval", DefaultStatsInterval)

	v.SetDefault("storage.path", DefaultStorePath)
}

// GetDefaultConfig returns a Config populated with defaults only.
// Mostly useful in tests.
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Output: "stdout",
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			MaxConnections:  0,
			RateLimit:       0,
			RateBurst:       0,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			StatsInterval:   DefaultStatsInterval,
		},
		Storage: StorageConfig{
			Path: DefaultStorePath,
		},
	}
}
