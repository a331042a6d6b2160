package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete blockfs server configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority, applied by the caller after Load)
//  2. Environment variables (BLOCKFS_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains the TCP listener and connection settings
	Server ServerConfig `mapstructure:"server"`

	// Storage configures the block store backing file
	Storage StorageConfig `mapstructure:"storage"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains the network-facing settings.
type ServerConfig struct {
	// Port is the TCP port the line-protocol server listens on
	Port string `mapstructure:"port" validate:"required"`

	// MaxConnections caps concurrent client connections (0 = unlimited)
	MaxConnections int `mapstructure:"max_connections" validate:"gte=0"`

	// RateLimit is the sustained commands-per-second budget applied to
	// each connection (0 = unlimited). Commands over budget are throttled,
	// not rejected.
	RateLimit uint `mapstructure:"rate_limit"`

	// RateBurst is the per-connection burst capacity in commands
	RateBurst uint `mapstructure:"rate_burst"`

	// IdleTimeout closes a connection with no complete command for this
	// long (0 = no timeout)
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// StatsInterval is how often filesystem occupancy is logged
	// (0 = disabled)
	StatsInterval time.Duration `mapstructure:"stats_interval" validate:"gte=0"`
}

// StorageConfig configures the backing store.
type StorageConfig struct {
	// Path is the backing file holding the raw block bytes. The file is
	// created if absent. The inode table and free-block bitmap are
	// in-memory only: a restart yields an empty filesystem over whatever
	// stale block bytes the file still holds.
	Path string `mapstructure:"path" validate:"required"`
}

// Load loads configuration from file, environment, and defaults.
//
// When path is empty, a blockfs.yaml in the working directory or
// /etc/blockfs is used if present; a missing file is not an error and
// defaults apply. When path names a file explicitly, it must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blockfs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/blockfs")
	}

	v.SetEnvPrefix("BLOCKFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Normalize before validation so downstream code sees one spelling.
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
