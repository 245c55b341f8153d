// Package config provides configuration loading for roleshuffle.
//
// Values come from hardcoded defaults, an optional YAML file, and
// ROLESHUFFLE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store backends understood by the application wiring.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
)

// Config holds the complete roleshuffle configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Store         StoreConfig         `koanf:"store"`
	Reveal        RevealConfig        `koanf:"reveal"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// StoreConfig selects the blob backend that holds saved configurations.
type StoreConfig struct {
	Backend string `koanf:"backend"`
	// Path is the blob directory for file and the database file for bolt
	// and sqlite.
	Path string `koanf:"path"`
	// URL is the NATS server URL for the nats backend.
	URL    string `koanf:"url"`
	Bucket string `koanf:"bucket"`
}

// RevealConfig controls the staged reveal animation.
type RevealConfig struct {
	Ticks    int      `koanf:"ticks"`
	Interval Duration `koanf:"interval"`
}

// LoggingConfig holds the subset of logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File redirects logs away from stderr, used by the terminal UI.
	File string `koanf:"file"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	EnableMetrics   bool   `koanf:"enable_metrics"`
	ServiceName     string `koanf:"service_name"`
	Endpoint        string `koanf:"endpoint"`
	Protocol        string `koanf:"protocol"`
	Insecure        bool   `koanf:"insecure"`
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case BackendFile, BackendBolt, BackendSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
		}
	case BackendNATS:
		if strings.TrimSpace(c.Store.URL) == "" {
			return errors.New("store.url is required for the nats backend")
		}
		if strings.TrimSpace(c.Store.Bucket) == "" {
			return errors.New("store.bucket is required for the nats backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Reveal.Ticks < 1 {
		return fmt.Errorf("reveal.ticks must be >= 1, got %d", c.Reveal.Ticks)
	}
	if c.Reveal.Interval.Duration() <= 0 {
		return errors.New("reveal.interval must be positive")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Observability.EnableTelemetry && c.Observability.Endpoint == "" {
		return errors.New("observability.endpoint is required when telemetry is enabled")
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendFile
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case BackendFile:
			cfg.Store.Path = "~/.config/roleshuffle/teams"
		case BackendBolt:
			cfg.Store.Path = "~/.config/roleshuffle/teams.db"
		case BackendSQLite:
			cfg.Store.Path = "~/.config/roleshuffle/teams.sqlite"
		}
	}
	if cfg.Store.Backend == BackendNATS {
		if cfg.Store.URL == "" {
			cfg.Store.URL = "nats://127.0.0.1:4222"
		}
		if cfg.Store.Bucket == "" {
			cfg.Store.Bucket = "roleshuffle"
		}
	}

	if cfg.Reveal.Ticks == 0 {
		cfg.Reveal.Ticks = 5
	}
	if cfg.Reveal.Interval == 0 {
		cfg.Reveal.Interval = Duration(200 * time.Millisecond)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "roleshuffle"
	}
	if cfg.Observability.Protocol == "" {
		cfg.Observability.Protocol = "grpc"
	}
}
