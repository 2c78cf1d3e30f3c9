// Package config loads and validates the Jokebox workspace configuration
// stored at .jokebox/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete Jokebox configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Server      ServerConfig      `json:"server" mapstructure:"server"`
	Dataset     DatasetConfig     `json:"dataset" mapstructure:"dataset"`
	Storage     StorageConfig     `json:"storage" mapstructure:"storage"`
	Auth        AuthConfig        `json:"auth" mapstructure:"auth"`
	Compression CompressionConfig `json:"compression" mapstructure:"compression"`
	Metrics     MetricsConfig     `json:"metrics" mapstructure:"metrics"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// DatasetConfig describes where jokes are loaded from at startup
type DatasetConfig struct {
	// Path to the dataset file, relative to the workspace root
	Path string `json:"path" mapstructure:"path"`
	// Format is "json", "yaml", "toml", or "auto" (detect from extension)
	Format string `json:"format" mapstructure:"format"`
	// Source is "file" or "sqlite" (serve from rows written by `jokebox import`)
	Source string `json:"source" mapstructure:"source"`
}

// StorageConfig contains SQLite storage configuration
type StorageConfig struct {
	// Enabled turns on the .jokebox/jokebox.db database (serve counters,
	// API keys, imported datasets)
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// AuthConfig contains API key authentication configuration
type AuthConfig struct {
	Enabled     bool            `json:"enabled" mapstructure:"enabled"`
	RequireAuth bool            `json:"requireAuth" mapstructure:"requireAuth"`
	KeysFile    string          `json:"keysFile" mapstructure:"keysFile"`
	RateLimit   RateLimitConfig `json:"rateLimit" mapstructure:"rateLimit"`
}

// RateLimitConfig contains token bucket rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool `json:"enabled" mapstructure:"enabled"`
	DefaultLimit    int  `json:"defaultLimit" mapstructure:"defaultLimit"`       // Requests per minute
	BurstSize       int  `json:"burstSize" mapstructure:"burstSize"`             // Token bucket burst
	CleanupInterval int  `json:"cleanupInterval" mapstructure:"cleanupInterval"` // Seconds between cleanup runs
}

// CompressionConfig contains gzip response compression configuration
type CompressionConfig struct {
	Enabled      bool `json:"enabled" mapstructure:"enabled"`
	MinSizeBytes int  `json:"minSizeBytes" mapstructure:"minSizeBytes"`
}

// MetricsConfig contains metrics endpoint configuration
type MetricsConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Dataset: DatasetConfig{
			Path:   "jokes.json",
			Format: "auto",
			Source: "file",
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Auth: AuthConfig{
			Enabled:     false,
			RequireAuth: true,
			KeysFile:    "auth.toml",
			RateLimit: RateLimitConfig{
				Enabled:         false,
				DefaultLimit:    60,
				BurstSize:       10,
				CleanupInterval: 300,
			},
		},
		Compression: CompressionConfig{
			Enabled:      true,
			MinSizeBytes: 1024,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .jokebox/config.json under root.
// A missing config file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 1)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".jokebox"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Start from defaults so omitted sections keep sensible values
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .jokebox/config.json under root
func (c *Config) Save(root string) error {
	configPath := filepath.Join(root, ".jokebox", "config.json")

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port out of range"}
	}
	switch c.Dataset.Format {
	case "auto", "json", "yaml", "toml":
	default:
		return &ConfigError{Field: "dataset.format", Message: "must be auto, json, yaml, or toml"}
	}
	switch c.Dataset.Source {
	case "file", "sqlite":
	default:
		return &ConfigError{Field: "dataset.source", Message: "must be file or sqlite"}
	}
	if c.Dataset.Source == "sqlite" && !c.Storage.Enabled {
		return &ConfigError{Field: "dataset.source", Message: "sqlite source requires storage.enabled"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
