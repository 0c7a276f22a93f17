// Package config loads the YAML configuration shared by the meterload
// command-line tools.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/store"
)

// Config is the complete tool configuration.
type Config struct {
	// Store locates the load archive container.
	Store StoreConfig `yaml:"store"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`

	// Analysis configures the experiment helpers.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Import configures container building.
	Import ImportConfig `yaml:"import"`
}

// StoreConfig locates the load archive container.
type StoreConfig struct {
	// Path is the container directory.
	Path string `yaml:"path"`

	// Selector is the identifier subset to work with: all, experiment.
	Selector string `yaml:"selector"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// JSON switches output to JSON format.
	JSON bool `yaml:"json"`
}

// AnalysisConfig configures the experiment helpers.
type AnalysisConfig struct {
	// SubsetSize is the default random subset size for mean-load draws.
	SubsetSize int `yaml:"subset_size"`

	// Seed is the default subset seed; 0 draws a fresh seed per run.
	Seed int64 `yaml:"seed"`
}

// ImportConfig configures container building.
type ImportConfig struct {
	// Compression is the Parquet compression algorithm: zstd, snappy, none.
	Compression string `yaml:"compression"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Selector: "all",
		},
		Log: LogConfig{
			Level: "info",
		},
		Analysis: AnalysisConfig{
			SubsetSize: 100,
		},
		Import: ImportConfig{
			Compression: "zstd",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if _, err := store.ParseSelector(c.Store.Selector); err != nil {
		return errors.NewValidation("store.selector", c.Store.Selector)
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.NewValidation("log.level", c.Log.Level)
	}
	if c.Analysis.SubsetSize < 0 {
		return errors.NewValidation("analysis.subset_size", "must not be negative")
	}
	switch c.Import.Compression {
	case "zstd", "snappy", "none", "":
	default:
		return errors.NewValidation("import.compression", c.Import.Compression)
	}
	return nil
}

// Selector returns the parsed store selector.
func (c *Config) Selector() (store.Selector, error) {
	return store.ParseSelector(c.Store.Selector)
}

// LogLevel returns the parsed slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.NewValidation("log.level", c.Log.Level)
	}
}
