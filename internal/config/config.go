// Package config provides environment-variable-first configuration loading
// with optional YAML or TOML file fallback for the MMS parser.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/shineum/mms-parser/internal/cleanse"
	"github.com/shineum/mms-parser/internal/provider/carrier"
)

// Config holds the complete parser configuration.
type Config struct {
	Debug           bool                      `yaml:"debug" toml:"debug"`
	OutputDir       string                    `yaml:"output_dir" toml:"output_dir"`
	Provider        string                    `yaml:"provider" toml:"provider"`
	StripCharacters string                    `yaml:"strip_characters" toml:"strip_characters"`
	Cleanse         map[string][]cleanse.Rule `yaml:"cleanse" toml:"cleanse"`
	Carriers        []carrier.Config          `yaml:"carriers" toml:"carriers"`
	Logging         LoggingConfig             `yaml:"logging" toml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file, or a TOML file when
// the name ends in .toml, as the base layer, then overrides with
// environment variables. Returns an error if the file does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override file values
	cfg.applyEnvVars()

	return cfg, nil
}

// LogLevel maps Logging.Level to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("MMS_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		}
	}
	if v := os.Getenv("MMS_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("MMS_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("MMS_STRIP_CHARACTERS"); v != "" {
		c.StripCharacters = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
