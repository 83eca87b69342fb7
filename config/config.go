// Package config loads the application configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kaiserbh/webiptv/internal/playback"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Persistent store settings
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	// Outbound fetch settings
	Fetch struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`

	// Liveness probe settings
	Probe struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"probe"`

	// Playback failure-detection budgets
	Playback struct {
		LoadTimeout   time.Duration `yaml:"load_timeout"`
		SettleDelay   time.Duration `yaml:"settle_delay"`
		GraceEngine   time.Duration `yaml:"grace_engine"`
		GraceSink     time.Duration `yaml:"grace_sink"`
		FallbackDelay time.Duration `yaml:"fallback_delay"`
	} `yaml:"playback"`

	// Logging settings
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	cfg.Store.Path = "webiptv.db"

	cfg.Fetch.Timeout = 15 * time.Second
	cfg.Probe.Timeout = 10 * time.Second

	timings := playback.DefaultTimings()
	cfg.Playback.LoadTimeout = timings.LoadTimeout
	cfg.Playback.SettleDelay = timings.SettleDelay
	cfg.Playback.GraceEngine = timings.GraceEngine
	cfg.Playback.GraceSink = timings.GraceSink
	cfg.Playback.FallbackDelay = timings.FallbackDelay

	cfg.Log.Level = "INFO"

	return cfg
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	if c.Store.Path == "" {
		errors = append(errors, "Store path is required")
	}

	if c.Fetch.Timeout <= 0 {
		errors = append(errors, "Fetch timeout must be positive")
	}
	if c.Probe.Timeout <= 0 {
		errors = append(errors, "Probe timeout must be positive")
	}

	if c.Playback.LoadTimeout <= 0 {
		errors = append(errors, "Playback load timeout must be positive")
	}
	if c.Playback.SettleDelay < 0 {
		errors = append(errors, "Playback settle delay must not be negative")
	}
	if c.Playback.GraceEngine <= 0 {
		errors = append(errors, "Playback engine grace must be positive")
	}
	if c.Playback.GraceSink <= 0 {
		errors = append(errors, "Playback sink grace must be positive")
	}
	if c.Playback.FallbackDelay < 0 {
		errors = append(errors, "Playback fallback delay must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Timings returns the playback budgets as the playback package expects them.
func (c *Config) Timings() playback.Timings {
	return playback.Timings{
		LoadTimeout:   c.Playback.LoadTimeout,
		SettleDelay:   c.Playback.SettleDelay,
		GraceEngine:   c.Playback.GraceEngine,
		GraceSink:     c.Playback.GraceSink,
		FallbackDelay: c.Playback.FallbackDelay,
	}
}

// LogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if present) and applies environment
// variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("HTTP_ADDRESS"); val != "" {
		cfg.HTTP.Address = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		cfg.HTTP.Port = val
	}

	if val := os.Getenv("STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}

	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		cfg.Fetch.Timeout = d
	}
	if val := os.Getenv("PROBE_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid PROBE_TIMEOUT: %w", err)
		}
		cfg.Probe.Timeout = d
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}

	return nil
}
