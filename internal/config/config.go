// Package config provides configuration loading and management.
//
// Configuration is read from ~/.chatexport/config.toml when present, with
// environment variable overrides (CHATEXPORT_*) applied on top, validated
// at load rather than accessed ad hoc with fallback lookups.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"chatexport/internal/export"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config enumerates every recognized option and its effect.
type Config struct {
	// DefaultFormat is the export format used when none is requested.
	DefaultFormat string `toml:"default_format"`

	// OutputDir is where exported files are written.
	OutputDir string `toml:"output_dir"`

	// TimestampLocal renders human-readable timestamps in local time
	// instead of the zone they were recorded in. Machine-readable formats
	// (JSON, CSV) always keep the stored zone.
	TimestampLocal bool `toml:"timestamp_local"`

	// StorePath is the path to the SQLite conversation archive.
	StorePath string `toml:"store_path"`

	// Server holds the HTTP API configuration.
	Server ServerConfig `toml:"server"`
}

// ServerConfig contains the HTTP API configuration.
type ServerConfig struct {
	// Addr is the listen address for the HTTP API.
	Addr string `toml:"addr"`

	// RateLimit is the sustained requests-per-second limit.
	RateLimit float64 `toml:"rate_limit"`

	// Burst is the rate limiter burst size.
	Burst int `toml:"burst"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultFormat: "txt",
		OutputDir:     "./exports",
		StorePath:     defaultStorePath(),
		Server: ServerConfig{
			Addr:      "127.0.0.1:8790",
			RateLimit: 10,
			Burst:     20,
		},
	}
}

// defaultStorePath returns ~/.chatexport/archive.db, falling back to a
// relative path when the home directory cannot be determined.
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "archive.db"
	}
	return filepath.Join(home, ".chatexport", "archive.db")
}

// ConfigPath returns ~/.chatexport/config.toml.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatexport", "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the configuration: defaults, then the config file when
// present, then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err == nil {
		if err := LoadTOML(cfg, path); err != nil && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// LoadTOML merges a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads configuration from an explicit file path, with env
// overrides and validation applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CHATEXPORT_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if format := os.Getenv("CHATEXPORT_FORMAT"); format != "" {
		c.DefaultFormat = format
	}
	if dir := os.Getenv("CHATEXPORT_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}
	if path := os.Getenv("CHATEXPORT_STORE"); path != "" {
		c.StorePath = path
	}
	if addr := os.Getenv("CHATEXPORT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if v := os.Getenv("CHATEXPORT_TIMESTAMP_LOCAL"); v != "" {
		c.TimestampLocal = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.DefaultFormat); err != nil {
		return fmt.Errorf("default_format: %w", err)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive")
	}
	if c.Server.Burst <= 0 {
		return fmt.Errorf("server.burst must be positive")
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
