// Package config is spatialmatch's layered configuration, adapted from
// the teacher's config package: hardcoded defaults, overridden by a
// project YAML file, overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables spec.md's external options expose plus the
// operational knobs the ambient stack needs.
type Config struct {
	StackableLimit         int     `yaml:"stackable_limit"`
	SpatialmatchStackLimit int     `yaml:"spatialmatch_stack_limit"`
	DefaultProxRadius      float64 `yaml:"default_prox_radius"`
	CoalesceConcurrency    int     `yaml:"coalesce_concurrency"`
	TileCacheSize          int     `yaml:"tile_cache_size"`
	NativeLibPath          string  `yaml:"native_lib_path"`
	NativeProbeSymbol      string  `yaml:"native_probe_symbol"`
	LogPath                string  `yaml:"log_path"`
	LogLevel               string  `yaml:"log_level"`
}

// fileName is the project-level config file spatialmatch reads, analogous
// to the teacher's .amanmcp.yaml.
const fileName = ".spatialmatch.yaml"

// Default returns the hardcoded baseline configuration.
func Default() *Config {
	return &Config{
		StackableLimit:         100,
		SpatialmatchStackLimit: 100,
		DefaultProxRadius:      50.0,
		CoalesceConcurrency:    500,
		TileCacheSize:          4096,
		NativeProbeSymbol:      "carmen_coalesce_probe",
		LogPath:                "spatialmatch.log",
		LogLevel:               "info",
	}
}

// Load builds a Config by layering defaults, dir/.spatialmatch.yaml (if
// present), then SPATIALMATCH_* environment variables.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overwrites c's fields with other's non-zero values.
func (c *Config) mergeWith(other *Config) {
	if other.StackableLimit != 0 {
		c.StackableLimit = other.StackableLimit
	}
	if other.SpatialmatchStackLimit != 0 {
		c.SpatialmatchStackLimit = other.SpatialmatchStackLimit
	}
	if other.DefaultProxRadius != 0 {
		c.DefaultProxRadius = other.DefaultProxRadius
	}
	if other.CoalesceConcurrency != 0 {
		c.CoalesceConcurrency = other.CoalesceConcurrency
	}
	if other.TileCacheSize != 0 {
		c.TileCacheSize = other.TileCacheSize
	}
	if other.NativeLibPath != "" {
		c.NativeLibPath = other.NativeLibPath
	}
	if other.NativeProbeSymbol != "" {
		c.NativeProbeSymbol = other.NativeProbeSymbol
	}
	if other.LogPath != "" {
		c.LogPath = other.LogPath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPATIALMATCH_STACKABLE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StackableLimit = n
		}
	}
	if v := os.Getenv("SPATIALMATCH_STACK_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SpatialmatchStackLimit = n
		}
	}
	if v := os.Getenv("SPATIALMATCH_PROX_RADIUS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DefaultProxRadius = f
		}
	}
	if v := os.Getenv("SPATIALMATCH_COALESCE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CoalesceConcurrency = n
		}
	}
	if v := os.Getenv("SPATIALMATCH_TILE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TileCacheSize = n
		}
	}
	if v := os.Getenv("SPATIALMATCH_NATIVE_LIB_PATH"); v != "" {
		c.NativeLibPath = v
	}
	if v := os.Getenv("SPATIALMATCH_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("SPATIALMATCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate reports an error for tunables that would break an invariant
// downstream (zero/negative caps, unknown log level).
func (c *Config) Validate() error {
	if c.StackableLimit <= 0 {
		return fmt.Errorf("config: stackable_limit must be positive")
	}
	if c.SpatialmatchStackLimit <= 0 {
		return fmt.Errorf("config: spatialmatch_stack_limit must be positive")
	}
	if c.CoalesceConcurrency <= 0 {
		return fmt.Errorf("config: coalesce_concurrency must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
