// Package config loads the seamcarve settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults used by the command line tool and the HTTP service.
type Config struct {
	Carve struct {
		// Seams is the number of seams removed when none is given.
		Seams int `yaml:"seams"`
		// Direction is vertical or horizontal.
		Direction string `yaml:"direction"`
		// Strategy is one of dp, greedy, shortest-path, min-cut.
		Strategy string `yaml:"strategy"`
		// Workers bounds the energy goroutines and the batch file workers.
		Workers int `yaml:"workers"`
		// Blur is the sigma of the optional Gaussian pre-blur, 0 disables it.
		Blur float64 `yaml:"blur"`
	} `yaml:"carve"`

	Output struct {
		// Quality is the JPEG quality, 1 to 100.
		Quality int `yaml:"quality"`
	} `yaml:"output"`

	Compare struct {
		Layout string `yaml:"layout"`
	} `yaml:"compare"`

	Interactive struct {
		// Step is the number of pixels added or removed by one key press.
		Step int `yaml:"step"`
		// DebounceMS delays the recompute after the last change.
		DebounceMS int `yaml:"debounceMS"`
	} `yaml:"interactive"`

	Server struct {
		Addr        string `yaml:"addr"`
		MaxUploadMB int    `yaml:"maxUploadMB"`
		// MaxPixels rejects uploads whose header announces a larger image.
		MaxPixels int64 `yaml:"maxPixels"`
		// SessionTTLMinutes evicts sessions idle for that long.
		SessionTTLMinutes int `yaml:"sessionTTLMinutes"`
	} `yaml:"server"`

	Log struct {
		Verbose bool `yaml:"verbose"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Carve.Seams = 50
	cfg.Carve.Direction = "vertical"
	cfg.Carve.Strategy = "dp"
	cfg.Carve.Workers = runtime.NumCPU()

	cfg.Output.Quality = 100
	cfg.Compare.Layout = "vertical"

	cfg.Interactive.Step = 10
	cfg.Interactive.DebounceMS = 150

	cfg.Server.Addr = ":8080"
	cfg.Server.MaxUploadMB = 32
	cfg.Server.MaxPixels = 40_000_000
	cfg.Server.SessionTTLMinutes = 30

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate checks the numeric ranges of the configuration.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Carve.Seams < 0:
		return fmt.Errorf("carve.seams must not be negative, got %d", cfg.Carve.Seams)
	case cfg.Carve.Blur < 0:
		return fmt.Errorf("carve.blur must not be negative, got %v", cfg.Carve.Blur)
	case cfg.Output.Quality < 1 || cfg.Output.Quality > 100:
		return fmt.Errorf("output.quality must be within 1..100, got %d", cfg.Output.Quality)
	case cfg.Interactive.Step < 1:
		return fmt.Errorf("interactive.step must be positive, got %d", cfg.Interactive.Step)
	case cfg.Server.MaxUploadMB < 1:
		return fmt.Errorf("server.maxUploadMB must be positive, got %d", cfg.Server.MaxUploadMB)
	case cfg.Server.MaxPixels < 1:
		return fmt.Errorf("server.maxPixels must be positive, got %d", cfg.Server.MaxPixels)
	case cfg.Server.SessionTTLMinutes < 1:
		return fmt.Errorf("server.sessionTTLMinutes must be positive, got %d", cfg.Server.SessionTTLMinutes)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
