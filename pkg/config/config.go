// Package config provides configuration loading and management for slicseg.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"slicseg/pkg/slic"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Engine holds the clustering engine's own parameters.
	Engine slic.Config `yaml:"engine"`

	// Runtime parameters that apply to the CLI driving the engine, not the
	// engine itself.
	Runtime struct {
		// NumCores specifies how many CPU cores to use for parallel processing.
		NumCores int `yaml:"numCores"`
	} `yaml:"runtime"`

	// Output parameters
	Output struct {
		// LabelSlicesDir, when non-empty, makes the CLI render one image per
		// slice of the output label volume into this directory.
		LabelSlicesDir string `yaml:"labelSlicesDir"`

		// Verbose is saved to and loaded from the config file; the CLI's
		// output does not depend on it.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Engine = slic.DefaultConfig()

	cfg.Runtime.NumCores = runtime.NumCPU()

	cfg.Output.LabelSlicesDir = ""
	cfg.Output.Verbose = true

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

	return cfg, nil
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

// CreateDefaultConfigFile creates a default configuration file at the specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
