// Package config loads the lineage tool configuration file.
//
// Config file locations (priority order):
//  1. $LINEAGE_CONFIG
//  2. ./lineage.yaml
//  3. ~/.config/lineage/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lichee/lineage/internal/lineage"
)

// Config is the on-disk configuration
type Config struct {
	Version  int            `yaml:"version"`
	Engine   lineage.Config `yaml:"engine"`
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
}

// DatabaseConfig locates the run store
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig controls what the CLI prints and stores
type OutputConfig struct {
	// Top is the number of ranked trees printed and saved (0 = all)
	Top int `yaml:"top"`
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Engine:   lineage.DefaultConfig(),
		Database: DatabaseConfig{Path: "./lineage.db"},
		Output:   OutputConfig{Top: 5},
	}
}

// FindConfigPath returns the first existing config file, or "" if none
func FindConfigPath() string {
	if envPath := os.Getenv("LINEAGE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	candidates := []string{"lineage.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "lineage", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Engine settings missing
// from the file keep their defaults.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Engine.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = "./lineage.db"
	}
	if c.Output.Top < 0 {
		c.Output.Top = 0
	}
}
