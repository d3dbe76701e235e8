package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/cheatgen/internal/synth"
)

// CurrentVersion is written by SaveConfig.
const CurrentVersion = "1"

// Dir is the project directory holding config.json and, by default, the schema.
const Dir = ".cheatgen"

// Config represents the project configuration in .cheatgen/config.json.
type Config struct {
	Version    string        `json:"version"`
	SchemaPath string        `json:"schema_path"`       // relative to the project directory
	DBPath     string        `json:"db_path,omitempty"` // empty uses ~/.cheatgen/cheatgen.db
	Options    synth.Options `json:"options"`
}

// Default returns the configuration written by `cheatgen init`.
func Default() *Config {
	return &Config{
		Version:    CurrentVersion,
		SchemaPath: filepath.Join(Dir, "schema.yaml"),
		Options:    synth.DefaultOptions(),
	}
}

// LoadConfig reads .cheatgen/config.json from the specified directory.
// Missing keys keep their defaults.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, Dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.SchemaPath == "" {
		cfg.SchemaPath = Default().SchemaPath
	}

	return cfg, nil
}

// LoadOrDefault reads the config from dir, falling back to Default when
// the project has not been initialized.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := LoadConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", Dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolveSchemaPath returns the absolute schema path for a project directory.
func (c *Config) ResolveSchemaPath(dir string) string {
	if filepath.IsAbs(c.SchemaPath) {
		return c.SchemaPath
	}
	return filepath.Join(dir, c.SchemaPath)
}
