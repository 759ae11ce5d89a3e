// Package config loads the console's client configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration. The API token can also come
// from the QUILL_TOKEN environment variable, which wins over the file
// so tokens can stay out of dotfiles.
type Config struct {
	// Endpoint is the backend's action API URL.
	Endpoint string `yaml:"endpoint"`

	// Token authenticates action calls; passed through opaquely.
	Token string `yaml:"token"`

	// DefaultCategory is the category used for {category}/{directory}
	// previews when a post has none of its own.
	DefaultCategory int64 `yaml:"default_category"`

	// DBPath is the local state database; defaults next to the config
	// file.
	DBPath string `yaml:"db_path"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "quill", "config.yaml"), nil
}

// Load reads and validates the config file at path. Unknown keys are
// rejected so typos fail loudly instead of silently defaulting.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), "quill.db")
	}
	return cfg, nil
}

// Parse decodes and validates raw YAML config bytes.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if tok := os.Getenv("QUILL_TOKEN"); tok != "" {
		cfg.Token = tok
	}

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	return &cfg, nil
}
