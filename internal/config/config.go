package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/splitter-dev/splitter/internal/model"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the top-level splitter.yaml configuration.
type Config struct {
	Storage    StorageConfig     `yaml:"storage"`
	GeneralTag string            `yaml:"general_tag"`
	Tags       []model.TagOption `yaml:"tags,omitempty"`
	Server     ServerConfig      `yaml:"server"`
}

// StorageConfig selects where collections are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"`        // file, sqlite or postgres
	Path    string `yaml:"path,omitempty"` // data dir (file) or db file (sqlite)
	DSN     string `yaml:"dsn,omitempty"`  // postgres only
}

// ServerConfig controls the read-only HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a splitter.yaml file from disk. Missing sections fall back to
// the defaults. Callers apply environment overrides and then Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	cfg.Tags = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = model.DefaultTags()
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "data",
		},
		GeneralTag: model.DefaultGeneralTag,
		Tags:       model.DefaultTags(),
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// ApplyEnv overrides settings from SPLITTER_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SPLITTER_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SPLITTER_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SPLITTER_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("SPLITTER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks that the storage section is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for backend %q", c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for backend %q", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
