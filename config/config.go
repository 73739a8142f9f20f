// Package config loads the embedknn YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/embedknn/pipeline"
	"github.com/viant/embedknn/vector"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "EMBEDKNN_CONFIG"

// DatasetConfig locates the labeled reference data. Exactly one source is
// used, checked in the order CSV pair, JSON, directory.
type DatasetConfig struct {
	Features   string   `yaml:"features,omitempty"`
	Categories string   `yaml:"categories,omitempty"`
	JSON       string   `yaml:"json,omitempty"`
	Dir        string   `yaml:"dir,omitempty"`
	Names      []string `yaml:"names,omitempty"`
}

// StoreConfig points at the SQLite sample store.
type StoreConfig struct {
	Path    string `yaml:"path"`
	Dataset string `yaml:"dataset_id"`
}

// QdrantConfig enables the optional Qdrant mirror when Address is set.
type QdrantConfig struct {
	Address    string `yaml:"address,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development,omitempty"`
}

// Config is the root configuration.
type Config struct {
	Dataset  DatasetConfig `yaml:"dataset"`
	Metric   string        `yaml:"metric"`
	Pipeline pipeline.Spec `yaml:"pipeline,omitempty"`
	Store    StoreConfig   `yaml:"store"`
	Qdrant   QdrantConfig  `yaml:"qdrant,omitempty"`
	Workers  int           `yaml:"workers"`
	K        int           `yaml:"k"`
	Top      int           `yaml:"top"`
	Log      LogConfig     `yaml:"log"`
}

// Load reads a config from path. The file must exist; only LoadDefault
// falls back to built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, cfg.Validate()
}

// LoadDefault resolves the config path from $EMBEDKNN_CONFIG, then
// ./embedknn.yaml, then ~/.config/embedknn/config.yaml. When none exists the
// defaults are written to the user path and returned.
func LoadDefault() (*Config, string, error) {
	if path := os.Getenv(EnvPath); path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	cwdPath := "embedknn.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if _, err := vector.ParseMetric(c.Metric); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.K < 0 || c.Top < 0 || c.Workers < 0 {
		return fmt.Errorf("config: k, top and workers must not be negative")
	}
	if c.Qdrant.Address != "" && c.Qdrant.Collection == "" {
		return fmt.Errorf("config: qdrant.collection is required with qdrant.address")
	}
	return nil
}

// HasDataset reports whether any dataset source is configured.
func (d DatasetConfig) HasDataset() bool {
	return (d.Features != "" && d.Categories != "") || d.JSON != "" || d.Dir != ""
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "embedknn", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Metric == "" {
		cfg.Metric = vector.MetricSSD.String()
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "embedknn.sqlite"
	}
	if cfg.Store.Dataset == "" {
		cfg.Store.Dataset = "default"
	}
	if cfg.Qdrant.Address != "" && cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "embedknn"
	}
	if cfg.K == 0 {
		cfg.K = 1
	}
	if cfg.Top == 0 {
		cfg.Top = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
