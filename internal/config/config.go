// Package config loads tagmark's YAML configuration with environment
// overrides. Everything has a default so the popup works with no config
// file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBridgeURL is where the companion extension's loopback
	// bridge listens.
	DefaultBridgeURL = "http://127.0.0.1:7845"

	defaultResultLimit = 50
	defaultLogLevel    = "warn"
)

// Config holds all tagmark configuration.
type Config struct {
	Bridge   BridgeConfig `yaml:"bridge"`
	Popup    PopupConfig  `yaml:"popup"`
	DBPath   string       `yaml:"db_path"`
	LogLevel string       `yaml:"log_level"`
}

// BridgeConfig configures the connection to the browser bookmarks bridge.
type BridgeConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// PopupConfig configures the interactive popup.
type PopupConfig struct {
	ResultLimit int `yaml:"result_limit"`
}

// DefaultPath returns the default config file location under the
// platform's config directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tagmark", "config.yaml"), nil
}

// DefaultDBPath returns the default cache database location.
func DefaultDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tagmark", "bookmarks.db"), nil
}

// Load reads the config file at path, falling back to the default
// location when path is empty. A missing file is not an error; defaults
// and environment overrides still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Bridge:   BridgeConfig{URL: DefaultBridgeURL},
		Popup:    PopupConfig{ResultLimit: defaultResultLimit},
		LogLevel: defaultLogLevel,
	}

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.DBPath == "" {
		cfg.DBPath, err = DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	if cfg.Popup.ResultLimit <= 0 {
		cfg.Popup.ResultLimit = defaultResultLimit
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TAGMARK_BRIDGE_URL"); v != "" {
		c.Bridge.URL = v
	}
	if v := os.Getenv("TAGMARK_BRIDGE_TOKEN"); v != "" {
		c.Bridge.Token = v
	}
	if v := os.Getenv("TAGMARK_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TAGMARK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TAGMARK_RESULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Popup.ResultLimit = n
		}
	}
}
