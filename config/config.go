// ABOUTME: Application configuration for the crew contact book
// ABOUTME: Layers defaults, a YAML file, .env and MYCREW_* environment overrides

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG subdirectories.
	AppName = "mycrew"

	BackendSQLite = "sqlite"
	BackendBadger = "badger"

	DefaultQRSize  = 256
	DefaultWebAddr = "127.0.0.1:8347"
)

type Config struct {
	// Backend selects the contact store: "sqlite" or "badger".
	Backend string `yaml:"backend"`

	// DBPath is the SQLite file for the sqlite backend.
	DBPath string `yaml:"db_path"`

	// KVDir is the Badger directory for the badger backend.
	KVDir string `yaml:"kv_dir"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	WebAddr string `yaml:"web_addr"`

	// QRSize is the PNG edge length in pixels.
	QRSize int `yaml:"qr_size"`
}

// Default returns the built-in configuration with XDG data paths.
func Default() *Config {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	return &Config{
		Backend:   BackendSQLite,
		DBPath:    filepath.Join(dataDir, "crew.db"),
		KVDir:     filepath.Join(dataDir, "kv"),
		LogLevel:  "warn",
		LogFormat: "console",
		WebAddr:   DefaultWebAddr,
		QRSize:    DefaultQRSize,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/mycrew/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load builds the configuration. A missing file at path (or at DefaultPath
// when path is empty) is not an error. A .env file in the working directory
// is loaded before environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MYCREW_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MYCREW_KV_DIR"); v != "" {
		cfg.KVDir = v
	}
	if v := os.Getenv("MYCREW_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("MYCREW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MYCREW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("MYCREW_WEB_ADDR"); v != "" {
		cfg.WebAddr = v
	}
	if v := os.Getenv("MYCREW_QR_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MYCREW_QR_SIZE %q: %w", v, err)
		}
		cfg.QRSize = size
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendBadger)
	}
	if c.QRSize <= 0 {
		return fmt.Errorf("qr_size must be positive, got %d", c.QRSize)
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
