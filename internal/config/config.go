// Package config loads sqlbrowser settings from an optional YAML file and
// SQLBROWSER_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/sqlbrowser/internal/filestore"
	"github.com/koustreak/sqlbrowser/internal/logger"
)

// Settings backends.
const (
	BackendFile   = "file"
	BackendObject = "object"
)

type Config struct {
	Listen    string           `yaml:"listen"`
	Locale    string           `yaml:"locale"`
	Log       LogConfig        `yaml:"log"`
	Settings  SettingsConfig   `yaml:"settings"`
	FileStore filestore.Config `yaml:"filestore"`
	Edit      EditConfig       `yaml:"edit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SettingsConfig selects where saved servers live. Path is used by the file
// backend, Bucket and Key by the object backend.
type SettingsConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Bucket  string `yaml:"bucket"`
	Key     string `yaml:"key"`
}

// EditConfig controls how grid edits find their row.
type EditConfig struct {
	// UsePrimaryKey matches edited rows on the table's primary key when it
	// has one, instead of on every column.
	UsePrimaryKey bool `yaml:"use_primary_key"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:8080",
		Locale: "en",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Settings: SettingsConfig{
			Backend: BackendFile,
			Path:    defaultSettingsPath(),
			Bucket:  "sqlbrowser",
			Key:     "servers.yaml",
		},
		FileStore: *filestore.DefaultConfig("", "", ""),
	}
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "servers.yaml"
	}
	return filepath.Join(home, ".config", "sqlbrowser", "servers.yaml")
}

// Load builds the configuration. path names a YAML file; when empty,
// SQLBROWSER_CONFIG is used, and when that is empty too no file is read.
// A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SQLBROWSER_CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SQLBROWSER_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("SQLBROWSER_LOCALE"); v != "" {
		c.Locale = v
	}

	if v := os.Getenv("SQLBROWSER_LOG_LEVEL"); v != "" {
		if !logger.ValidLevel(v) {
			return fmt.Errorf("invalid SQLBROWSER_LOG_LEVEL value %q: must be debug, info, warn, or error", v)
		}
		c.Log.Level = v
	}
	if v := os.Getenv("SQLBROWSER_LOG_FORMAT"); v != "" {
		if !validFormat(v) {
			return fmt.Errorf("invalid SQLBROWSER_LOG_FORMAT value %q: must be json or console", v)
		}
		c.Log.Format = v
	}

	if v := os.Getenv("SQLBROWSER_SETTINGS_BACKEND"); v != "" {
		if !validBackend(v) {
			return fmt.Errorf("invalid SQLBROWSER_SETTINGS_BACKEND value %q: must be file or object", v)
		}
		c.Settings.Backend = v
	}
	if v := os.Getenv("SQLBROWSER_SETTINGS_PATH"); v != "" {
		c.Settings.Path = v
	}

	if v := os.Getenv("SQLBROWSER_FILESTORE_ENDPOINT"); v != "" {
		c.FileStore.Endpoint = v
	}
	if v := os.Getenv("SQLBROWSER_FILESTORE_ACCESS_KEY"); v != "" {
		c.FileStore.AccessKey = v
	}
	if v := os.Getenv("SQLBROWSER_FILESTORE_SECRET_KEY"); v != "" {
		c.FileStore.SecretKey = v
	}

	if v := os.Getenv("SQLBROWSER_EDIT_USE_PRIMARY_KEY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SQLBROWSER_EDIT_USE_PRIMARY_KEY value %q: %w", v, err)
		}
		c.Edit.UsePrimaryKey = b
	}
	return nil
}

// Validate checks values that may have come from the file.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	if !validFormat(c.Log.Format) {
		return fmt.Errorf("invalid log.format %q: must be json or console", c.Log.Format)
	}

	switch c.Settings.Backend {
	case BackendFile:
		if c.Settings.Path == "" {
			return fmt.Errorf("settings.path is required for the file backend")
		}
	case BackendObject:
		if c.FileStore.Endpoint == "" {
			return fmt.Errorf("filestore.endpoint is required for the object backend")
		}
		if c.Settings.Bucket == "" || c.Settings.Key == "" {
			return fmt.Errorf("settings.bucket and settings.key are required for the object backend")
		}
	default:
		return fmt.Errorf("invalid settings.backend %q: must be file or object", c.Settings.Backend)
	}
	return nil
}

// Logger returns the logger configuration for c.
func (c *Config) Logger() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = c.Log.Format
	return cfg
}

func validFormat(v string) bool {
	return v == "json" || v == "console"
}

func validBackend(v string) bool {
	return v == BackendFile || v == BackendObject
}
