package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Session backends.
const (
	SessionBackendKeyring = "keyring"
	SessionBackendStorage = "storage"
)

// StorageConfig selects and configures the key-value backend for workspace blobs.
type StorageConfig struct {
	// Backend is one of "sqlite", "redis" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// RedisURL is the connection URL for the redis backend.
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`

	// RedisPrefix is prepended to every blob key in redis.
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`

	// Async queues writes on a background writer instead of saving inline.
	Async bool `mapstructure:"async" yaml:"async"`
}

// SessionConfig holds identity settings.
type SessionConfig struct {
	// Mode is "mock" (any password accepted) or "password".
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Backend is "keyring" or "storage" (same backend as the workspace).
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// UIConfig holds settings for the interactive browser.
type UIConfig struct {
	// RefreshSeconds is how often the browser reloads storage to pick up
	// changes made by other processes. Zero disables reloading.
	RefreshSeconds int `mapstructure:"refresh_seconds" yaml:"refresh_seconds"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/teamspace/config.yaml.
func DefaultConfigPath() string {
	dir := configDir()
	return filepath.Join(dir, "config.yaml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "teamspace")
}

// Default returns a sensible default configuration.
func Default() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			SQLitePath:  filepath.Join(configDir(), "workspace.db"),
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "teamspace:",
		},
		Session: SessionConfig{
			Mode:    "mock",
			Backend: SessionBackendStorage,
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			RefreshSeconds: 30,
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, the defaults are used. Environment variables
// such as TEAMSPACE_STORAGE_BACKEND override both.
func Load(path string) (*AppConfig, error) {
	def := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.sqlite_path", def.Storage.SQLitePath)
	v.SetDefault("storage.redis_url", def.Storage.RedisURL)
	v.SetDefault("storage.redis_prefix", def.Storage.RedisPrefix)
	v.SetDefault("storage.async", false)
	v.SetDefault("session.mode", def.Session.Mode)
	v.SetDefault("session.backend", def.Session.Backend)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("ui.refresh_seconds", def.UI.RefreshSeconds)

	v.SetEnvPrefix("TEAMSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Session.Mode {
	case "mock", "password":
	default:
		return fmt.Errorf("unknown session mode %q", c.Session.Mode)
	}
	switch c.Session.Backend {
	case SessionBackendKeyring, SessionBackendStorage:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.UI.RefreshSeconds < 0 {
		return fmt.Errorf("ui.refresh_seconds must not be negative, got %d", c.UI.RefreshSeconds)
	}
	return nil
}

// Save writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("session", cfg.Session)
	v.Set("log", cfg.Log)
	v.Set("ui", cfg.UI)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
