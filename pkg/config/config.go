// Package config handles configuration loading and management for goalist.
// Precedence (highest to lowest): GOALIST_* environment variables, the user
// config file (~/.config/goalist/config.yaml), built-in defaults. Command
// line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/stefanpenner/goalist/pkg/store"
	"github.com/stefanpenner/goalist/pkg/tracker"
)

// Record store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override, e.g. GOALIST_BOARD_COLUMNS.
const EnvPrefix = "GOALIST"

// Config holds all configuration for goalist.
type Config struct {
	DataDir  string      `mapstructure:"data_dir"`
	CacheDir string      `mapstructure:"cache_dir"`
	Backend  string      `mapstructure:"backend"`
	UserID   string      `mapstructure:"user_id"`
	Board    BoardConfig `mapstructure:"board"`
	Log      LogConfig   `mapstructure:"log"`
}

// BoardConfig holds dashboard preferences.
type BoardConfig struct {
	Columns          int `mapstructure:"columns"`
	ArchiveAfterDays int `mapstructure:"archive_after_days"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"data_dir",
	"cache_dir",
	"backend",
	"user_id",
	"board.columns",
	"board.archive_after_days",
	"log.level",
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DataDir:  store.DefaultDataDir(),
		CacheDir: store.DefaultCacheDir(),
		Backend:  BackendFile,
		Board: BoardConfig{
			Columns:          tracker.DefaultColumns,
			ArchiveAfterDays: 0,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the user config file and applies environment overrides.
func Load() (*Config, error) {
	return LoadFromPath(UserConfigPath())
}

// LoadFromPath reads the config file at path, which may be missing, and
// applies environment overrides.
func LoadFromPath(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return unmarshal(v)
}

// Set validates value for key, then writes it to the config file at path.
// Environment overrides are not persisted.
func Set(path, key, value string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.set(key, value); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for _, key := range Keys {
		val, _ := cfg.value(key)
		v.Set(key, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(userConfigDir(), "config.yaml")
}

// Get returns the value of key formatted for display.
func (c *Config) Get(key string) (string, error) {
	val, err := c.value(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(val), nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Backend != BackendFile && c.Backend != BackendSQLite {
		return store.Invalid("backend", "must be %q or %q, got %q", BackendFile, BackendSQLite, c.Backend)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return store.Invalid("data_dir", "must not be empty")
	}
	if err := tracker.ValidateColumns(c.Board.Columns); err != nil {
		return err
	}
	if c.Board.ArchiveAfterDays < 0 {
		return store.Invalid("board.archive_after_days", "must not be negative, got %d", c.Board.ArchiveAfterDays)
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return store.Invalid("log.level", "must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}
	return nil
}

func (c *Config) value(key string) (any, error) {
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "backend":
		return c.Backend, nil
	case "user_id":
		return c.UserID, nil
	case "board.columns":
		return c.Board.Columns, nil
	case "board.archive_after_days":
		return c.Board.ArchiveAfterDays, nil
	case "log.level":
		return c.Log.Level, nil
	}
	return nil, unknownKey(key)
}

func (c *Config) set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "data_dir":
		c.DataDir = value
	case "cache_dir":
		c.CacheDir = value
	case "backend":
		c.Backend = strings.ToLower(value)
	case "user_id":
		c.UserID = value
	case "board.columns", "board.archive_after_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return store.Invalid(key, "must be a whole number, got %q", value)
		}
		if key == "board.columns" {
			c.Board.Columns = n
		} else {
			c.Board.ArchiveAfterDays = n
		}
	case "log.level":
		c.Log.Level = strings.ToLower(value)
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	return store.Invalid("key", "unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}
	return v, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.CacheDir = expandHome(cfg.CacheDir)
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("user_id", d.UserID)

	v.SetDefault("board.columns", d.Board.Columns)
	v.SetDefault("board.archive_after_days", d.Board.ArchiveAfterDays)

	v.SetDefault("log.level", d.Log.Level)
}

// userConfigDir returns the XDG config directory for goalist.
func userConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "goalist")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "goalist")
	}
	return filepath.Join(home, ".config", "goalist")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
