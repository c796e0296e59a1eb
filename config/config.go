// Package config loads kosel settings from a TOML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. KOSEL_LOG_LEVEL.
const EnvPrefix = "KOSEL"

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	KeyObject KeyObjectConfig `mapstructure:"keyobject"`
	View      ViewConfig      `mapstructure:"view"`
	Log       LogConfig       `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// KeyObjectConfig holds document creation settings.
type KeyObjectConfig struct {
	DefaultDescription string `mapstructure:"default_description"`
	DialogTitle        string `mapstructure:"dialog_title"`
}

// ViewConfig holds navigation settings.
type ViewConfig struct {
	Order string `mapstructure:"order"`
	// StackOffset is added to the slice location when looking up the
	// nearest visible image. It may be fractional or negative.
	StackOffset float64 `mapstructure:"stack_offset"`
	TileOffset  int     `mapstructure:"tile_offset"`
}

// LogConfig holds logging settings. Format is "text" or "json".
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultPath returns the config file read when no path is given.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "kosel", "config.toml")
}

func defaultDatabasePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	return filepath.Join(dir, "kosel", "kosel.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("keyobject.default_description", "new KO selection")
	v.SetDefault("keyobject.dialog_title", "Key Object Selection")
	v.SetDefault("view.order", "slice-location")
	v.SetDefault("view.stack_offset", 0.0)
	v.SetDefault("view.tile_offset", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from path (or DefaultPath when empty) and the
// environment. A missing default file is not an error; a missing explicit
// file is.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); explicit || statErr == nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q (want text or json)", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.View.TileOffset < 0 {
		return fmt.Errorf("view.tile_offset must not be negative")
	}
	return nil
}
