// Package config provides configuration types, defaults and loading for rubank.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageNone   = "none"
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config holds all configuration options.
type Config struct {
	Addr    string        `mapstructure:"addr"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Format string `mapstructure:"format"` // "text" (default) or "json"
	Level  string `mapstructure:"level"`
}

// StorageConfig selects where snapshots of the registry are kept.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // none, json or sqlite
	Path    string `mapstructure:"path"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr: ":8080",
		Log:  LogConfig{Format: "text", Level: "info"},
		Storage: StorageConfig{
			Backend: StorageJSON,
			Path:    "data.json",
		},
	}
}

// SetDefaults registers Defaults on v so env vars and files override them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
}

// Load reads an optional config file and RUBANK_* environment variables.
// An empty path looks for rubank.yaml in the working directory; a missing
// file there is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("rubank")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("rubank")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects unknown storage backends.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case StorageNone, StorageJSON, StorageSQLite:
		return nil
	default:
		return fmt.Errorf("invalid storage backend %q (want %s, %s or %s)",
			c.Storage.Backend, StorageNone, StorageJSON, StorageSQLite)
	}
}
