package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Feed     FeedConfig
	Location LocationConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// FeedConfig holds widget-feed settings.
type FeedConfig struct {
	URL     string
	Timeout int // seconds
}

// LocationConfig selects and tunes the location provider.
type LocationConfig struct {
	Provider  string // ip | static | none
	Endpoint  string // IP geolocation endpoint override
	Latitude  float64
	Longitude float64
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Compact bool
}

// Load reads configuration from file and env. Env var overrides use prefix LOCALDASH_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "localdash", "localdash.db"))
	v.SetDefault("feed.url", "http://localhost:8921")
	v.SetDefault("feed.timeout", 10)
	v.SetDefault("location.provider", "ip")
	v.SetDefault("location.endpoint", "")
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("ui.compact", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LOCALDASH_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "localdash"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LOCALDASH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the settings surface for non-sensitive preferences.
func Save(cfg Config) error {
	path := os.Getenv("LOCALDASH_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "localdash", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("feed.url", cfg.Feed.URL)
	v.Set("feed.timeout", cfg.Feed.Timeout)
	v.Set("location.provider", cfg.Location.Provider)
	v.Set("location.endpoint", cfg.Location.Endpoint)
	v.Set("location.latitude", cfg.Location.Latitude)
	v.Set("location.longitude", cfg.Location.Longitude)
	v.Set("ui.compact", cfg.UI.Compact)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
