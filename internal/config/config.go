// Package config loads ptstrack settings from TOML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const appName = "ptstrack"

// Environment overrides.
const (
	EnvDBPath   = "PTSTRACK_DB"
	EnvLogLevel = "PTSTRACK_LOG_LEVEL"
)

// Config holds all ptstrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath        string `toml:"db_path,omitempty"`
	DefaultTarget int    `toml:"default_target"`
	TopHeroes     int    `toml:"top_heroes"`
}

// ForecastConfig tunes the days-to-target forecast.
type ForecastConfig struct {
	MinMatches int `toml:"min_matches"`
}

// DaemonConfig holds the status daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`

	// Browser origins allowed to read the API. Empty disables CORS.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultTarget: 10000,
			TopHeroes:     5,
		},
		Forecast: ForecastConfig{
			MinMatches: 5,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  10,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 5,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultDBPath returns the state database location used when nothing
// else is configured.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "state.db")
}

// Load reads .env and the config file, returning defaults if the file
// doesn't exist.
func Load() (Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DBPath returns the state database path from env var, config or the
// default, in that order.
func DBPath(cfg Config) string {
	if p := os.Getenv(EnvDBPath); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return DefaultDBPath()
}

// LogLevel returns the log level from env var or config.
func LogLevel(cfg Config) string {
	if l := os.Getenv(EnvLogLevel); l != "" {
		return l
	}
	return cfg.Log.Level
}
