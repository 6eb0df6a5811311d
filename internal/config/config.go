package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all kcalpace configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Source     SourceConfig     `toml:"source"`
	Cache      CacheConfig      `toml:"cache"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Notify     NotifyConfig     `toml:"notify"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	GoalKcal         float64 `toml:"goal_kcal"`
	HistoryWeeks     int     `toml:"history_weeks"`
	RefreshAfterHour int     `toml:"refresh_after_hour"`
	LogLevel         string  `toml:"log_level,omitempty"`
}

// SourceConfig points at the energy sample directory.
type SourceConfig struct {
	SamplesDir string `toml:"samples_dir,omitempty"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir,omitempty"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	RefreshMinutes int    `toml:"refresh_minutes"`
	ListenAddr     string `toml:"listen_addr"`
}

// NotifyConfig holds ntfy settings.
type NotifyConfig struct {
	NtfyTopic      string `toml:"ntfy_topic,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			GoalKcal:         0,
			HistoryWeeks:     10,
			RefreshAfterHour: 6,
		},
		Cache: CacheConfig{
			Backend: "file",
		},
		Daemon: DaemonConfig{
			RefreshMinutes: 15,
			ListenAddr:     "127.0.0.1:8641",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kcalpace")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kcalpace")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the directory cache records are written to. An explicit
// cache.dir setting wins; otherwise the XDG cache home is used.
func CacheDir(cfg Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "kcalpace")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "kcalpace")
}

// SamplesDir returns the configured sample directory, defaulting to
// <data home>/kcalpace/samples when unset.
func SamplesDir(cfg Config) string {
	if cfg.Source.SamplesDir != "" {
		return cfg.Source.SamplesDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kcalpace", "samples")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "kcalpace", "samples")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
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
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetNtfyTopic returns the ntfy topic from env var or config, in that order.
func GetNtfyTopic(cfg Config) string {
	if topic := os.Getenv("KCALPACE_NTFY_TOPIC"); topic != "" {
		return topic
	}
	return cfg.Notify.NtfyTopic
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
