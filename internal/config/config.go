package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Storage backend names.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Corrupt-document policies.
const (
	CorruptPreserve  = "preserve"
	CorruptOverwrite = "overwrite"
)

// DefaultKey is the storage key holding the habit document.
const DefaultKey = "streaklab_v1"

// Config holds all streaklab configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Celebrate  CelebrateConfig  `toml:"celebrate"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultDays int `toml:"default_days"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path,omitempty"`
	Key           string `toml:"key"`
	OnCorrupt     string `toml:"on_corrupt"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	PostgresDSN   string `toml:"postgres_dsn,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme   string `toml:"theme"`
	Palette string `toml:"palette"` // random or cycle, for new habits
}

// Palette modes for new habits.
const (
	PaletteRandom = "random"
	PaletteCycle  = "cycle"
)

// DaemonConfig holds defaults for `streaklab daemon`.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// CelebrateConfig controls where "newly marked" celebrations go.
type CelebrateConfig struct {
	Log      bool   `toml:"log"`
	AMQPURL  string `toml:"amqp_url,omitempty"`
	Exchange string `toml:"exchange,omitempty"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 14,
		},
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			Key:       DefaultKey,
			OnCorrupt: CorruptPreserve,
			RedisAddr: "127.0.0.1:6379",
		},
		Appearance: AppearanceConfig{
			Theme:   "flexoki-dark",
			Palette: PaletteRandom,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8797",
			IntervalSec:  10,
			EventsBuffer: 200,
		},
		Celebrate: CelebrateConfig{
			Log:      true,
			Exchange: "streaklab",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "streaklab")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "streaklab")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the SQLite store
// and daemon runtime files.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "streaklab")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "streaklab")
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "streaklab.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate rejects unknown enum values.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Storage.OnCorrupt {
	case CorruptPreserve, CorruptOverwrite:
	default:
		return fmt.Errorf("unknown on_corrupt policy %q", c.Storage.OnCorrupt)
	}
	switch c.Appearance.Palette {
	case PaletteRandom, PaletteCycle:
	default:
		return fmt.Errorf("unknown palette mode %q", c.Appearance.Palette)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage key must not be empty")
	}
	return nil
}

// applyEnv lets secrets come from the environment instead of the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("STREAKLAB_REDIS_PASSWORD"); v != "" {
		cfg.Storage.RedisPassword = v
	}
	if v := os.Getenv("STREAKLAB_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("STREAKLAB_AMQP_URL"); v != "" {
		cfg.Celebrate.AMQPURL = v
	}
}
