package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Fatalf("Backend = %q, want %q", cfg.Storage.Backend, BackendSQLite)
	}
	if cfg.Storage.Key != DefaultKey {
		t.Fatalf("Key = %q, want %q", cfg.Storage.Key, DefaultKey)
	}
	if cfg.Storage.OnCorrupt != CorruptPreserve {
		t.Fatalf("OnCorrupt = %q, want %q", cfg.Storage.OnCorrupt, CorruptPreserve)
	}
	if Exists() {
		t.Fatal("Exists() = true with no file on disk")
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendRedis
	cfg.Storage.RedisDB = 3
	cfg.Appearance.Theme = "tokyo-night"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Storage.Backend != BackendRedis || got.Storage.RedisDB != 3 {
		t.Fatalf("storage = %+v, want redis db 3", got.Storage)
	}
	if got.Appearance.Theme != "tokyo-night" {
		t.Fatalf("Theme = %q, want tokyo-night", got.Appearance.Theme)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "streaklab"), 0o750); err != nil {
		t.Fatal(err)
	}
	body := "[storage]\nbackend = \"floppy\"\n"
	if err := os.WriteFile(Path(), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "floppy") {
		t.Fatalf("Load error = %v, want unknown backend", err)
	}
}

func TestEnvOverridesSecrets(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STREAKLAB_POSTGRES_DSN", "postgres://u:p@db/streaks")
	t.Setenv("STREAKLAB_AMQP_URL", "amqp://guest:guest@mq:5672/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.PostgresDSN != "postgres://u:p@db/streaks" {
		t.Fatalf("PostgresDSN = %q", cfg.Storage.PostgresDSN)
	}
	if cfg.Celebrate.AMQPURL != "amqp://guest:guest@mq:5672/" {
		t.Fatalf("AMQPURL = %q", cfg.Celebrate.AMQPURL)
	}
}

func TestDataDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	if got, want := DefaultDBPath(), filepath.Join(dir, "streaklab", "streaklab.db"); got != want {
		t.Fatalf("DefaultDBPath = %s, want %s", got, want)
	}
}

func TestValidatePaletteMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Appearance.Palette = PaletteCycle
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate(cycle) = %v", err)
	}
	cfg.Appearance.Palette = "rainbow"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted palette mode rainbow")
	}
}
