package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/streaklab/internal/config"
)

func TestSQLiteGetSet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "streaklab.db")

	db, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, ok, err := db.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) ok=%v err=%v, want absent", ok, err)
	}

	if err := db.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := db.Get(ctx, "k")
	if err != nil || !ok || v != "two" {
		t.Fatalf("Get = %q, %v, %v; want two", v, ok, err)
	}

	ts, err := db.UpdatedAt(ctx, "k")
	if err != nil || ts.IsZero() {
		t.Fatalf("UpdatedAt = %v, %v", ts, err)
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "streaklab.db")

	db, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := db.Set(ctx, config.DefaultKey, `{"habits":[]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = db.Close()

	kv, err := Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, Path: path}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = kv.Close() }()

	v, ok, err := kv.Get(ctx, config.DefaultKey)
	if err != nil || !ok || v != `{"habits":[]}` {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.StorageConfig{Backend: "tape"}, nil); err == nil {
		t.Fatal("Open accepted unknown backend")
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: config.BackendPostgres}, nil)
	if err == nil {
		t.Fatal("Open(postgres) without dsn succeeded")
	}
}
