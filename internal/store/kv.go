// Package store persists the habit document in a key-value backend.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/streaklab/internal/config"

	"go.uber.org/zap"
)

// KV is a string key-value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Timestamped is implemented by backends that record write times.
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// Open connects to the backend named in cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (KV, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultDBPath()
		}
		return OpenSQLite(path, log)
	case config.BackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN, log)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
