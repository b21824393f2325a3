package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/streaklab/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgxPool is the part of *pgxpool.Pool the backend uses.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres keeps the kv table in a PostgreSQL database.
type Postgres struct {
	pool pgxPool
	log  *zap.Logger
}

// OpenPostgres connects to dsn, pings, and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string, log *zap.Logger) (*Postgres, error) {
	log = logging.OrNop(log)
	if dsn == "" {
		return nil, errors.New("postgres backend needs storage.postgres_dsn or STREAKLAB_POSTGRES_DSN")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	poolCfg.MaxConns = 2
	poolCfg.MaxConnIdleTime = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(connectCtx, postgresSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Debug("postgres store opened", zap.String("host", poolCfg.ConnConfig.Host))
	return &Postgres{pool: pool, log: log}, nil
}

// Get implements KV.
func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("postgres set %q: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written, or the zero time.
func (p *Postgres) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ts time.Time
	err := p.pool.QueryRow(ctx, "SELECT updated_at FROM kv WHERE key = $1", key).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("postgres updated_at %q: %w", key, err)
	}
	return ts, nil
}

// Close implements KV.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
