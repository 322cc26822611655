package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreImpl implements store.Store using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS checks (
	id          UUID PRIMARY KEY,
	description TEXT NOT NULL,
	keywords    TEXT[] NOT NULL DEFAULT '{}',
	is_for_kids BOOLEAN NOT NULL DEFAULT FALSE,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	provider    TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS checks_created_at_idx ON checks (created_at DESC);

CREATE TABLE IF NOT EXISTS background_jobs (
	id         BIGSERIAL PRIMARY KEY,
	job_id     UUID NOT NULL UNIQUE,
	task_type  TEXT NOT NULL,
	payload    JSONB NOT NULL DEFAULT '{}',
	queue      TEXT NOT NULL,
	status     TEXT NOT NULL,
	check_id   UUID REFERENCES checks (id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`

// NewPrimaryStore creates a new PostgreSQL store and ensures the schema exists.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := dbpool.Exec(ctx, schema); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() error {
	s.db.Close()
	return nil
}
