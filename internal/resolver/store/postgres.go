package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver"
	"schemegate/pkg/platform/sentinel"
)

// PostgresStore persists session locks in Postgres for deployments that
// already run one and want the audit-friendly durability. Write-once
// semantics come from ON CONFLICT DO NOTHING on the primary key.
//
// Expected schema:
//
//	CREATE TABLE session_locks (
//	    session_id TEXT PRIMARY KEY,
//	    code       TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed lock store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (resolver.Lock, error) {
	lock := resolver.Lock{SessionID: sessionID}
	var code string

	row := s.pool.QueryRow(ctx,
		`SELECT code, created_at FROM session_locks WHERE session_id = $1`,
		sessionID,
	)
	if err := row.Scan(&code, &lock.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resolver.Lock{}, sentinel.ErrNotFound
		}
		return resolver.Lock{}, fmt.Errorf("get lock: %w", err)
	}

	lock.Code = jurisdiction.Code(code)
	return lock, nil
}

func (s *PostgresStore) PutOnce(ctx context.Context, lock resolver.Lock) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO session_locks (session_id, code, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO NOTHING`,
		lock.SessionID, lock.Code.String(), lock.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

// Override replaces a lock unconditionally. Reserved for the explicit
// administrative override operation; the pipeline itself only uses PutOnce.
func (s *PostgresStore) Override(ctx context.Context, lock resolver.Lock) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_locks (session_id, code, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE
		 SET code = EXCLUDED.code, created_at = EXCLUDED.created_at`,
		lock.SessionID, lock.Code.String(), lock.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("override lock: %w", err)
	}
	return nil
}
