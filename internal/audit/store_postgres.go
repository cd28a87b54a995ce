package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events durably for compliance review.
//
// Expected schema:
//
//	CREATE TABLE audit_events (
//	    id         BIGSERIAL PRIMARY KEY,
//	    ts         TIMESTAMPTZ NOT NULL,
//	    session_id TEXT NOT NULL,
//	    request_id TEXT NOT NULL,
//	    client_ip  TEXT NOT NULL,
//	    device     TEXT NOT NULL,
//	    source     TEXT NOT NULL,
//	    code       TEXT NOT NULL,
//	    outcome    TEXT NOT NULL,
//	    reason     TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX audit_events_session_idx ON audit_events (session_id, ts);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed audit store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_events (ts, session_id, request_id, client_ip, device, source, code, outcome, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.Timestamp, event.SessionID, event.RequestID, event.ClientIP,
		event.Device, event.Source, event.Code, event.Outcome, event.Reason,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, session_id, request_id, client_ip, device, source, code, outcome, reason
		 FROM audit_events WHERE session_id = $1 ORDER BY ts`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Timestamp, &e.SessionID, &e.RequestID, &e.ClientIP,
			&e.Device, &e.Source, &e.Code, &e.Outcome, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
