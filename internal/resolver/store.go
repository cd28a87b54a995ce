package resolver

import (
	"context"
	"time"

	"schemegate/internal/jurisdiction"
)

// Lock is a write-once, session-scoped resolution decision. Once written it
// is never mutated; expiry follows the hosting session store's own policy.
type Lock struct {
	SessionID string
	Code      jurisdiction.Code
	CreatedAt time.Time
}

// LockStore persists resolved codes for the lifetime of a session. Stores are
// interface-driven so in-memory, Redis, and Postgres implementations can be
// swapped without touching the pipeline.
//
// PutOnce is write-once: a second put for the same session returns
// sentinel.ErrConflict and leaves the stored value untouched. Get returns
// sentinel.ErrNotFound when no lock exists.
type LockStore interface {
	Get(ctx context.Context, sessionID string) (Lock, error)
	PutOnce(ctx context.Context, lock Lock) error
}

// LockOverrider is the optional administrative extension of a LockStore.
// Override replaces a lock unconditionally; it backs the explicit admin
// override operation and is never called by the pipeline.
type LockOverrider interface {
	Override(ctx context.Context, lock Lock) error
}
