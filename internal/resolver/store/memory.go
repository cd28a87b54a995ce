// Package store provides LockStore implementations: in-memory for single
// instance deployments and tests, Redis and Postgres for shared state.
package store

import (
	"context"
	"sync"

	"schemegate/internal/resolver"
	"schemegate/pkg/platform/sentinel"
)

// InMemory keeps session locks in process memory. It intentionally favors
// clarity over performance.
type InMemory struct {
	mu    sync.RWMutex
	locks map[string]resolver.Lock
}

func NewInMemory() *InMemory {
	return &InMemory{locks: make(map[string]resolver.Lock)}
}

func (s *InMemory) Get(_ context.Context, sessionID string) (resolver.Lock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lock, ok := s.locks[sessionID]; ok {
		return lock, nil
	}
	return resolver.Lock{}, sentinel.ErrNotFound
}

func (s *InMemory) PutOnce(_ context.Context, lock resolver.Lock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[lock.SessionID]; ok {
		return sentinel.ErrConflict
	}
	s.locks[lock.SessionID] = lock
	return nil
}

// Override replaces a lock unconditionally. Reserved for the explicit
// administrative override operation; the pipeline itself only uses PutOnce.
func (s *InMemory) Override(_ context.Context, lock resolver.Lock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[lock.SessionID] = lock
	return nil
}
