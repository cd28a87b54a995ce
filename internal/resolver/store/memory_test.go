package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver"
	"schemegate/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func newLock(code jurisdiction.Code) resolver.Lock {
	return resolver.Lock{
		SessionID: uuid.NewString(),
		Code:      code,
		CreatedAt: time.Now(),
	}
}

func (s *InMemorySuite) TestPutAndGet() {
	lock := newLock(jurisdiction.Rajasthan)
	s.Require().NoError(s.store.PutOnce(s.ctx, lock))

	found, err := s.store.Get(s.ctx, lock.SessionID)
	s.Require().NoError(err)
	s.Equal(jurisdiction.Rajasthan, found.Code)
}

func (s *InMemorySuite) TestMissingSessionIsNotFound() {
	_, err := s.store.Get(s.ctx, "no-such-session")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestSecondPutIsConflictAndNoOverwrite() {
	lock := newLock(jurisdiction.Delhi)
	s.Require().NoError(s.store.PutOnce(s.ctx, lock))

	second := lock
	second.Code = jurisdiction.Karnataka
	err := s.store.PutOnce(s.ctx, second)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	found, err := s.store.Get(s.ctx, lock.SessionID)
	s.Require().NoError(err)
	s.Equal(jurisdiction.Delhi, found.Code, "conflicting put must not overwrite")
}

func (s *InMemorySuite) TestConcurrentFirstWritesExactlyOneWins() {
	sessionID := uuid.NewString()
	codes := []jurisdiction.Code{jurisdiction.Delhi, jurisdiction.Rajasthan, jurisdiction.Kerala}

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(code jurisdiction.Code) {
			defer wg.Done()
			err := s.store.PutOnce(s.ctx, resolver.Lock{
				SessionID: sessionID,
				Code:      code,
				CreatedAt: time.Now(),
			})
			if err == nil {
				wins.Add(1)
			} else {
				s.ErrorIs(err, sentinel.ErrConflict)
			}
		}(codes[i%len(codes)])
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "write-once must admit exactly one writer")
}

func (s *InMemorySuite) TestOverrideReplacesLock() {
	lock := newLock(jurisdiction.Delhi)
	s.Require().NoError(s.store.PutOnce(s.ctx, lock))

	replaced := lock
	replaced.Code = jurisdiction.Karnataka
	s.Require().NoError(s.store.Override(s.ctx, replaced))

	found, err := s.store.Get(s.ctx, lock.SessionID)
	s.Require().NoError(err)
	s.Equal(jurisdiction.Karnataka, found.Code)
}
