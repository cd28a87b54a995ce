package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver"
	"schemegate/pkg/platform/sentinel"
)

// Redis key prefix for session locks.
const lockKeyPrefix = "jur:lock:"

// DefaultLockTTL bounds how long a lock outlives its session. The hosting
// session expiry is authoritative; the TTL only prevents orphaned keys.
const DefaultLockTTL = 24 * time.Hour

// RedisStore is a Redis-backed lock store for deployments where multiple
// instances must share session decisions. Write-once semantics come from
// SETNX.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL overrides the orphan-cleanup TTL.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// NewRedis constructs a Redis-backed lock store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: DefaultLockTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type redisLock struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (resolver.Lock, error) {
	raw, err := s.client.Get(ctx, lockKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return resolver.Lock{}, sentinel.ErrNotFound
	}
	if err != nil {
		return resolver.Lock{}, fmt.Errorf("get lock: %w", err)
	}

	var stored redisLock
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return resolver.Lock{}, fmt.Errorf("decode lock: %w", err)
	}
	return resolver.Lock{
		SessionID: sessionID,
		Code:      jurisdiction.Code(stored.Code),
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (s *RedisStore) PutOnce(ctx context.Context, lock resolver.Lock) error {
	value, err := json.Marshal(redisLock{
		Code:      lock.Code.String(),
		CreatedAt: lock.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode lock: %w", err)
	}

	set, err := s.client.SetNX(ctx, lockKeyPrefix+lock.SessionID, value, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("put lock: %w", err)
	}
	if !set {
		return sentinel.ErrConflict
	}
	return nil
}

// Override replaces a lock unconditionally. Reserved for the explicit
// administrative override operation; the pipeline itself only uses PutOnce.
func (s *RedisStore) Override(ctx context.Context, lock resolver.Lock) error {
	value, err := json.Marshal(redisLock{
		Code:      lock.Code.String(),
		CreatedAt: lock.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode lock: %w", err)
	}
	if err := s.client.Set(ctx, lockKeyPrefix+lock.SessionID, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("override lock: %w", err)
	}
	return nil
}
