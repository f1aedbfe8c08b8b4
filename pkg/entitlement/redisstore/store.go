package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

// defaultTTL keeps counters around long enough for reporting on past
// periods while letting Redis reclaim stale keys without explicit pruning.
const defaultTTL = 90 * 24 * time.Hour

// UsageStore implements entitlement.UsageStore on Redis. INCR is atomic on
// the server, which satisfies the no-lost-updates requirement across any
// number of process instances.
type UsageStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Option configures a UsageStore.
type Option func(*UsageStore)

// WithTTL overrides how long counters outlive their last increment.
// A zero duration disables expiry entirely.
func WithTTL(ttl time.Duration) Option {
	return func(s *UsageStore) {
		s.ttl = ttl
	}
}

// NewUsageStore creates a store over an existing Redis client.
func NewUsageStore(client *redis.Client, opts ...Option) *UsageStore {
	s := &UsageStore{
		client: client,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(userID uuid.UUID, period entitlement.Period) string {
	return fmt.Sprintf("entitlement:usage:%s:%s", userID, period)
}

func (s *UsageStore) GetCount(ctx context.Context, userID uuid.UUID, period entitlement.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	count, err := s.client.Get(ctx, key(userID, period)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, storeErr(err)
	}
	return count, nil
}

func (s *UsageStore) IncrementAndGet(ctx context.Context, userID uuid.UUID, period entitlement.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	k := key(userID, period)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, storeErr(err)
	}
	return incr.Val(), nil
}

func (s *UsageStore) Reset(ctx context.Context, userID uuid.UUID, period entitlement.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}

	if err := s.client.Del(ctx, key(userID, period)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return errors.Join(entitlement.ErrStoreUnavailable, err)
}
