package pgstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

// UsageStore implements entitlement.UsageStore on PostgreSQL.
//
// Increments use a single INSERT ... ON CONFLICT DO UPDATE statement so
// concurrent callers for the same (user, period) key serialize inside the
// database; no application-level read-modify-write is involved.
type UsageStore struct {
	pool *pgxpool.Pool
}

// NewUsageStore creates a store over an existing connection pool. The pool
// is constructed once at process start and shared by all callers.
func NewUsageStore(pool *pgxpool.Pool) *UsageStore {
	return &UsageStore{pool: pool}
}

func (s *UsageStore) GetCount(ctx context.Context, userID uuid.UUID, period entitlement.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count FROM usage_counters WHERE user_id = $1 AND period = $2`,
		userID, string(period),
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	var count int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO usage_counters (user_id, period, count, updated_at)
		 VALUES ($1, $2, 1, now())
		 ON CONFLICT (user_id, period)
		 DO UPDATE SET count = usage_counters.count + 1, updated_at = now()
		 RETURNING count`,
		userID, string(period),
	).Scan(&count)
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

func (s *UsageStore) Reset(ctx context.Context, userID uuid.UUID, period entitlement.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`DELETE FROM usage_counters WHERE user_id = $1 AND period = $2`,
		userID, string(period),
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// PruneBefore deletes counters for periods older than the cutoff. Counters
// are otherwise never removed; this exists for storage hygiene on
// long-running deployments.
func (s *UsageStore) PruneBefore(ctx context.Context, cutoff entitlement.Period) (int64, error) {
	if err := cutoff.Validate(); err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM usage_counters WHERE period < $1`,
		string(cutoff),
	)
	if err != nil {
		return 0, storeErr(err)
	}
	return tag.RowsAffected(), nil
}

// storeErr tags transport and query failures so callers can apply their
// fail-open/fail-closed policy via errors.Is(err, ErrStoreUnavailable).
func storeErr(err error) error {
	return errors.Join(entitlement.ErrStoreUnavailable, err)
}
