package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageStore persists per-user per-period action counters. Implementations
// must make IncrementAndGet atomic at the storage layer: two concurrent
// increments for the same (user, period) key must both be reflected in the
// final count. Read-modify-write without an atomic upsert or compare-and-set
// is not an acceptable implementation strategy.
//
// When the backing store cannot be reached or a call times out,
// implementations return an error wrapping ErrStoreUnavailable so that
// callers can apply their fail-open/fail-closed policy.
type UsageStore interface {
	// GetCount returns the current count for the key, 0 if no row exists.
	GetCount(ctx context.Context, userID uuid.UUID, period Period) (int64, error)

	// IncrementAndGet atomically creates-or-increments the counter by 1 and
	// returns the new value.
	IncrementAndGet(ctx context.Context, userID uuid.UUID, period Period) (int64, error)

	// Reset sets the counter for a specific period back to 0. Administrative
	// and test use only; normal operation relies on period rollover.
	Reset(ctx context.Context, userID uuid.UUID, period Period) error
}

// UsagePruner is optionally implemented by stores that support deleting
// counters for periods older than a cutoff, for storage hygiene.
type UsagePruner interface {
	PruneBefore(ctx context.Context, cutoff Period) (int64, error)
}

// PlanSource loads the plan catalog. Plans are read once at resolver
// construction and treated as immutable afterwards.
type PlanSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// AssignmentSource looks up which plan a user is currently assigned to.
// Implementations return ErrNoActiveAssignment (possibly wrapped) when the
// user has no assignment in effect; the resolver then falls back to the
// default plan.
type AssignmentSource interface {
	ActivePlanCode(ctx context.Context, userID uuid.UUID, asOf time.Time) (string, error)
}
