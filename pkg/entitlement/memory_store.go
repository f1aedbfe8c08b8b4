package entitlement

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type counterKey struct {
	userID uuid.UUID
	period Period
}

type counter struct {
	count     int64
	updatedAt time.Time
}

// MemoryUsageStore implements UsageStore with an in-process map. Increments
// serialize on the mutex, which satisfies the no-lost-updates requirement
// within a single process. Intended for tests and single-instance
// deployments; multi-instance deployments need one of the database-backed
// stores.
type MemoryUsageStore struct {
	mu       sync.RWMutex
	counters map[counterKey]*counter
}

// NewMemoryUsageStore returns an empty in-memory usage store.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{
		counters: make(map[counterKey]*counter),
	}
}

func (ms *MemoryUsageStore) GetCount(ctx context.Context, userID uuid.UUID, period Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	c, exists := ms.counters[counterKey{userID, period}]
	if !exists {
		return 0, nil
	}
	return c.count, nil
}

func (ms *MemoryUsageStore) IncrementAndGet(ctx context.Context, userID uuid.UUID, period Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := counterKey{userID, period}
	c, exists := ms.counters[key]
	if !exists {
		c = &counter{}
		ms.counters[key] = c
	}
	c.count++
	c.updatedAt = time.Now().UTC()
	return c.count, nil
}

func (ms *MemoryUsageStore) Reset(ctx context.Context, userID uuid.UUID, period Period) error {
	if err := period.Validate(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.counters, counterKey{userID, period})
	return nil
}

// PruneBefore deletes counters for periods older than the cutoff and
// returns the number of removed entries.
func (ms *MemoryUsageStore) PruneBefore(ctx context.Context, cutoff Period) (int64, error) {
	if err := cutoff.Validate(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	var removed int64
	for key := range ms.counters {
		if key.period.Before(cutoff) {
			delete(ms.counters, key)
			removed++
		}
	}
	return removed, nil
}

// MemoryAssignmentSource implements AssignmentSource with an in-process map.
type MemoryAssignmentSource struct {
	mu          sync.RWMutex
	assignments map[uuid.UUID][]Assignment
}

// NewMemoryAssignmentSource returns an empty in-memory assignment source.
func NewMemoryAssignmentSource() *MemoryAssignmentSource {
	return &MemoryAssignmentSource{
		assignments: make(map[uuid.UUID][]Assignment),
	}
}

// Assign records a plan assignment for the user. Passing a nil until leaves
// the assignment open-ended.
func (s *MemoryAssignmentSource) Assign(userID uuid.UUID, planCode string, from time.Time, until *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[userID] = append(s.assignments[userID], Assignment{
		UserID:      userID,
		PlanCode:    planCode,
		ActiveFrom:  from,
		ActiveUntil: until,
	})
}

// End closes every open assignment for the user at the given instant.
func (s *MemoryAssignmentSource) End(userID uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.assignments[userID] {
		if a.ActiveUntil == nil || a.ActiveUntil.After(at) {
			until := at
			s.assignments[userID][i].ActiveUntil = &until
		}
	}
}

func (s *MemoryAssignmentSource) ActivePlanCode(ctx context.Context, userID uuid.UUID, asOf time.Time) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assignments[userID] {
		if a.ActiveAt(asOf) {
			return a.PlanCode, nil
		}
	}
	return "", ErrNoActiveAssignment
}
