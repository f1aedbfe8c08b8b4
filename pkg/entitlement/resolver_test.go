package entitlement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

func testPlans() []entitlement.Plan {
	return []entitlement.Plan{
		{Code: "free", Name: "Free", MonthlyLimit: 3, Default: true},
		{Code: "premium", Name: "Premium", MonthlyLimit: entitlement.Unlimited},
		{Code: "trial", Name: "Trial", MonthlyLimit: 0},
	}
}

// brokenSource fails on Load.
type brokenSource struct {
	err error
}

func (s *brokenSource) Load(ctx context.Context) (map[string]entitlement.Plan, error) {
	return nil, s.err
}

func TestNewPlanResolver(t *testing.T) {
	t.Parallel()

	t.Run("successful construction", func(t *testing.T) {
		t.Parallel()

		resolver, err := entitlement.NewPlanResolver(context.Background(),
			entitlement.NewStaticSource(testPlans()...), nil)

		require.NoError(t, err)
		assert.Equal(t, "free", resolver.DefaultPlan().Code)
	})

	t.Run("no default plan is fatal", func(t *testing.T) {
		t.Parallel()

		source := entitlement.NewStaticSource(
			entitlement.Plan{Code: "free", MonthlyLimit: 3},
		)

		_, err := entitlement.NewPlanResolver(context.Background(), source, nil)
		assert.ErrorIs(t, err, entitlement.ErrNoDefaultPlan)
	})

	t.Run("multiple default plans are fatal", func(t *testing.T) {
		t.Parallel()

		source := entitlement.NewStaticSource(
			entitlement.Plan{Code: "free", MonthlyLimit: 3, Default: true},
			entitlement.Plan{Code: "starter", MonthlyLimit: 5, Default: true},
		)

		_, err := entitlement.NewPlanResolver(context.Background(), source, nil)
		assert.ErrorIs(t, err, entitlement.ErrMultipleDefaultPlans)
	})

	t.Run("negative non-sentinel limit is rejected", func(t *testing.T) {
		t.Parallel()

		source := entitlement.NewStaticSource(
			entitlement.Plan{Code: "free", MonthlyLimit: -2, Default: true},
		)

		_, err := entitlement.NewPlanResolver(context.Background(), source, nil)
		assert.ErrorIs(t, err, entitlement.ErrInvalidPlanConfiguration)
	})

	t.Run("source failure is wrapped", func(t *testing.T) {
		t.Parallel()

		_, err := entitlement.NewPlanResolver(context.Background(),
			&brokenSource{err: errors.New("boom")}, nil)
		assert.ErrorIs(t, err, entitlement.ErrFailedToLoadPlans)
	})
}

func TestPlanResolver_Resolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	t.Run("nil assignments source resolves to default", func(t *testing.T) {
		t.Parallel()

		resolver, err := entitlement.NewPlanResolver(context.Background(),
			entitlement.NewStaticSource(testPlans()...), nil)
		require.NoError(t, err)

		plan, err := resolver.Resolve(context.Background(), uuid.New(), now)
		require.NoError(t, err)
		assert.Equal(t, "free", plan.Code)
	})

	t.Run("no active assignment falls back to default", func(t *testing.T) {
		t.Parallel()

		resolver, err := entitlement.NewPlanResolver(context.Background(),
			entitlement.NewStaticSource(testPlans()...), entitlement.NewMemoryAssignmentSource())
		require.NoError(t, err)

		plan, err := resolver.Resolve(context.Background(), uuid.New(), now)
		require.NoError(t, err)
		assert.Equal(t, "free", plan.Code)
	})

	t.Run("active assignment wins", func(t *testing.T) {
		t.Parallel()

		assignments := entitlement.NewMemoryAssignmentSource()
		userID := uuid.New()
		assignments.Assign(userID, "premium", now.AddDate(0, -1, 0), nil)

		resolver, err := entitlement.NewPlanResolver(context.Background(),
			entitlement.NewStaticSource(testPlans()...), assignments)
		require.NoError(t, err)

		plan, err := resolver.Resolve(context.Background(), userID, now)
		require.NoError(t, err)
		assert.Equal(t, "premium", plan.Code)
		assert.True(t, plan.IsUnlimited())
	})

	t.Run("assignment to unknown plan is an error", func(t *testing.T) {
		t.Parallel()

		assignments := entitlement.NewMemoryAssignmentSource()
		userID := uuid.New()
		assignments.Assign(userID, "gold", now.AddDate(0, -1, 0), nil)

		resolver, err := entitlement.NewPlanResolver(context.Background(),
			entitlement.NewStaticSource(testPlans()...), assignments)
		require.NoError(t, err)

		_, err = resolver.Resolve(context.Background(), userID, now)
		assert.ErrorIs(t, err, entitlement.ErrPlanNotFound)
	})
}

func TestPlanResolver_VerifyPlan(t *testing.T) {
	t.Parallel()

	resolver, err := entitlement.NewPlanResolver(context.Background(),
		entitlement.NewStaticSource(testPlans()...), nil)
	require.NoError(t, err)

	assert.NoError(t, resolver.VerifyPlan("premium"))
	assert.ErrorIs(t, resolver.VerifyPlan("gold"), entitlement.ErrPlanNotFound)
}
