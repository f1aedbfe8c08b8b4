package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the entitlement evaluator: pure decision logic over the usage
// store and plan resolver. It performs no writes; recording usage is the
// Gate's job.
type Service struct {
	usage    UsageStore
	resolver *PlanResolver
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the wall-clock used to compute the current period.
// Intended for tests exercising period rollover.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an evaluator over the given usage store and resolver.
func NewService(usage UsageStore, resolver *PlanResolver, opts ...ServiceOption) *Service {
	s := &Service{
		usage:    usage,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate decides whether the user may perform a gated action in the
// current UTC period.
func (s *Service) Evaluate(ctx context.Context, userID uuid.UUID) (Decision, error) {
	return s.EvaluateAt(ctx, userID, PeriodOf(s.now()))
}

// EvaluateAt decides against an explicit period. The period is validated
// up front; store and resolver errors propagate unmodified so the caller
// owns the fail-open/fail-closed policy.
func (s *Service) EvaluateAt(ctx context.Context, userID uuid.UUID, period Period) (Decision, error) {
	if err := period.Validate(); err != nil {
		return Decision{}, err
	}

	plan, err := s.resolver.Resolve(ctx, userID, s.now())
	if err != nil {
		return Decision{}, err
	}

	usage, err := s.usage.GetCount(ctx, userID, period)
	if err != nil {
		return Decision{}, err
	}

	if plan.IsUnlimited() {
		// Usage is still reported for observability, never compared.
		return Decision{
			Permitted:    true,
			Limit:        Unlimited,
			Remaining:    Unlimited,
			CurrentUsage: usage,
			PlanCode:     plan.Code,
			Period:       period,
		}, nil
	}

	return Decision{
		Permitted:    usage < plan.MonthlyLimit,
		Limit:        plan.MonthlyLimit,
		Remaining:    max(0, plan.MonthlyLimit-usage),
		CurrentUsage: usage,
		PlanCode:     plan.Code,
		Period:       period,
	}, nil
}

// Usage returns the current count and limit for the user in the current
// period. Limit is Unlimited for uncapped plans.
func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (used, limit int64, err error) {
	plan, err := s.resolver.Resolve(ctx, userID, s.now())
	if err != nil {
		return 0, 0, err
	}
	used, err = s.usage.GetCount(ctx, userID, PeriodOf(s.now()))
	if err != nil {
		return 0, 0, err
	}
	return used, plan.MonthlyLimit, nil
}

// UsageSafe is a convenience wrapper for dashboards. It returns zero values
// if usage cannot be obtained.
func (s *Service) UsageSafe(ctx context.Context, userID uuid.UUID) (used, limit int64) {
	used, limit, _ = s.Usage(ctx, userID)
	return used, limit
}
