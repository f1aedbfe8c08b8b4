package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanResolver maps a user to their effective plan at a point in time.
//
// The plan catalog is loaded once at construction and validated: every limit
// must be non-negative or the Unlimited sentinel, and exactly one plan must
// be marked as default. A missing or duplicated default is a configuration
// error surfaced at startup, never per-request.
type PlanResolver struct {
	// Treated as immutable after construction; thread-safety relies on this.
	plans       map[string]Plan
	defaultCode string
	assignments AssignmentSource
}

// NewPlanResolver loads plans from src and validates the catalog.
// The assignments source may be nil, in which case every user resolves to
// the default plan (degenerate but valid for deployments without paid tiers).
func NewPlanResolver(ctx context.Context, src PlanSource, assignments AssignmentSource) (*PlanResolver, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	defaultCode := ""
	for code, plan := range plans {
		if plan.MonthlyLimit < 0 && plan.MonthlyLimit != Unlimited {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative monthly limit: %d", code, plan.MonthlyLimit))
		}
		if plan.Default {
			if defaultCode != "" {
				return nil, errors.Join(ErrMultipleDefaultPlans,
					fmt.Errorf("both %s and %s are marked default", defaultCode, code))
			}
			defaultCode = code
		}
	}
	if defaultCode == "" {
		return nil, ErrNoDefaultPlan
	}

	return &PlanResolver{
		plans:       plans,
		defaultCode: defaultCode,
		assignments: assignments,
	}, nil
}

// Resolve returns the plan in effect for the user at asOf. Users without an
// active assignment get the default plan. An assignment referencing a plan
// missing from the catalog is reported as ErrPlanNotFound rather than being
// silently downgraded.
func (r *PlanResolver) Resolve(ctx context.Context, userID uuid.UUID, asOf time.Time) (Plan, error) {
	if r.assignments == nil {
		return r.plans[r.defaultCode], nil
	}

	code, err := r.assignments.ActivePlanCode(ctx, userID, asOf)
	if err != nil {
		if errors.Is(err, ErrNoActiveAssignment) {
			return r.plans[r.defaultCode], nil
		}
		return Plan{}, err
	}

	plan, exists := r.plans[code]
	if !exists {
		return Plan{}, errors.Join(ErrPlanNotFound, fmt.Errorf("assigned plan %s not in catalog", code))
	}
	return plan, nil
}

// DefaultPlan returns the plan applied to users without an assignment.
func (r *PlanResolver) DefaultPlan() Plan {
	return r.plans[r.defaultCode]
}

// VerifyPlan checks that a plan code exists in the catalog.
func (r *PlanResolver) VerifyPlan(code string) error {
	if _, exists := r.plans[code]; !exists {
		return ErrPlanNotFound
	}
	return nil
}
