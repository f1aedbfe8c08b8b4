package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

// PlanSource loads the plan catalog from the plans table. The resolver
// calls Load once at construction and validates the result, so catalog
// errors surface at startup.
type PlanSource struct {
	pool *pgxpool.Pool
}

// NewPlanSource creates a catalog source over an existing connection pool.
func NewPlanSource(pool *pgxpool.Pool) *PlanSource {
	return &PlanSource{pool: pool}
}

func (s *PlanSource) Load(ctx context.Context) (map[string]entitlement.Plan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, name, description, monthly_limit, is_default FROM plans`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	plans := make(map[string]entitlement.Plan)
	for rows.Next() {
		var p entitlement.Plan
		if err := rows.Scan(&p.Code, &p.Name, &p.Description, &p.MonthlyLimit, &p.Default); err != nil {
			return nil, storeErr(err)
		}
		plans[p.Code] = p
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return plans, nil
}

// UpsertPlan creates or updates a plan. Administrative use; the resolver
// does not observe catalog changes until it is reconstructed.
func (s *PlanSource) UpsertPlan(ctx context.Context, p entitlement.Plan) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO plans (code, name, description, monthly_limit, is_default)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (code)
		 DO UPDATE SET name = $2, description = $3, monthly_limit = $4, is_default = $5`,
		p.Code, p.Name, p.Description, p.MonthlyLimit, p.Default,
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// AssignmentSource resolves a user's active plan from the
// user_plan_assignments table.
type AssignmentSource struct {
	pool *pgxpool.Pool
}

// NewAssignmentSource creates an assignment source over an existing pool.
func NewAssignmentSource(pool *pgxpool.Pool) *AssignmentSource {
	return &AssignmentSource{pool: pool}
}

func (s *AssignmentSource) ActivePlanCode(ctx context.Context, userID uuid.UUID, asOf time.Time) (string, error) {
	var code string
	err := s.pool.QueryRow(ctx,
		`SELECT plan_code FROM user_plan_assignments
		 WHERE user_id = $1
		   AND active_from <= $2
		   AND (active_until IS NULL OR active_until > $2)
		 ORDER BY active_from DESC
		 LIMIT 1`,
		userID, asOf.UTC(),
	).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", entitlement.ErrNoActiveAssignment
		}
		return "", storeErr(err)
	}
	return code, nil
}

// Assign ends any open assignment for the user and starts a new one,
// preserving the at-most-one-active invariant. Runs in a transaction so a
// concurrent reader never observes two open assignments.
func (s *AssignmentSource) Assign(ctx context.Context, userID uuid.UUID, planCode string, from time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`UPDATE user_plan_assignments SET active_until = $2
		 WHERE user_id = $1 AND (active_until IS NULL OR active_until > $2)`,
		userID, from.UTC(),
	); err != nil {
		return storeErr(err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_plan_assignments (user_id, plan_code, active_from, active_until)
		 VALUES ($1, $2, $3, NULL)`,
		userID, planCode, from.UTC(),
	); err != nil {
		return storeErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// End closes the user's open assignment at the given instant, dropping them
// back to the default plan.
func (s *AssignmentSource) End(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE user_plan_assignments SET active_until = $2
		 WHERE user_id = $1 AND (active_until IS NULL OR active_until > $2)`,
		userID, at.UTC(),
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
