package entitlement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Action is a protected operation executed under the gate.
type Action func(ctx context.Context) error

// Gate wraps protected operations with the evaluate, execute, record-usage
// sequence. Usage is committed strictly after the wrapped action succeeds:
// a failing action never consumes quota, so the caller can retry without
// being penalized for a system fault.
type Gate struct {
	svc      *Service
	failOpen bool
	log      *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithFailOpen permits actions when the usage or plan store is unreachable
// instead of denying them. The default is fail-closed: quota-limited actions
// are denied during a store outage to avoid unbounded use. Fail-open is for
// low-stakes actions where availability beats strict enforcement; every
// fail-open pass is logged.
func WithFailOpen() GateOption {
	return func(g *Gate) {
		g.failOpen = true
	}
}

// WithLogger sets the logger used for fail-open passes and unrecorded usage.
func WithLogger(log *slog.Logger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGate creates a gate over the given evaluator.
func NewGate(svc *Service, opts ...GateOption) *Gate {
	g := &Gate{
		svc: svc,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do evaluates the user's entitlement, runs the action if permitted, and
// records usage once the action completes without error.
//
// On quota exhaustion the action is never invoked and Do returns
// ErrQuotaExceeded alongside the denying decision, so callers can render
// remaining/limit in upgrade messaging. On store outage the configured
// policy applies: fail-closed propagates the store error without running
// the action, fail-open runs it and records usage best-effort.
func (g *Gate) Do(ctx context.Context, userID uuid.UUID, action Action) (Decision, error) {
	if action == nil {
		return Decision{}, ErrNilAction
	}

	period := PeriodOf(g.svc.now())

	decision, err := g.svc.EvaluateAt(ctx, userID, period)
	if err != nil {
		if !g.failOpen || !errors.Is(err, ErrStoreUnavailable) {
			return Decision{}, err
		}
		g.log.WarnContext(ctx, "entitlement store unavailable, failing open",
			"user_id", userID, "period", period, "error", err)
		if actErr := action(ctx); actErr != nil {
			return Decision{}, actErr
		}
		if _, incErr := g.svc.usage.IncrementAndGet(ctx, userID, period); incErr != nil {
			g.log.ErrorContext(ctx, "usage not recorded after fail-open pass",
				"user_id", userID, "period", period, "error", incErr)
		}
		return Decision{Permitted: true, Period: period}, nil
	}

	if !decision.Permitted {
		return decision, ErrQuotaExceeded
	}

	if err := action(ctx); err != nil {
		// Quota untouched: the action did not complete.
		return decision, err
	}

	count, err := g.svc.usage.IncrementAndGet(ctx, userID, period)
	if err != nil {
		// The action already succeeded; surface the store error so the
		// caller knows this use was not counted.
		g.log.ErrorContext(ctx, "usage not recorded after successful action",
			"user_id", userID, "period", period, "error", err)
		return decision, err
	}

	decision.CurrentUsage = count
	if !decision.IsUnlimited() {
		decision.Remaining = max(0, decision.Limit-count)
	}
	return decision, nil
}
