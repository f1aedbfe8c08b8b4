// Package entitlement provides monthly usage-based quota gating for
// marketplace actions such as responding to a request or revealing contact
// details. It answers one question: may this user perform a gated action
// right now, and record that they did.
//
// Key concepts:
//
//   - Period: a UTC calendar-month bucket ("202507") identifying which
//     counter an action counts against. Rollover is implicit.
//   - Plan: a subscription tier with a MonthlyLimit; Unlimited (-1)
//     disables the cap, 0 permits nothing.
//   - UsageStore: durable, race-safe per-user per-period counters with an
//     atomic create-or-increment.
//   - PlanResolver: maps a user to their active plan, falling back to the
//     single default plan.
//   - Service: the evaluator producing a Decision (permitted, remaining,
//     limit, current usage) without side effects.
//   - Gate: wraps a protected action with evaluate, execute, record-usage;
//     a failing action never consumes quota.
//
// Basic usage:
//
//	source := entitlement.NewStaticSource(
//	    entitlement.Plan{Code: "free", Name: "Free", MonthlyLimit: 3, Default: true},
//	    entitlement.Plan{Code: "premium", Name: "Premium", MonthlyLimit: entitlement.Unlimited},
//	)
//
//	resolver, err := entitlement.NewPlanResolver(ctx, source, assignments)
//	if err != nil {
//	    // fatal: misconfigured plan catalog
//	}
//
//	svc := entitlement.NewService(store, resolver)
//	gate := entitlement.NewGate(svc)
//
//	decision, err := gate.Do(ctx, userID, func(ctx context.Context) error {
//	    return responses.Create(ctx, reply)
//	})
//	if errors.Is(err, entitlement.ErrQuotaExceeded) {
//	    // render upgrade messaging from decision.Limit
//	}
//
// Storage backends live in the pgstore, redisstore, and mongostore
// subpackages; the in-memory implementations in this package suit tests and
// single-instance deployments.
//
// When the backing store is unreachable the gate fails closed by default,
// denying quota-limited actions for the duration of the outage. Low-stakes
// actions can opt into WithFailOpen, which permits and logs instead.
package entitlement
