package entitlement

import (
	"time"

	"github.com/google/uuid"
)

// Unlimited is the sentinel monthly limit meaning "no monthly cap" (-1).
const Unlimited int64 = -1

// Plan describes a subscription tier and its monthly action allowance.
// A MonthlyLimit of 0 is valid and means no gated actions are permitted;
// only the Unlimited sentinel disables the cap.
type Plan struct {
	Code         string
	Name         string
	Description  string
	MonthlyLimit int64
	Default      bool // fallback plan for users without an active assignment
}

// IsUnlimited reports whether the plan has no monthly cap.
func (p Plan) IsUnlimited() bool {
	return p.MonthlyLimit == Unlimited
}

// Assignment binds a user to a plan for a time window.
// A nil ActiveUntil means the assignment is open-ended.
type Assignment struct {
	UserID      uuid.UUID
	PlanCode    string
	ActiveFrom  time.Time
	ActiveUntil *time.Time
}

// ActiveAt reports whether the assignment is in effect at the given instant.
func (a Assignment) ActiveAt(t time.Time) bool {
	if t.Before(a.ActiveFrom) {
		return false
	}
	return a.ActiveUntil == nil || t.Before(*a.ActiveUntil)
}

// Decision is the result of a single entitlement evaluation.
// It is produced fresh on every call and never persisted.
type Decision struct {
	Permitted    bool   `json:"permitted"`
	Limit        int64  `json:"limit"`     // Unlimited (-1) when the plan has no cap
	Remaining    int64  `json:"remaining"` // Unlimited (-1) when the plan has no cap
	CurrentUsage int64  `json:"current_usage"`
	PlanCode     string `json:"plan_code"`
	Period       Period `json:"period"`
}

// IsUnlimited reports whether the decision was made against an uncapped plan.
func (d Decision) IsUnlimited() bool {
	return d.Limit == Unlimited
}
