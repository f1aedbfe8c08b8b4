package entitlement

import "errors"

// Domain errors for entitlement operations
var (
	// Quota errors
	ErrQuotaExceeded = errors.New("entitlement.errors.quota_exceeded")
	ErrInvalidPeriod = errors.New("entitlement.errors.invalid_period")

	// Plan errors
	ErrPlanNotFound             = errors.New("entitlement.errors.plan_not_found")
	ErrNoDefaultPlan            = errors.New("entitlement.errors.no_default_plan")
	ErrMultipleDefaultPlans     = errors.New("entitlement.errors.multiple_default_plans")
	ErrInvalidPlanConfiguration = errors.New("entitlement.errors.invalid_plan_configuration")
	ErrNoActiveAssignment       = errors.New("entitlement.errors.no_active_assignment")

	// System errors
	ErrStoreUnavailable  = errors.New("entitlement.errors.store_unavailable")
	ErrFailedToLoadPlans = errors.New("entitlement.errors.failed_to_load_plans")
	ErrNilAction         = errors.New("entitlement.errors.nil_action")
)
