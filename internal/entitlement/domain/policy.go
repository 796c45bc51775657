package domain

import (
	"context"
	"errors"

	"github.com/orgfolio/gatekeeper/internal/subject"
)

var (
	ErrPolicyUnavailable = errors.New("policy_unavailable")
	ErrNoOverride        = errors.New("no_entitlement_override")
)

// PolicyResult is the raw answer from the dynamic policy source.
type PolicyResult struct {
	Features map[string]FeatureConfig
	Plan     string
}

// PolicySource is the authoritative dynamic policy backend, consumed as a
// remote procedure keyed by (subject_type, subject_id).
type PolicySource interface {
	EffectiveFeatures(ctx context.Context, s subject.Subject) (*PolicyResult, error)
}

// OverrideSource serves per-subject entitlement overrides, consulted only
// when the policy source is unreachable.
type OverrideSource interface {
	// Overrides returns ErrNoOverride when the subject has none.
	Overrides(ctx context.Context, s subject.Subject) (map[string]FeatureConfig, error)
}

// PlanSource reports the last known plan for a subject, feeding the static
// plan-table fallback. Implementations must be cheap and local.
type PlanSource interface {
	KnownPlan(ctx context.Context, s subject.Subject) (string, error)
}
