package domain

import (
	"context"

	"github.com/orgfolio/gatekeeper/internal/subject"
)

// Service answers enabled/limit questions per subject and feature.
//
// Resolve never fails: when every dynamic tier is unreachable it falls
// through to the static plan tables and defaults unknown features to
// disabled.
type Service interface {
	Resolve(ctx context.Context, s subject.Subject) EffectiveFeatureSet
	CanUseFeature(ctx context.Context, s subject.Subject, featureKey string) bool
	// FeatureLimit returns nil for unbounded features.
	FeatureLimit(ctx context.Context, s subject.Subject, featureKey string) *int64
}
