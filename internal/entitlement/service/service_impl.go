package service

import (
	"context"
	"time"

	auditdomain "github.com/orgfolio/gatekeeper/internal/audit/domain"
	"github.com/orgfolio/gatekeeper/internal/config"
	"github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/observability/metrics"
	"github.com/orgfolio/gatekeeper/internal/plan"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"github.com/orgfolio/gatekeeper/pkg/cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	Policy    domain.PolicySource
	Overrides domain.OverrideSource
	Plans     domain.PlanSource
	Audit     auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	policy    domain.PolicySource
	overrides domain.OverrideSource
	plans     domain.PlanSource
	audit     auditdomain.Service
	metrics   *metrics.Metrics

	// snapshots survives transient policy outages. Only successful rpc
	// resolutions populate it, and it is consulted only after the rpc tier
	// has failed, so a recovered backend is always re-consulted first.
	snapshots cache.Cache[string, domain.EffectiveFeatureSet]
	cacheTTL  time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("entitlement.service"),
		policy:    p.Policy,
		overrides: p.Overrides,
		plans:     p.Plans,
		audit:     p.Audit,
		metrics:   p.Metrics,
		snapshots: cache.NewTTLCache[string, domain.EffectiveFeatureSet](),
		cacheTTL:  p.Cfg.EntitlementCacheTTL,
	}
}

// Resolve computes the effective feature set for a subject. It never fails:
// a malformed subject or a fully unreachable backend both degrade to the
// free-tier static table with every unknown feature disabled.
func (s *Service) Resolve(ctx context.Context, raw subject.Subject) domain.EffectiveFeatureSet {
	sub, err := subject.Normalize(raw)
	if err != nil {
		s.log.Warn("unresolvable subject, serving free-tier fallback", zap.Error(err))
		return s.planFallback(raw, plan.TierFree)
	}

	if scope := domain.ScopeFromContext(ctx); scope != nil {
		return scope.Resolve(sub.Key(), func() domain.EffectiveFeatureSet {
			return s.resolve(ctx, sub)
		})
	}
	return s.resolve(ctx, sub)
}

func (s *Service) resolve(ctx context.Context, sub subject.Subject) domain.EffectiveFeatureSet {
	result, err := s.policy.EffectiveFeatures(ctx, sub)
	if err == nil && result != nil {
		set := domain.EffectiveFeatureSet{
			Subject:     sub,
			Features:    result.Features,
			Source:      domain.SourceRPC,
			RetrievedAt: time.Now().UTC(),
		}
		s.snapshots.Set(sub.Key(), set, s.cacheTTL)
		s.metrics.ObserveResolution(string(domain.SourceRPC))
		return set
	}

	s.log.Warn("policy source unavailable", zap.String("subject", sub.Key()), zap.Error(err))

	if cached, ok := s.snapshots.Get(sub.Key()); ok {
		s.metrics.ObserveResolution("cache")
		return cached
	}

	if set, ok := s.overrideFallback(ctx, sub); ok {
		return set
	}

	tier := s.knownTier(ctx, sub)
	set := s.planFallback(sub, tier)
	s.recordFallback(ctx, sub, set.Source)
	s.metrics.ObserveResolution(string(domain.SourcePlanLimitsFallback))
	return set
}

func (s *Service) CanUseFeature(ctx context.Context, sub subject.Subject, featureKey string) bool {
	key := domain.NormalizeFeatureKey(featureKey)
	if key == "" {
		return false
	}
	return s.Resolve(ctx, sub).Get(key).Enabled
}

// FeatureLimit returns nil for unbounded features. A disabled or unknown
// feature reports a zero limit rather than unbounded.
func (s *Service) FeatureLimit(ctx context.Context, sub subject.Subject, featureKey string) *int64 {
	zero := int64(0)
	key := domain.NormalizeFeatureKey(featureKey)
	if key == "" {
		return &zero
	}
	cfg := s.Resolve(ctx, sub).Get(key)
	if !cfg.Enabled {
		return &zero
	}
	return cfg.Limit
}

func (s *Service) overrideFallback(ctx context.Context, sub subject.Subject) (domain.EffectiveFeatureSet, bool) {
	features, err := s.overrides.Overrides(ctx, sub)
	if err != nil {
		if err != domain.ErrNoOverride {
			s.log.Warn("entitlement override lookup failed", zap.String("subject", sub.Key()), zap.Error(err))
		}
		return domain.EffectiveFeatureSet{}, false
	}

	set := domain.EffectiveFeatureSet{
		Subject:     sub,
		Features:    features,
		Source:      domain.SourceEntitlementsFallback,
		RetrievedAt: time.Now().UTC(),
	}
	s.recordFallback(ctx, sub, set.Source)
	s.metrics.ObserveResolution(string(domain.SourceEntitlementsFallback))
	return set, true
}

func (s *Service) knownTier(ctx context.Context, sub subject.Subject) plan.Tier {
	raw, err := s.plans.KnownPlan(ctx, sub)
	if err != nil {
		s.log.Warn("known plan lookup failed, assuming free", zap.String("subject", sub.Key()), zap.Error(err))
		return plan.TierFree
	}
	return plan.ParseTier(raw)
}

// featureLimitKeys ties metered feature flags to the limit_key carrying
// their numeric cap in the static tables.
var featureLimitKeys = map[string]string{
	"ai_reports":   "ai_reports_per_month",
	"translations": "translation_jobs_per_mo",
	"analytics":    "analytics_retention_day",
}

func (s *Service) planFallback(sub subject.Subject, tier plan.Tier) domain.EffectiveFeatureSet {
	limits := plan.ResourceLimits(tier)
	features := make(map[string]domain.FeatureConfig)
	for _, key := range plan.Features(tier) {
		cfg := domain.FeatureConfig{Enabled: true}
		if limitKey, ok := featureLimitKeys[key]; ok {
			if max, ok := limits[limitKey]; ok && max != plan.Unlimited {
				value := int64(max)
				cfg.Limit = &value
			}
		}
		features[key] = cfg
	}

	return domain.EffectiveFeatureSet{
		Subject:     sub,
		Features:    features,
		Source:      domain.SourcePlanLimitsFallback,
		RetrievedAt: time.Now().UTC(),
	}
}

func (s *Service) recordFallback(ctx context.Context, sub subject.Subject, source domain.Source) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, auditdomain.Entry{
		SubjectType: string(sub.Type),
		SubjectID:   sub.ID,
		Action:      auditdomain.ActionEntitlementFallback,
		Metadata:    map[string]any{"source": string(source)},
	})
}
