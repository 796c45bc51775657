package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orgfolio/gatekeeper/internal/config"
	"github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Manual Mocks

type mockPolicySource struct {
	mu     sync.Mutex
	calls  int
	result *domain.PolicyResult
	err    error
}

func (m *mockPolicySource) EffectiveFeatures(ctx context.Context, s subject.Subject) (*domain.PolicyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockPolicySource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockOverrideSource struct {
	features map[string]domain.FeatureConfig
}

func (m *mockOverrideSource) Overrides(ctx context.Context, s subject.Subject) (map[string]domain.FeatureConfig, error) {
	if m.features == nil {
		return nil, domain.ErrNoOverride
	}
	return m.features, nil
}

type mockPlanSource struct {
	plan string
	err  error
}

func (m *mockPlanSource) KnownPlan(ctx context.Context, s subject.Subject) (string, error) {
	return m.plan, m.err
}

func newService(t *testing.T, policy domain.PolicySource, overrides domain.OverrideSource, plans domain.PlanSource, ttl time.Duration) *Service {
	t.Helper()
	if ttl == 0 {
		ttl = time.Minute
	}
	svc := New(Params{
		Cfg:       config.Config{EntitlementCacheTTL: ttl},
		Log:       zap.NewNop(),
		Policy:    policy,
		Overrides: overrides,
		Plans:     plans,
	})
	return svc.(*Service)
}

func intPtr(v int64) *int64 { return &v }

func TestResolvePolicySuccess(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Plan: "business",
		Features: map[string]domain.FeatureConfig{
			"ai_reports": {Enabled: true, Limit: intPtr(20)},
			"analytics":  {Enabled: true},
		},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{}, 0)

	set := svc.Resolve(context.Background(), subject.Org("42"))
	require.Equal(t, domain.SourceRPC, set.Source)
	assert.True(t, set.Get("ai_reports").Enabled)
	assert.Equal(t, int64(20), *set.Get("ai_reports").Limit)
	assert.False(t, set.RetrievedAt.IsZero())
}

func TestCanUseFeatureFailsClosedForUnknownKeys(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Features: map[string]domain.FeatureConfig{"analytics": {Enabled: true}},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{}, 0)

	sub := subject.Org("42")
	assert.False(t, svc.CanUseFeature(context.Background(), sub, "nonexistent_feature"))
	assert.False(t, svc.CanUseFeature(context.Background(), sub, ""))
	assert.False(t, svc.CanUseFeature(context.Background(), sub, "!! bad key !!"))
	assert.True(t, svc.CanUseFeature(context.Background(), sub, "analytics"))
}

func TestFeatureKeyAliases(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Features: map[string]domain.FeatureConfig{"ai_reports": {Enabled: true}},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{}, 0)

	assert.True(t, svc.CanUseFeature(context.Background(), subject.Org("42"), "AI-Reports"))
}

func TestResolveNeverFails(t *testing.T) {
	policy := &mockPolicySource{err: domain.ErrPolicyUnavailable}
	plans := &mockPlanSource{err: assert.AnError}
	svc := newService(t, policy, &mockOverrideSource{}, plans, 0)

	set := svc.Resolve(context.Background(), subject.Org("42"))
	require.NotNil(t, set.Features)
	assert.Equal(t, domain.SourcePlanLimitsFallback, set.Source)

	// Malformed subjects degrade the same way.
	set = svc.Resolve(context.Background(), subject.Subject{Type: "robot", ID: ""})
	require.NotNil(t, set.Features)
	assert.Equal(t, domain.SourcePlanLimitsFallback, set.Source)
	assert.False(t, set.Get("ai_reports").Enabled)
}

func TestPlanFallbackUsesKnownTier(t *testing.T) {
	policy := &mockPolicySource{err: domain.ErrPolicyUnavailable}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{plan: "business"}, 0)

	set := svc.Resolve(context.Background(), subject.Org("42"))
	require.Equal(t, domain.SourcePlanLimitsFallback, set.Source)
	assert.True(t, set.Get("ai_reports").Enabled)
	require.NotNil(t, set.Get("ai_reports").Limit)
	assert.Equal(t, int64(20), *set.Get("ai_reports").Limit)
	assert.False(t, set.Get("remove_branding").Enabled)
}

func TestOverrideFallbackPrecedesPlanTable(t *testing.T) {
	policy := &mockPolicySource{err: domain.ErrPolicyUnavailable}
	overrides := &mockOverrideSource{features: map[string]domain.FeatureConfig{
		"ai_reports": {Enabled: true, Limit: intPtr(5)},
	}}
	svc := newService(t, policy, overrides, &mockPlanSource{plan: "free"}, 0)

	set := svc.Resolve(context.Background(), subject.Org("42"))
	assert.Equal(t, domain.SourceEntitlementsFallback, set.Source)
	assert.True(t, set.Get("ai_reports").Enabled)
}

func TestRequestScopedMemoization(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Features: map[string]domain.FeatureConfig{"analytics": {Enabled: true}},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{}, 0)

	ctx := domain.WithScope(context.Background(), domain.NewResolutionScope())
	sub := subject.Org("42")
	for i := 0; i < 5; i++ {
		svc.CanUseFeature(ctx, sub, "analytics")
		svc.FeatureLimit(ctx, sub, "analytics")
	}
	assert.Equal(t, 1, policy.callCount())

	// A new request scope resolves again.
	ctx2 := domain.WithScope(context.Background(), domain.NewResolutionScope())
	svc.CanUseFeature(ctx2, sub, "analytics")
	assert.Equal(t, 2, policy.callCount())
}

func TestSnapshotCacheServesDuringOutage(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Features: map[string]domain.FeatureConfig{"analytics": {Enabled: true}},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{plan: "free"}, time.Minute)

	sub := subject.Org("42")
	first := svc.Resolve(context.Background(), sub)
	require.Equal(t, domain.SourceRPC, first.Source)

	policy.err = domain.ErrPolicyUnavailable
	second := svc.Resolve(context.Background(), sub)
	assert.Equal(t, domain.SourceRPC, second.Source)
	assert.True(t, second.Get("analytics").Enabled)
	assert.Equal(t, first.RetrievedAt, second.RetrievedAt)
}

func TestSnapshotCacheExpires(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Features: map[string]domain.FeatureConfig{"analytics": {Enabled: true}},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{plan: "free"}, 10*time.Millisecond)

	sub := subject.Org("42")
	svc.Resolve(context.Background(), sub)

	policy.err = domain.ErrPolicyUnavailable
	time.Sleep(20 * time.Millisecond)

	set := svc.Resolve(context.Background(), sub)
	assert.Equal(t, domain.SourcePlanLimitsFallback, set.Source)
	assert.False(t, set.Get("analytics").Enabled)
}

func TestFeatureLimit(t *testing.T) {
	policy := &mockPolicySource{result: &domain.PolicyResult{
		Features: map[string]domain.FeatureConfig{
			"ai_reports": {Enabled: true, Limit: intPtr(20)},
			"analytics":  {Enabled: true},
			"faq":        {Enabled: false, Limit: intPtr(100)},
		},
	}}
	svc := newService(t, policy, &mockOverrideSource{}, &mockPlanSource{}, 0)
	sub := subject.Org("42")
	ctx := context.Background()

	limit := svc.FeatureLimit(ctx, sub, "ai_reports")
	require.NotNil(t, limit)
	assert.Equal(t, int64(20), *limit)

	// Enabled without a limit means unbounded.
	assert.Nil(t, svc.FeatureLimit(ctx, sub, "analytics"))

	// Disabled and unknown features report zero, not unbounded.
	limit = svc.FeatureLimit(ctx, sub, "faq")
	require.NotNil(t, limit)
	assert.Equal(t, int64(0), *limit)

	limit = svc.FeatureLimit(ctx, sub, "unknown")
	require.NotNil(t, limit)
	assert.Equal(t, int64(0), *limit)
}
