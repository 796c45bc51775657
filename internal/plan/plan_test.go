package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierFree, ParseTier("free"))
	assert.Equal(t, TierBasic, ParseTier(" Basic "))
	assert.Equal(t, TierBusiness, ParseTier("business"))
	assert.Equal(t, TierBusiness, ParseTier("pro"))
	assert.Equal(t, TierEnterprise, ParseTier("ENTERPRISE"))
	assert.Equal(t, TierFree, ParseTier("platinum"))
	assert.Equal(t, TierFree, ParseTier(""))
}

func TestTiersAreMonotonic(t *testing.T) {
	// Each upgrade keeps every feature of the tier below it.
	order := []Tier{TierFree, TierBasic, TierBusiness, TierEnterprise}
	for i := 1; i < len(order); i++ {
		lower, higher := order[i-1], order[i]
		for _, key := range Features(lower) {
			assert.Truef(t, HasFeature(higher, key), "%s lost feature %q present in %s", higher, key, lower)
		}
	}
}

func TestUnknownTierDefaultsToFree(t *testing.T) {
	assert.Equal(t, Features(TierFree), Features(Tier("platinum")))
	assert.Equal(t, GetLimits(TierFree), GetLimits(Tier("platinum")))
}

func TestResourceLimitKeysAreStable(t *testing.T) {
	// The limit_key vocabulary is shared with the quota store; renaming a
	// key here silently breaks fallback parity with the dynamic source.
	expected := []string{
		"max_services",
		"max_posts",
		"max_faqs",
		"max_members",
		"ai_reports_per_month",
		"translation_jobs_per_mo",
		"analytics_retention_day",
	}
	for _, tier := range []Tier{TierFree, TierBasic, TierBusiness, TierEnterprise} {
		limits := ResourceLimits(tier)
		require.Len(t, limits, len(expected))
		for _, key := range expected {
			assert.Containsf(t, limits, key, "%s missing limit key %q", tier, key)
		}
	}
}

func TestMeteredFeaturesHaveCaps(t *testing.T) {
	// A tier that enables a metered feature must carry its numeric cap.
	metered := map[string]string{
		"ai_reports":   "ai_reports_per_month",
		"translations": "translation_jobs_per_mo",
	}
	for _, tier := range []Tier{TierBusiness, TierEnterprise} {
		limits := ResourceLimits(tier)
		for feature, limitKey := range metered {
			require.Truef(t, HasFeature(tier, feature), "%s should enable %s", tier, feature)
			value, ok := limits[limitKey]
			require.True(t, ok)
			assert.Truef(t, value > 0 || value == Unlimited, "%s %s cap must be positive or unlimited", tier, limitKey)
		}
	}
	// Free must not enable metered features at all.
	assert.False(t, HasFeature(TierFree, "ai_reports"))
	assert.False(t, HasFeature(TierFree, "translations"))
}
