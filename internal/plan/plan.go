package plan

import "strings"

// Tier is a closed enum of billing plans. The static tables below are a
// last-resort fallback used when the dynamic policy source is unreachable;
// the dynamic source remains authoritative.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierBusiness   Tier = "business"
	TierEnterprise Tier = "enterprise"
)

// Unlimited marks a resource with no numeric cap.
const Unlimited = -1

// Limits defines the per-resource caps for a tier.
type Limits struct {
	MaxServices           int
	MaxPosts              int
	MaxFAQs               int
	MaxMembers            int
	AIReportsPerMonth     int
	TranslationJobsPerMo  int
	AnalyticsRetentionDay int
}

var tierFeatures = map[Tier][]string{
	TierFree: {
		"faq",
		"directory_listing",
	},
	TierBasic: {
		"faq",
		"directory_listing",
		"structured_data",
		"analytics",
	},
	TierBusiness: {
		"faq",
		"directory_listing",
		"structured_data",
		"analytics",
		"ai_reports",
		"translations",
		"custom_domain",
		"api_access",
	},
	TierEnterprise: {
		"faq",
		"directory_listing",
		"structured_data",
		"analytics",
		"ai_reports",
		"translations",
		"custom_domain",
		"api_access",
		"remove_branding",
		"priority_support",
	},
}

var tierLimits = map[Tier]Limits{
	TierFree: {
		MaxServices:           5,
		MaxPosts:              10,
		MaxFAQs:               20,
		MaxMembers:            2,
		AIReportsPerMonth:     0,
		TranslationJobsPerMo:  0,
		AnalyticsRetentionDay: 7,
	},
	TierBasic: {
		MaxServices:           25,
		MaxPosts:              100,
		MaxFAQs:               100,
		MaxMembers:            5,
		AIReportsPerMonth:     0,
		TranslationJobsPerMo:  0,
		AnalyticsRetentionDay: 30,
	},
	TierBusiness: {
		MaxServices:           100,
		MaxPosts:              Unlimited,
		MaxFAQs:               Unlimited,
		MaxMembers:            25,
		AIReportsPerMonth:     20,
		TranslationJobsPerMo:  50,
		AnalyticsRetentionDay: 365,
	},
	TierEnterprise: {
		MaxServices:           Unlimited,
		MaxPosts:              Unlimited,
		MaxFAQs:               Unlimited,
		MaxMembers:            Unlimited,
		AIReportsPerMonth:     Unlimited,
		TranslationJobsPerMo:  Unlimited,
		AnalyticsRetentionDay: Unlimited,
	},
}

// resourceLimits keys the numeric caps by the limit_key strings used by the
// quota store, so fallback answers line up with dynamic ones.
func resourceLimits(l Limits) map[string]int {
	return map[string]int{
		"max_services":            l.MaxServices,
		"max_posts":               l.MaxPosts,
		"max_faqs":                l.MaxFAQs,
		"max_members":             l.MaxMembers,
		"ai_reports_per_month":    l.AIReportsPerMonth,
		"translation_jobs_per_mo": l.TranslationJobsPerMo,
		"analytics_retention_day": l.AnalyticsRetentionDay,
	}
}

// ParseTier maps a raw plan string to a Tier, defaulting unknown values to free.
func ParseTier(raw string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierBasic:
		return TierBasic
	case TierBusiness, "pro":
		return TierBusiness
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierFree
	}
}

// Features returns the feature keys enabled for a tier.
func Features(tier Tier) []string {
	if flags, ok := tierFeatures[tier]; ok {
		out := make([]string, len(flags))
		copy(out, flags)
		return out
	}
	return Features(TierFree)
}

// HasFeature reports whether the tier includes the (already normalized) key.
func HasFeature(tier Tier, key string) bool {
	for _, f := range Features(tier) {
		if f == key {
			return true
		}
	}
	return false
}

// GetLimits returns the caps for a tier, defaulting unknown tiers to free.
func GetLimits(tier Tier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierFree]
}

// ResourceLimits returns the caps keyed by quota limit_key.
func ResourceLimits(tier Tier) map[string]int {
	return resourceLimits(GetLimits(tier))
}
