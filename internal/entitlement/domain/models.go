package domain

import (
	"strings"
	"time"

	"github.com/orgfolio/gatekeeper/internal/subject"
)

// Source records which resolution tier produced an effective feature set.
type Source string

const (
	SourceRPC                  Source = "rpc"
	SourceEntitlementsFallback Source = "entitlements_fallback"
	SourcePlanLimitsFallback   Source = "plan_limits_fallback"
)

// FeatureConfig is the per-feature answer inside an effective set.
type FeatureConfig struct {
	Enabled bool    `json:"enabled"`
	Limit   *int64  `json:"limit"`
	Level   *string `json:"level"`
}

// EffectiveFeatureSet maps normalized feature keys to their configuration for
// one subject. Computed per request; never persisted.
type EffectiveFeatureSet struct {
	Subject     subject.Subject          `json:"subject"`
	Features    map[string]FeatureConfig `json:"features"`
	Source      Source                   `json:"source"`
	RetrievedAt time.Time                `json:"retrieved_at"`
}

// Get looks up an already-normalized key. Absent keys resolve disabled.
func (s EffectiveFeatureSet) Get(key string) FeatureConfig {
	if s.Features == nil {
		return FeatureConfig{}
	}
	return s.Features[key]
}

// featureAliases maps historic and client-side spellings to canonical keys.
var featureAliases = map[string]string{
	"ai-reports":      "ai_reports",
	"aireports":       "ai_reports",
	"structured-data": "structured_data",
	"structureddata":  "structured_data",
	"custom-domain":   "custom_domain",
	"api-access":      "api_access",
	"remove-branding": "remove_branding",
}

// NormalizeFeatureKey lowercases, trims and alias-maps a feature key. An
// un-normalizable key returns "" so lookups resolve disabled instead of
// erroring.
func NormalizeFeatureKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if canonical, ok := featureAliases[key]; ok {
		return canonical
	}
	for _, r := range key {
		if r != '_' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return key
}
