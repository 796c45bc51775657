package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EntitlementOverride is a locally replicated per-subject grant, consulted
// only when the policy source is unreachable.
type EntitlementOverride struct {
	SubjectType string            `gorm:"column:subject_type;primaryKey"`
	SubjectID   string            `gorm:"column:subject_id;primaryKey"`
	Features    datatypes.JSONMap `gorm:"type:jsonb"`
	ExpiresAt   *time.Time        `gorm:"column:expires_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
}

func (EntitlementOverride) TableName() string { return "entitlement_overrides" }

type overrideSource struct {
	db *gorm.DB
}

func NewOverrideSource(db *gorm.DB) domain.OverrideSource {
	return &overrideSource{db: db}
}

func (o *overrideSource) Overrides(ctx context.Context, s subject.Subject) (map[string]domain.FeatureConfig, error) {
	var row EntitlementOverride
	err := o.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", string(s.Type), s.ID).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoOverride
		}
		return nil, fmt.Errorf("load entitlement override: %w", err)
	}
	if row.ExpiresAt != nil && row.ExpiresAt.Before(time.Now().UTC()) {
		return nil, domain.ErrNoOverride
	}
	if len(row.Features) == 0 {
		return nil, domain.ErrNoOverride
	}

	features := make(map[string]domain.FeatureConfig, len(row.Features))
	for raw, value := range row.Features {
		key := domain.NormalizeFeatureKey(raw)
		if key == "" {
			continue
		}
		features[key] = decodeOverride(value)
	}
	if len(features) == 0 {
		return nil, domain.ErrNoOverride
	}
	return features, nil
}

// decodeOverride accepts both shorthand booleans and full config objects in
// the stored JSON.
func decodeOverride(value any) domain.FeatureConfig {
	switch typed := value.(type) {
	case bool:
		return domain.FeatureConfig{Enabled: typed}
	case map[string]any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return domain.FeatureConfig{}
		}
		var cfg domain.FeatureConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return domain.FeatureConfig{}
		}
		return cfg
	default:
		return domain.FeatureConfig{}
	}
}
