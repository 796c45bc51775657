package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orgfolio/gatekeeper/internal/config"
	"github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"gorm.io/gorm"
)

// rpcSource consumes the remote get_effective_features database function.
// The function owns plan resolution and per-subject overrides; this client
// only reshapes its JSON payload.
type rpcSource struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewRPCSource(db *gorm.DB, cfg config.Config) domain.PolicySource {
	return &rpcSource{db: db, timeout: cfg.PolicyTimeout}
}

type rpcPayload struct {
	Plan     string `json:"plan"`
	Features map[string]struct {
		Enabled bool    `json:"enabled"`
		Limit   *int64  `json:"limit"`
		Level   *string `json:"level"`
	} `json:"features"`
}

func (r *rpcSource) EffectiveFeatures(ctx context.Context, s subject.Subject) (*domain.PolicyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var row struct {
		Payload []byte
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT get_effective_features(?, ?) AS payload`,
		string(s.Type),
		s.ID,
	).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPolicyUnavailable, err)
	}
	if len(row.Payload) == 0 {
		return nil, domain.ErrPolicyUnavailable
	}

	var payload rpcPayload
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrPolicyUnavailable, err)
	}
	if payload.Features == nil {
		return nil, errors.Join(domain.ErrPolicyUnavailable, errors.New("empty feature payload"))
	}

	features := make(map[string]domain.FeatureConfig, len(payload.Features))
	for raw, cfg := range payload.Features {
		key := domain.NormalizeFeatureKey(raw)
		if key == "" {
			continue
		}
		features[key] = domain.FeatureConfig{
			Enabled: cfg.Enabled,
			Limit:   cfg.Limit,
			Level:   cfg.Level,
		}
	}

	return &domain.PolicyResult{Features: features, Plan: payload.Plan}, nil
}
