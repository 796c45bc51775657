package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	auditdomain "github.com/orgfolio/gatekeeper/internal/audit/domain"
	entitlementdomain "github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/observability/metrics"
	"github.com/orgfolio/gatekeeper/internal/quota/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Store   domain.Store
	Audit   auditdomain.Service `optional:"true"`
	Metrics *metrics.Metrics    `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	store   domain.Store
	audit   auditdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("quota.service"),
		store:   p.Store,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

// Consume validates and forwards a consumption request to the authoritative
// store. Store failures deny the action unless the call site opted into
// soft mode.
func (s *Service) Consume(ctx context.Context, req domain.ConsumptionRequest) (domain.ConsumptionResult, error) {
	normalized, err := s.normalize(req)
	if err != nil {
		return domain.ConsumptionResult{Allowed: false}, err
	}

	verdict, err := s.store.Consume(ctx, normalized)
	if err != nil {
		if normalized.Soft {
			s.log.Warn("quota store unreachable, soft mode proceeding unmetered",
				zap.String("subject", normalized.Subject.Key()),
				zap.String("limit_key", normalized.LimitKey),
				zap.Error(err),
			)
			s.metrics.ObserveQuota("soft_allowed")
			return domain.ConsumptionResult{Allowed: true}, nil
		}
		s.metrics.ObserveQuota("unavailable")
		return domain.ConsumptionResult{Allowed: false}, err
	}

	if verdict.Duplicate {
		s.log.Debug("idempotent quota replay",
			zap.String("subject", normalized.Subject.Key()),
			zap.String("idempotency_key", normalized.IdempotencyKey),
		)
	}

	if !verdict.Allowed {
		s.metrics.ObserveQuota("denied")
		s.recordDenial(ctx, normalized)
	} else {
		s.metrics.ObserveQuota("allowed")
	}

	return domain.ConsumptionResult{Allowed: verdict.Allowed, Remaining: verdict.Remaining}, nil
}

func (s *Service) normalize(req domain.ConsumptionRequest) (domain.ConsumptionRequest, error) {
	sub, err := subject.Normalize(req.Subject)
	if err != nil {
		return req, err
	}
	req.Subject = sub

	req.FeatureKey = entitlementdomain.NormalizeFeatureKey(req.FeatureKey)
	if req.FeatureKey == "" {
		return req, domain.ErrInvalidFeatureKey
	}

	req.LimitKey = strings.ToLower(strings.TrimSpace(req.LimitKey))
	if req.LimitKey == "" {
		return req, domain.ErrInvalidLimitKey
	}

	if req.Amount == 0 {
		req.Amount = 1
	}
	if req.Amount < 0 {
		return req, domain.ErrInvalidAmount
	}

	switch req.Period {
	case domain.PeriodDay, domain.PeriodMonth, domain.PeriodTotal:
	case "":
		req.Period = domain.PeriodMonth
	default:
		return req, domain.ErrInvalidPeriod
	}

	if strings.TrimSpace(req.IdempotencyKey) == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	return req, nil
}

func (s *Service) recordDenial(ctx context.Context, req domain.ConsumptionRequest) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, auditdomain.Entry{
		SubjectType: string(req.Subject.Type),
		SubjectID:   req.Subject.ID,
		Action:      auditdomain.ActionQuotaDenied,
		Metadata: map[string]any{
			"feature_key": req.FeatureKey,
			"limit_key":   req.LimitKey,
			"period":      string(req.Period),
		},
	})
}
