package server

import (
	"github.com/gin-gonic/gin"
	quotadomain "github.com/orgfolio/gatekeeper/internal/quota/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
)

type consumeQuotaRequest struct {
	FeatureKey     string `json:"feature_key"`
	LimitKey       string `json:"limit_key"`
	Amount         int64  `json:"amount"`
	Period         string `json:"period"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ConsumeQuota is the first-party consumption endpoint. The subject is
// always the session's organization; callers cannot meter someone else.
func (s *Server) ConsumeQuota(c *gin.Context) {
	sub, ok := subject.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req consumeQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.quotaSvc.Consume(c.Request.Context(), quotadomain.ConsumptionRequest{
		Subject:        sub,
		FeatureKey:     req.FeatureKey,
		LimitKey:       req.LimitKey,
		Amount:         req.Amount,
		Period:         quotadomain.Period(req.Period),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, result)
}
