package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotadomain "github.com/orgfolio/gatekeeper/internal/quota/domain"
	"github.com/orgfolio/gatekeeper/internal/reportjob"
	"github.com/orgfolio/gatekeeper/internal/subject"
)

const featureAIReports = "ai_reports"

type createReportRequest struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload"`
}

// CreateReport accepts an AI-report generation job for the session's
// organization. The full entitlement path runs here: feature gate, then
// metered quota, then job acceptance.
func (s *Server) CreateReport(c *gin.Context) {
	sub, ok := subject.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if c.Param("id") != sub.ID {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Kind = strings.TrimSpace(req.Kind)
	if req.Kind == "" {
		req.Kind = "overview"
	}

	if !s.entitlementSvc.CanUseFeature(c.Request.Context(), sub, featureAIReports) {
		AbortWithError(c, ErrForbidden)
		return
	}

	result, err := s.quotaSvc.Consume(c.Request.Context(), quotadomain.ConsumptionRequest{
		Subject:        sub,
		FeatureKey:     featureAIReports,
		LimitKey:       "ai_reports_per_month",
		Period:         quotadomain.PeriodMonth,
		IdempotencyKey: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !result.Allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, errorEnvelope{
			ErrorCode: CodeForbidden,
			Message:   "monthly report quota exhausted",
			Details:   gin.H{"remaining": result.Remaining},
		})
		return
	}

	job, err := s.reportSvc.Accept(c.Request.Context(), reportjob.AcceptRequest{
		OrgID:       sub.ID,
		RequestedBy: c.GetString(contextUserIDKey),
		Kind:        req.Kind,
		Payload:     req.Payload,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondAccepted(c, gin.H{
		"job_id": job.ID.String(),
		"status": job.Status,
	})
}
