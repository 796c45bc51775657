package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/orgfolio/gatekeeper/internal/audit/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	sub, ok := subject.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		SubjectType: string(sub.Type),
		SubjectID:   sub.ID,
		Action:      c.Query("action"),
		Limit:       limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOKMeta(c, logs, gin.H{"count": len(logs)})
}
