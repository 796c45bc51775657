package server

import (
	"errors"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/orgfolio/gatekeeper/internal/audit/domain"
	organizationdomain "github.com/orgfolio/gatekeeper/internal/organization/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
)

// PublicOrganization serves a directory page record to unauthenticated
// callers. Preview requests additionally prove identity and ownership; the
// response is always passed through the column sanitizer.
func (s *Server) PublicOrganization(c *gin.Context) {
	previewParam := c.Query("preview")
	previewRequested := previewParam == "true" || previewParam == "1"

	token := requestToken(c)
	tokenValid := false
	callerUserID := ""
	if previewRequested && token != "" {
		if session, err := s.authsvc.Authenticate(c.Request.Context(), token); err == nil {
			tokenValid = true
			callerUserID = session.UserID
		}
	}

	record, err := s.organizationSvc.PublicProfile(c.Request.Context(), organizationdomain.PublicProfileRequest{
		Slug:          c.Param("slug"),
		Preview:       previewRequested,
		HasAuthHeader: token != "",
		TokenValid:    tokenValid,
		CallerUserID:  callerUserID,
	})
	if err != nil {
		if errors.Is(err, organizationdomain.ErrPreviewForbidden) {
			s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
				SubjectType: string(subject.TypeUser),
				SubjectID:   callerUserID,
				Action:      auditdomain.ActionPreviewDenied,
				Metadata:    map[string]any{"slug": c.Param("slug")},
			})
		}
		AbortWithError(c, err)
		return
	}

	respondOK(c, record)
}
