package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
)

const (
	sessionCookieName = "gk_session"
	contextUserIDKey  = "user_id"
)

// requestToken extracts the bearer token, falling back to the session
// cookie the web app sets.
func requestToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := subject.WithSubject(c.Request.Context(), subject.Org(session.OrgID))
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, session.UserID)
		c.Next()
	}
}

// EntitlementScope attaches a fresh resolution scope so every gate check in
// one request shares a single dynamic-policy lookup per subject.
func EntitlementScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := entitlementdomain.WithScope(c.Request.Context(), entitlementdomain.NewResolutionScope())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.publicLimiter.Enabled() {
			c.Next()
			return
		}
		if !s.publicLimiter.AllowClient(c.Request.Context(), c.ClientIP()) {
			s.metrics.ObservePublicRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorEnvelope{
				ErrorCode: "RATE_LIMITED",
				Message:   "too many requests",
			})
			return
		}
		c.Next()
	}
}
