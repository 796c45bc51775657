package server

import (
	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
)

// ListEffectiveFeatures returns the resolved feature set for the session's
// organization, with provenance in the meta block.
func (s *Server) ListEffectiveFeatures(c *gin.Context) {
	sub, ok := subject.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	set := s.entitlementSvc.Resolve(c.Request.Context(), sub)
	respondOKMeta(c, set.Features, gin.H{
		"source":       set.Source,
		"retrieved_at": set.RetrievedAt,
	})
}

func (s *Server) GetFeature(c *gin.Context) {
	sub, ok := subject.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	key := entitlementdomain.NormalizeFeatureKey(c.Param("key"))
	if key == "" {
		// Un-normalizable keys resolve disabled rather than erroring.
		respondOK(c, gin.H{"key": c.Param("key"), "enabled": false})
		return
	}

	set := s.entitlementSvc.Resolve(c.Request.Context(), sub)
	cfg := set.Get(key)
	respondOKMeta(c, gin.H{
		"key":     key,
		"enabled": cfg.Enabled,
		"limit":   cfg.Limit,
		"level":   cfg.Level,
	}, gin.H{
		"source":       set.Source,
		"retrieved_at": set.RetrievedAt,
	})
}
