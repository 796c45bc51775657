package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/orgfolio/gatekeeper/internal/organization/domain"
	"github.com/orgfolio/gatekeeper/internal/preview"
	"github.com/orgfolio/gatekeeper/internal/publicdata"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("organization.service"),
		repo: p.Repo,
	}
}

func (s *Service) PublicProfile(ctx context.Context, req domain.PublicProfileRequest) (map[string]any, error) {
	raw := strings.TrimSpace(req.Slug)
	if raw == "" {
		return nil, domain.ErrInvalidSlug
	}
	normalized := slug.Make(raw)
	if normalized == "" {
		return nil, domain.ErrInvalidSlug
	}

	org, err := s.repo.FindBySlug(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}

	// The preview decision runs before any ownership-dependent behavior so
	// unauthenticated callers never learn whether they own the resource.
	decision := preview.Decide(preview.Request{
		Preview:       req.Preview,
		HasAuthHeader: req.HasAuthHeader,
		TokenValid:    req.TokenValid,
		IsOwner:       req.TokenValid && req.CallerUserID != "" && req.CallerUserID == org.OwnerID,
	})
	if !decision.OK {
		switch decision.Code {
		case preview.CodeForbidden:
			return nil, domain.ErrPreviewForbidden
		default:
			return nil, domain.ErrPreviewUnauthorized
		}
	}

	if !req.Preview && !org.Published {
		return nil, domain.ErrNotFound
	}

	return publicdata.Sanitize(publicdata.EntityOrganization, org.Record()), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindByID(ctx, s.db, id)
}
