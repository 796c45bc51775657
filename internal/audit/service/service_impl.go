package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orgfolio/gatekeeper/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, entry domain.Entry) {
	record := &domain.AuditLog{
		ID:          s.genID.Generate(),
		SubjectType: entry.SubjectType,
		SubjectID:   entry.SubjectID,
		Action:      entry.Action,
		Metadata:    datatypes.JSONMap(entry.Metadata),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		s.log.Warn("audit insert failed",
			zap.String("action", entry.Action),
			zap.String("subject_id", entry.SubjectID),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
