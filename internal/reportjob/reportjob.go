package reportjob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrScanFailed = errors.New("report_payload_scan_failed")
	ErrJobFailed  = errors.New("report_job_failed")
)

const StatusQueued = "queued"

// ReportJob is an accepted AI-report request. Generation itself happens in
// an external worker; this service only validates and enqueues.
type ReportJob struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	OrgID       string            `gorm:"column:org_id;not null;index"`
	RequestedBy string            `gorm:"column:requested_by;not null"`
	Kind        string            `gorm:"type:text;not null"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb"`
	Status      string            `gorm:"type:text;not null"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ReportJob) TableName() string { return "report_jobs" }

type AcceptRequest struct {
	OrgID       string
	RequestedBy string
	Kind        string
	Payload     map[string]any
}

type Service interface {
	Accept(ctx context.Context, req AcceptRequest) (*ReportJob, error)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

var Module = fx.Module("reportjob.service",
	fx.Provide(New),
)

func New(p Params) Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("reportjob.service"),
		genID: p.GenID,
	}
}

func (s *service) Accept(ctx context.Context, req AcceptRequest) (*ReportJob, error) {
	if req.Payload == nil {
		req.Payload = map[string]any{}
	}
	// Worker-bound payloads must round-trip as JSON before the row is
	// committed, otherwise the job would fail after acceptance.
	if _, err := json.Marshal(req.Payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	job := &ReportJob{
		ID:          s.genID.Generate(),
		OrgID:       req.OrgID,
		RequestedBy: req.RequestedBy,
		Kind:        req.Kind,
		Payload:     datatypes.JSONMap(req.Payload),
		Status:      StatusQueued,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJobFailed, err)
	}

	return job, nil
}
