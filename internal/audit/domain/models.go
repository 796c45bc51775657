package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionEntitlementFallback = "entitlement.fallback"
	ActionQuotaDenied         = "quota.denied"
	ActionPreviewDenied       = "preview.denied"
)

type AuditLog struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	SubjectType string            `gorm:"column:subject_type;not null"`
	SubjectID   string            `gorm:"column:subject_id;not null;index"`
	Action      string            `gorm:"type:text;not null;index"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	SubjectType string
	SubjectID   string
	Action      string
	Limit       int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

// Entry is the write-side request. Recording is best-effort: failures are
// logged, never propagated.
type Entry struct {
	SubjectType string
	SubjectID   string
	Action      string
	Metadata    map[string]any
}

type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}
