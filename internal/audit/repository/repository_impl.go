package repository

import (
	"context"
	"strings"

	"github.com/orgfolio/gatekeeper/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (
			id, subject_type, subject_id, action, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SubjectType,
		entry.SubjectID,
		entry.Action,
		entry.Metadata,
		entry.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{})

	if subjectType := strings.TrimSpace(filter.SubjectType); subjectType != "" {
		stmt = stmt.Where("subject_type = ?", subjectType)
	}
	if subjectID := strings.TrimSpace(filter.SubjectID); subjectID != "" {
		stmt = stmt.Where("subject_id = ?", subjectID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	if err := stmt.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
