package policy

import (
	"context"
	"fmt"

	"github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"gorm.io/gorm"
)

// planSource reads the locally replicated plan column for a subject. Used
// only to key the static plan-table fallback.
type planSource struct {
	db *gorm.DB
}

func NewPlanSource(db *gorm.DB) domain.PlanSource {
	return &planSource{db: db}
}

func (p *planSource) KnownPlan(ctx context.Context, s subject.Subject) (string, error) {
	if s.Type != subject.TypeOrg {
		return "", nil
	}

	var row struct {
		Plan string
	}
	err := p.db.WithContext(ctx).Raw(
		`SELECT plan FROM organizations WHERE id = ?`,
		s.ID,
	).Scan(&row).Error
	if err != nil {
		return "", fmt.Errorf("load known plan: %w", err)
	}
	return row.Plan, nil
}
