package store

import (
	"context"
	"fmt"

	"github.com/orgfolio/gatekeeper/internal/quota/domain"
	"gorm.io/gorm"
)

// rpcStore delegates to the remote consume_quota database function, which
// performs the test-and-decrement and idempotency bookkeeping in a single
// transaction on the authoritative side.
type rpcStore struct {
	db *gorm.DB
}

func NewRPCStore(db *gorm.DB) domain.Store {
	return &rpcStore{db: db}
}

func (s *rpcStore) Consume(ctx context.Context, req domain.ConsumptionRequest) (*domain.StoreResult, error) {
	var row struct {
		Allowed   bool
		Remaining *int64
		Duplicate bool
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT allowed, remaining, duplicate
		 FROM consume_quota(?, ?, ?, ?, ?, ?, ?)`,
		string(req.Subject.Type),
		req.Subject.ID,
		req.FeatureKey,
		req.LimitKey,
		req.Amount,
		string(req.Period),
		req.IdempotencyKey,
	).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &domain.StoreResult{
		Allowed:   row.Allowed,
		Remaining: row.Remaining,
		Duplicate: row.Duplicate,
	}, nil
}
