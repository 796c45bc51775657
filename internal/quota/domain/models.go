package domain

import (
	"context"
	"errors"

	"github.com/orgfolio/gatekeeper/internal/subject"
)

var (
	ErrInvalidFeatureKey    = errors.New("invalid_feature_key")
	ErrInvalidLimitKey      = errors.New("invalid_limit_key")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrStoreUnavailable     = errors.New("quota_store_unavailable")
)

// Period is the reset window of a metered counter.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ConsumptionRequest asks the authoritative store to test-and-decrement a
// counter. Retries must reuse the IdempotencyKey; the store consumes each
// key at most once.
type ConsumptionRequest struct {
	Subject        subject.Subject `json:"subject"`
	FeatureKey     string          `json:"feature_key"`
	LimitKey       string          `json:"limit_key"`
	Amount         int64           `json:"amount"`
	Period         Period          `json:"period"`
	IdempotencyKey string          `json:"idempotency_key"`

	// Soft opts this call site into degraded mode: when the store is
	// unreachable the action proceeds unmetered instead of being denied.
	// Reserved for non-critical counters only.
	Soft bool `json:"-"`
}

// ConsumptionResult is advisory-but-mandatory: callers must not proceed
// when Allowed is false. Remaining is nil for unbounded counters.
type ConsumptionResult struct {
	Allowed   bool   `json:"allowed"`
	Remaining *int64 `json:"remaining"`
}

// StoreResult is the raw verdict from the authoritative store.
type StoreResult struct {
	Allowed   bool
	Remaining *int64
	// Duplicate marks an idempotency-key replay; the verdict is the
	// original one and nothing was re-consumed.
	Duplicate bool
}

// Store is the authoritative quota backend. Consume must be atomic: racing
// calls never drive a counter negative and replays of one idempotency key
// never double-count.
type Store interface {
	Consume(ctx context.Context, req ConsumptionRequest) (*StoreResult, error)
}

type Service interface {
	Consume(ctx context.Context, req ConsumptionRequest) (ConsumptionResult, error)
}
