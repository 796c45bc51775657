package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/orgfolio/gatekeeper/internal/quota/domain"
)

// memoryStore is a single-node store used in tests and local development.
// Production deployments point at the remote consume_quota function; this
// implementation mirrors its contract, including idempotent replays.
type memoryStore struct {
	mu       sync.Mutex
	limits   map[string]int64
	used     map[string]int64
	verdicts map[string]domain.StoreResult
}

func NewMemoryStore(limits map[string]int64) domain.Store {
	if limits == nil {
		limits = map[string]int64{}
	}
	return &memoryStore{
		limits:   limits,
		used:     make(map[string]int64),
		verdicts: make(map[string]domain.StoreResult),
	}
}

func (s *memoryStore) Consume(ctx context.Context, req domain.ConsumptionRequest) (*domain.StoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.verdicts[req.IdempotencyKey]; ok {
		replay := prior
		replay.Duplicate = true
		return &replay, nil
	}

	limit, bounded := s.limits[req.LimitKey]
	if !bounded {
		verdict := domain.StoreResult{Allowed: true}
		s.verdicts[req.IdempotencyKey] = verdict
		return &verdict, nil
	}

	counter := fmt.Sprintf("%s|%s|%s", req.Subject.Key(), req.LimitKey, req.Period)
	used := s.used[counter]
	remaining := limit - used

	var verdict domain.StoreResult
	if remaining >= req.Amount {
		used += req.Amount
		s.used[counter] = used
		left := limit - used
		verdict = domain.StoreResult{Allowed: true, Remaining: &left}
	} else {
		left := remaining
		if left < 0 {
			left = 0
		}
		verdict = domain.StoreResult{Allowed: false, Remaining: &left}
	}

	s.verdicts[req.IdempotencyKey] = verdict
	return &verdict, nil
}
