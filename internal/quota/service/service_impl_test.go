package service

import (
	"context"
	"sync"
	"testing"

	"github.com/orgfolio/gatekeeper/internal/quota/domain"
	"github.com/orgfolio/gatekeeper/internal/quota/store"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Consume(ctx context.Context, req domain.ConsumptionRequest) (*domain.StoreResult, error) {
	return nil, domain.ErrStoreUnavailable
}

func newQuotaService(s domain.Store) domain.Service {
	return New(Params{Log: zap.NewNop(), Store: s})
}

func baseRequest() domain.ConsumptionRequest {
	return domain.ConsumptionRequest{
		Subject:        subject.Org("42"),
		FeatureKey:     "ai_reports",
		LimitKey:       "ai_reports_per_month",
		Amount:         1,
		Period:         domain.PeriodMonth,
		IdempotencyKey: "req-1",
	}
}

func TestConsumeDecrementsCounter(t *testing.T) {
	svc := newQuotaService(store.NewMemoryStore(map[string]int64{"ai_reports_per_month": 3}))

	req := baseRequest()
	result, err := svc.Consume(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	require.NotNil(t, result.Remaining)
	assert.Equal(t, int64(2), *result.Remaining)
}

func TestConsumeIdempotency(t *testing.T) {
	svc := newQuotaService(store.NewMemoryStore(map[string]int64{"ai_reports_per_month": 3}))
	ctx := context.Background()
	req := baseRequest()

	first, err := svc.Consume(ctx, req)
	require.NoError(t, err)

	// Retrying with the same idempotency key must not consume again.
	second, err := svc.Consume(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Allowed, second.Allowed)
	assert.Equal(t, *first.Remaining, *second.Remaining)

	req.IdempotencyKey = "req-2"
	third, err := svc.Consume(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *third.Remaining)
}

func TestConcurrentConsumptionAdmitsExactlyOne(t *testing.T) {
	svc := newQuotaService(store.NewMemoryStore(map[string]int64{"ai_reports_per_month": 1}))
	ctx := context.Background()

	const attempts = 16
	results := make([]bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := baseRequest()
			req.IdempotencyKey = "concurrent-" + string(rune('a'+i))
			result, err := svc.Consume(ctx, req)
			if err == nil {
				results[i] = result.Allowed
			}
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, ok := range results {
		if ok {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestConsumeFailsClosedWhenStoreUnavailable(t *testing.T) {
	svc := newQuotaService(failingStore{})

	result, err := svc.Consume(context.Background(), baseRequest())
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.False(t, result.Allowed)
}

func TestSoftModeProceedsUnmetered(t *testing.T) {
	svc := newQuotaService(failingStore{})

	req := baseRequest()
	req.Soft = true
	result, err := svc.Consume(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Nil(t, result.Remaining)
}

func TestConsumeDeniesWhenExhausted(t *testing.T) {
	svc := newQuotaService(store.NewMemoryStore(map[string]int64{"ai_reports_per_month": 1}))
	ctx := context.Background()

	req := baseRequest()
	_, err := svc.Consume(ctx, req)
	require.NoError(t, err)

	req.IdempotencyKey = "req-2"
	result, err := svc.Consume(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	require.NotNil(t, result.Remaining)
	assert.Equal(t, int64(0), *result.Remaining)
}

func TestUnknownLimitKeyIsUnbounded(t *testing.T) {
	svc := newQuotaService(store.NewMemoryStore(nil))

	result, err := svc.Consume(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Nil(t, result.Remaining)
}

func TestConsumeValidation(t *testing.T) {
	svc := newQuotaService(store.NewMemoryStore(nil))
	ctx := context.Background()

	req := baseRequest()
	req.FeatureKey = ""
	_, err := svc.Consume(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidFeatureKey)

	req = baseRequest()
	req.LimitKey = "  "
	_, err = svc.Consume(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidLimitKey)

	req = baseRequest()
	req.Amount = -2
	_, err = svc.Consume(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	req = baseRequest()
	req.Period = "fortnight"
	_, err = svc.Consume(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	req = baseRequest()
	req.Subject = subject.Subject{Type: "org", ID: ""}
	_, err = svc.Consume(ctx, req)
	assert.ErrorIs(t, err, subject.ErrInvalidID)

	// Defaults: amount 1, monthly period, generated idempotency key.
	req = baseRequest()
	req.Amount = 0
	req.Period = ""
	req.IdempotencyKey = ""
	result, err := svc.Consume(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
