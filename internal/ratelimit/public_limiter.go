package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgfolio/gatekeeper/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyPublicClient = "public:client:%s"

// PublicLimiter throttles unauthenticated directory reads per client IP.
// It is nil when no Redis address is configured, and callers treat a nil
// limiter as disabled.
type PublicLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPublicLimiter(cfg config.Config) *PublicLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	if cfg.PublicRateLimit <= 0 || cfg.PublicRateBurst <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &PublicLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.PublicRateLimit,
		burst:  cfg.PublicRateBurst,
	}
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowClient returns whether the client may proceed. Limiter errors fail
// open: throttling public reads is protective, not authoritative.
func (l *PublicLimiter) AllowClient(ctx context.Context, clientIP string) bool {
	if !l.Enabled() {
		return true
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyPublicClient, clientIP), l.rate, l.burst)
	if err != nil {
		return true
	}
	return res.Allowed
}
