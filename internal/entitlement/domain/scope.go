package domain

import (
	"context"
	"sync"
)

// ResolutionScope memoizes resolved feature sets for the lifetime of one
// request. Handlers attach a fresh scope per request; the resolver performs
// at most one dynamic lookup per subject per scope, however many gate checks
// the handler makes.
type ResolutionScope struct {
	mu   sync.Mutex
	sets map[string]EffectiveFeatureSet
}

func NewResolutionScope() *ResolutionScope {
	return &ResolutionScope{sets: make(map[string]EffectiveFeatureSet)}
}

// Resolve returns the memoized set for key, calling resolve at most once.
// Concurrent callers within the scope block until the first resolution
// completes.
func (rs *ResolutionScope) Resolve(key string, resolve func() EffectiveFeatureSet) EffectiveFeatureSet {
	if rs == nil {
		return resolve()
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if set, ok := rs.sets[key]; ok {
		return set
	}
	set := resolve()
	rs.sets[key] = set
	return set
}

type scopeContextKey struct{}

// WithScope stores a resolution scope in the request context.
func WithScope(ctx context.Context, rs *ResolutionScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, rs)
}

// ScopeFromContext returns the request's resolution scope, if any.
func ScopeFromContext(ctx context.Context) *ResolutionScope {
	if ctx == nil {
		return nil
	}
	rs, _ := ctx.Value(scopeContextKey{}).(*ResolutionScope)
	return rs
}
