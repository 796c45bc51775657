package subject

import "context"

type contextKey struct{}

// WithSubject stores the request subject in the context.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request subject, if set.
func FromContext(ctx context.Context) (Subject, bool) {
	if ctx == nil {
		return Subject{}, false
	}
	s, ok := ctx.Value(contextKey{}).(Subject)
	if !ok || s.ID == "" {
		return Subject{}, false
	}
	return s, true
}
