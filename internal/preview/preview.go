package preview

import "net/http"

// Decision codes mirror the API error codes for the two deny outcomes.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// Request captures the facts needed to decide preview access. The token
// and ownership fields are only consulted once the earlier checks pass.
type Request struct {
	Preview       bool
	HasAuthHeader bool
	TokenValid    bool
	IsOwner       bool
}

// Decision is a terminal outcome of the preview check.
type Decision struct {
	OK     bool
	Status int
	Code   string
}

// Decide evaluates preview access in strict order. The ordering is a
// contract: an unauthenticated caller is told UNAUTHORIZED before any
// ownership result is computed, so owner-check outcomes never leak to
// callers who have not proven identity.
func Decide(req Request) Decision {
	if !req.Preview {
		return Decision{OK: true}
	}
	if !req.HasAuthHeader {
		return Decision{OK: false, Status: http.StatusUnauthorized, Code: CodeUnauthorized}
	}
	if !req.TokenValid {
		return Decision{OK: false, Status: http.StatusUnauthorized, Code: CodeUnauthorized}
	}
	if !req.IsOwner {
		return Decision{OK: false, Status: http.StatusForbidden, Code: CodeForbidden}
	}
	return Decision{OK: true}
}
