package preview

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideOrdering(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Decision
	}{
		{
			name: "not a preview request always allows",
			req:  Request{Preview: false, HasAuthHeader: false, TokenValid: false, IsOwner: false},
			want: Decision{OK: true},
		},
		{
			name: "not a preview request ignores auth state",
			req:  Request{Preview: false, HasAuthHeader: true, TokenValid: true, IsOwner: true},
			want: Decision{OK: true},
		},
		{
			// Unauthenticated callers must get 401, never 403: a 403 would
			// leak the owner-check result.
			name: "preview without auth header is unauthorized",
			req:  Request{Preview: true, HasAuthHeader: false, TokenValid: false, IsOwner: false},
			want: Decision{OK: false, Status: http.StatusUnauthorized, Code: CodeUnauthorized},
		},
		{
			name: "preview without auth header is unauthorized even for owner",
			req:  Request{Preview: true, HasAuthHeader: false, TokenValid: false, IsOwner: true},
			want: Decision{OK: false, Status: http.StatusUnauthorized, Code: CodeUnauthorized},
		},
		{
			name: "preview with invalid token is unauthorized",
			req:  Request{Preview: true, HasAuthHeader: true, TokenValid: false, IsOwner: false},
			want: Decision{OK: false, Status: http.StatusUnauthorized, Code: CodeUnauthorized},
		},
		{
			name: "valid token but not owner is forbidden",
			req:  Request{Preview: true, HasAuthHeader: true, TokenValid: true, IsOwner: false},
			want: Decision{OK: false, Status: http.StatusForbidden, Code: CodeForbidden},
		},
		{
			name: "owner preview allowed",
			req:  Request{Preview: true, HasAuthHeader: true, TokenValid: true, IsOwner: true},
			want: Decision{OK: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.req))
		})
	}
}
