package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrInvalidSession = errors.New("invalid_session")
	ErrSessionExpired = errors.New("session_expired")
	ErrSessionRevoked = errors.New("session_revoked")
)

// Session is a row managed by the identity provider. This service only
// reads it; it never issues or refreshes sessions.
type Session struct {
	Token     string     `gorm:"primaryKey;type:text"`
	UserID    string     `gorm:"column:user_id;not null;index"`
	OrgID     string     `gorm:"column:org_id;not null;index"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string { return "sessions" }

type Repository interface {
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Session, error)
}

type Service interface {
	// Authenticate validates a bearer/cookie token on every request; no
	// server-side session cache exists beyond what the store manages.
	Authenticate(ctx context.Context, token string) (*Session, error)
}
