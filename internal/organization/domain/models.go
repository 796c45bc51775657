package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidSlug         = errors.New("invalid_slug")
	ErrNotFound            = errors.New("not_found")
	ErrPreviewUnauthorized = errors.New("preview_unauthorized")
	ErrPreviewForbidden    = errors.New("preview_forbidden")
)

type Organization struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	OwnerID string       `gorm:"column:owner_id;not null;index"`
	Slug    string       `gorm:"type:text;not null;uniqueIndex"`
	Name    string       `gorm:"type:text;not null"`
	Plan    string       `gorm:"type:text;not null;default:free"`

	Tagline      *string           `gorm:"type:text"`
	Description  *string           `gorm:"type:text"`
	Website      *string           `gorm:"type:text"`
	City         *string           `gorm:"type:text"`
	Country      *string           `gorm:"type:text"`
	LogoURL      *string           `gorm:"column:logo_url;type:text"`
	Categories   datatypes.JSONMap `gorm:"type:jsonb"`
	OpeningHours datatypes.JSONMap `gorm:"column:opening_hours;type:jsonb"`

	BillingEmail  *string `gorm:"column:billing_email;type:text"`
	InternalNotes *string `gorm:"column:internal_notes;type:text"`

	Published   bool       `gorm:"not null;default:false"`
	PublishedAt *time.Time `gorm:"column:published_at"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }

// Record flattens the row into the column-keyed shape consumed by the
// public sanitizer. Every column appears here; the sanitizer decides what
// survives.
func (o *Organization) Record() map[string]any {
	return map[string]any{
		"id":             o.ID.String(),
		"owner_id":       o.OwnerID,
		"slug":           o.Slug,
		"name":           o.Name,
		"plan":           o.Plan,
		"tagline":        o.Tagline,
		"description":    o.Description,
		"website":        o.Website,
		"city":           o.City,
		"country":        o.Country,
		"logo_url":       o.LogoURL,
		"categories":     map[string]any(o.Categories),
		"opening_hours":  map[string]any(o.OpeningHours),
		"billing_email":  o.BillingEmail,
		"internal_notes": o.InternalNotes,
		"published_at":   o.PublishedAt,
	}
}

type Repository interface {
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Organization, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Organization, error)
}

// PublicProfileRequest carries the request facts feeding the preview
// decision alongside the lookup slug.
type PublicProfileRequest struct {
	Slug          string
	Preview       bool
	HasAuthHeader bool
	TokenValid    bool
	CallerUserID  string
}

type Service interface {
	// PublicProfile serves the sanitized public record for a directory page.
	PublicProfile(ctx context.Context, req PublicProfileRequest) (map[string]any, error)
	Get(ctx context.Context, id string) (*Organization, error)
}
