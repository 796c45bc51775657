package subject

import (
	"errors"
	"fmt"
	"strings"
)

// Type discriminates who an entitlement check is performed against.
type Type string

const (
	TypeOrg  Type = "org"
	TypeUser Type = "user"
)

var (
	ErrInvalidType = errors.New("invalid_subject_type")
	ErrInvalidID   = errors.New("invalid_subject_id")
)

// Subject identifies an organization or an individual user.
type Subject struct {
	Type Type   `json:"subject_type"`
	ID   string `json:"subject_id"`
}

// Org returns the standard subject for this domain.
func Org(id string) Subject {
	return Subject{Type: TypeOrg, ID: id}
}

func User(id string) Subject {
	return Subject{Type: TypeUser, ID: id}
}

// Normalize trims and lowercases the type and validates both fields.
func Normalize(s Subject) (Subject, error) {
	t := Type(strings.ToLower(strings.TrimSpace(string(s.Type))))
	switch t {
	case TypeOrg, TypeUser:
	case "":
		t = TypeOrg
	default:
		return Subject{}, ErrInvalidType
	}

	id := strings.TrimSpace(s.ID)
	if id == "" {
		return Subject{}, ErrInvalidID
	}

	return Subject{Type: t, ID: id}, nil
}

// Key returns a stable cache/memoization key for the subject.
func (s Subject) Key() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID)
}
