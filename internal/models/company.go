package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrEmptyCompanyName = errors.New("company name is required")
	ErrEmptySlug        = errors.New("company slug is required")
	ErrInvalidSlug      = errors.New("slug may only contain lowercase letters, digits and hyphens")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type Company struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Users []User `gorm:"foreignKey:CompanyID" json:"-"`
}

// NormalizeSlug trims and lowercases a slug and checks its format.
func NormalizeSlug(raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		return "", ErrEmptySlug
	}
	if len(slug) > 50 || !slugPattern.MatchString(slug) {
		return "", ErrInvalidSlug
	}
	return slug, nil
}

// NewCompany builds an active company with a normalized slug.
func NewCompany(name, slug string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCompanyName
	}
	normalized, err := NormalizeSlug(slug)
	if err != nil {
		return nil, err
	}
	return &Company{
		Name:   name,
		Slug:   normalized,
		Active: true,
	}, nil
}
