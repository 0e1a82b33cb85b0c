package models

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Teams offered by default; admins may register others.
const (
	TeamFusao          = "fusao"
	TeamInfraestrutura = "infraestrutura"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyFullName = errors.New("full name is required")
	ErrInvalidRole   = errors.New("role must be admin or user")
	ErrMissingTenant = errors.New("company is required")
)

// ParseRole validates a role string. Empty input defaults to user.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	CompanyID    uint64    `gorm:"not null;index" json:"company_id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(100);not null" json:"full_name"`
	Team         string    `gorm:"type:varchar(50)" json:"team"`
	Role         Role      `gorm:"type:varchar(20);not null" json:"role"`
	IsSuperAdmin bool      `gorm:"not null" json:"is_super_admin"`
	Active       bool      `gorm:"not null" json:"active"`
	PushToken    *string   `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Company Company `gorm:"foreignKey:CompanyID" json:"-"`
}

// NewUser builds an active user bound to a company. The password must already be hashed.
func NewUser(companyID uint64, username, passwordHash, fullName, team string, role Role) (*User, error) {
	if companyID == 0 {
		return nil, ErrMissingTenant
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrEmptyFullName
	}
	if role != RoleAdmin && role != RoleUser {
		return nil, ErrInvalidRole
	}
	return &User{
		CompanyID:    companyID,
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Team:         strings.TrimSpace(team),
		Role:         role,
		Active:       true,
	}, nil
}

// IsAdmin reports whether the user manages its company.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperAdmin
}
