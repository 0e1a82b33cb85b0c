package dto

import (
	"time"

	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           uint64      `json:"id"`
	CompanyID    uint64      `json:"company_id"`
	Username     string      `json:"username"`
	FullName     string      `json:"full_name"`
	Team         string      `json:"team"`
	Role         models.Role `json:"role"`
	IsSuperAdmin bool        `json:"is_super_admin"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserSummaryDTO is the nested form of a user inside other resources
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Team     string `json:"team"`
}

// CompanyDTO represents a company in API responses
type CompanyDTO struct {
	ID        uint64                   `json:"id"`
	Name      string                   `json:"name"`
	Slug      string                   `json:"slug"`
	Active    bool                     `json:"active"`
	CreatedAt time.Time                `json:"created_at"`
	Stats     *repository.CompanyStats `json:"stats,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:           user.ID,
		CompanyID:    user.CompanyID,
		Username:     user.Username,
		FullName:     user.FullName,
		Team:         user.Team,
		Role:         user.Role,
		IsSuperAdmin: user.IsSuperAdmin,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return items
}

// toUserSummary returns nil when the relation was not preloaded
func toUserSummary(user models.User) *UserSummaryDTO {
	if user.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{
		ID:       user.ID,
		FullName: user.FullName,
		Team:     user.Team,
	}
}

// ToCompanyDTO converts a Company model to CompanyDTO. stats may be nil.
func ToCompanyDTO(company models.Company, stats *repository.CompanyStats) CompanyDTO {
	return CompanyDTO{
		ID:        company.ID,
		Name:      company.Name,
		Slug:      company.Slug,
		Active:    company.Active,
		CreatedAt: company.CreatedAt,
		Stats:     stats,
	}
}
