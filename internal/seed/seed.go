// Package seed creates the first super-admin and its home company on boot.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
)

// EnsureSuperAdmin is idempotent: it does nothing when a super-admin exists
// or when no seed username is configured. A random password is generated and
// printed once when none is supplied.
func EnsureSuperAdmin(ctx context.Context, db *gorm.DB, cfg config.SeedConfig) error {
	if cfg.Username == "" {
		return nil
	}

	db = db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("is_super_admin = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("count super admins: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed super admin already exists")
		return nil
	}

	password := cfg.Password
	if password == "" {
		token, err := utils.GenerateToken()
		if err != nil {
			return fmt.Errorf("generate seed password: %w", err)
		}
		password = token[:16]
		fmt.Printf("[field-task-api] seed super admin password: %s\n", password)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		company, err := models.NewCompany(cfg.CompanyName, cfg.CompanySlug)
		if err != nil {
			return fmt.Errorf("seed company: %w", err)
		}
		var existing models.Company
		err = tx.Where("slug = ?", company.Slug).First(&existing).Error
		switch {
		case err == nil:
			company = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(company).Error; err != nil {
				return fmt.Errorf("insert seed company: %w", err)
			}
		default:
			return fmt.Errorf("find seed company: %w", err)
		}

		user, err := models.NewUser(company.ID, cfg.Username, hash, "Super Admin", models.TeamInfraestrutura, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("seed super admin: %w", err)
		}
		user.IsSuperAdmin = true
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("insert seed super admin: %w", err)
		}

		log.Info().Str("username", user.Username).Str("company", company.Slug).Msg("seed super admin created")
		return nil
	})
}
