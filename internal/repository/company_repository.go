package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/field-task-api/internal/models"
	"gorm.io/gorm"
)

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create creates a new company
func (r *GormCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uint64) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindBySlug finds a company by its unique slug
func (r *GormCompanyRepository) FindBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// List lists all companies ordered by name
func (r *GormCompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Update saves a company
func (r *GormCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).
		Model(company).
		Select("name", "active").
		Updates(company).Error
}

// Delete removes a company and everything it owns in dependency order:
// assignments (with their photos and notifications), task photos, tasks,
// remaining notifications, sessions, users and finally the company.
func (r *GormCompanyRepository) Delete(ctx context.Context, id uint64) (*CascadeResult, error) {
	res := &CascadeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cascadeAssignments(tx, res, "company_id = ?", id); err != nil {
			return err
		}
		if err := cascadeTasks(tx, res, "company_id = ?", id); err != nil {
			return err
		}

		userIDs := tx.Model(&models.User{}).Select("id").Where("company_id = ?", id)
		if err := tx.Where("company_id = ? OR user_id IN (?)", id, userIDs).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("%w: notifications: %v", ErrCascadeDelete, err)
		}

		userIDs = tx.Model(&models.User{}).Select("id").Where("company_id = ?", id)
		if err := tx.Where("user_id IN (?)", userIDs).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("%w: sessions: %v", ErrCascadeDelete, err)
		}

		users := tx.Where("company_id = ?", id).Delete(&models.User{})
		if users.Error != nil {
			return fmt.Errorf("%w: users: %v", ErrCascadeDelete, users.Error)
		}
		res.Users = users.RowsAffected

		company := tx.Delete(&models.Company{}, id)
		if company.Error != nil {
			return fmt.Errorf("%w: company: %v", ErrCascadeDelete, company.Error)
		}
		if company.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Stats counts users and tasks of a company
func (r *GormCompanyRepository) Stats(ctx context.Context, id uint64) (*CompanyStats, error) {
	stats := &CompanyStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Where("company_id = ?", id).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("company_id = ?", id).Count(&stats.Tasks).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
