package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/field-task-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInCompany finds a user by ID only if it belongs to companyID
func (r *GormUserRepository) FindInCompany(ctx context.Context, id, companyID uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by exact username with its company preloaded
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindWithCompany finds a user by ID with its company preloaded
func (r *GormUserRepository) FindWithCompany(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Company").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByCompany lists users of a company ordered by full name
func (r *GormUserRepository) ListByCompany(ctx context.Context, companyID uint64, activeOnly bool) ([]models.User, error) {
	var users []models.User
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields updates columns of a user that belongs to companyID
func (r *GormUserRepository) UpdateFields(ctx context.Context, id, companyID uint64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

// Delete removes a user of companyID together with the tasks it created, the
// assignments it gave or received, its notifications and its sessions.
func (r *GormUserRepository) Delete(ctx context.Context, id, companyID uint64) (*CascadeResult, error) {
	res := &CascadeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ? AND company_id = ?", id, companyID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := cascadeAssignments(tx, res, "assigned_to_id = ? OR assigned_by_id = ?", id, id); err != nil {
			return err
		}
		if err := cascadeTasks(tx, res, "user_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("%w: notifications: %v", ErrCascadeDelete, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("%w: sessions: %v", ErrCascadeDelete, err)
		}

		users := tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.User{})
		if users.Error != nil {
			return fmt.Errorf("%w: user: %v", ErrCascadeDelete, users.Error)
		}
		res.Users = users.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
