package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/field-task-api/internal/database"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	*gormPhotoStore[models.AssignmentPhoto]
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{
		gormPhotoStore: &gormPhotoStore[models.AssignmentPhoto]{
			db:          db,
			ownerColumn: "assignment_id",
			setOwner:    func(p *models.AssignmentPhoto, id uint64) { p.AssignmentID = id },
		},
		db: db,
	}
}

// CreateWithNotification creates an assignment and the notification for its assignee
func (r *GormAssignmentRepository) CreateWithNotification(ctx context.Context, assignment *models.Assignment, notification *models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Company", "AssignedBy", "AssignedTo", "Photos").Create(assignment).Error; err != nil {
			return err
		}
		if notification == nil {
			return nil
		}
		ref := assignment.ID
		notification.ReferenceID = &ref
		if err := tx.Omit("User").Create(notification).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateNotification, err)
		}
		return nil
	})
}

// FindByID finds an assignment by ID with optional preloading
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Assignment, error) {
	var assignment models.Assignment
	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List retrieves assignments with filtering and pagination
func (r *GormAssignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	var assignments []models.Assignment

	if filter.CompanyID == 0 {
		return []models.Assignment{}, 0, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Scopes(database.ForCompany("task_assignments", filter.CompanyID))
	if filter.AssignedToID != 0 {
		query = query.Where("task_assignments.assigned_to_id = ?", filter.AssignedToID)
	}
	if filter.AssignedByID != 0 {
		query = query.Where("task_assignments.assigned_by_id = ?", filter.AssignedByID)
	}
	if filter.Status != nil {
		query = query.Where("task_assignments.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_assignments.created_at DESC").Order("task_assignments.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.
		Preload("AssignedBy").
		Preload("AssignedTo").
		Preload("Photos").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// SaveStatus persists a status update and, when given, its notification
func (r *GormAssignmentRepository) SaveStatus(ctx context.Context, assignment *models.Assignment, notification *models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Assignment{}).
			Where("id = ? AND company_id = ?", assignment.ID, assignment.CompanyID).
			Updates(map[string]interface{}{
				"status":       assignment.Status,
				"started_at":   assignment.StartedAt,
				"completed_at": assignment.CompletedAt,
				"observations": assignment.Observations,
				"materials":    assignment.Materials,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if notification == nil {
			return nil
		}
		if err := tx.Omit("User").Create(notification).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateNotification, err)
		}
		return nil
	})
}

// Delete removes an assignment, its notifications and its photos
func (r *GormAssignmentRepository) Delete(ctx context.Context, id uint64) (*CascadeResult, error) {
	res := &CascadeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cascadeAssignments(tx, res, "id = ?", id); err != nil {
			return err
		}
		if res.Assignments == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
