package repository

import (
	"context"

	"github.com/yukikurage/field-task-api/internal/database"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	*gormPhotoStore[models.TaskPhoto]
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{
		gormPhotoStore: &gormPhotoStore[models.TaskPhoto]{
			db:          db,
			ownerColumn: "task_id",
			setOwner:    func(p *models.TaskPhoto, id uint64) { p.TaskID = id },
		},
		db: db,
	}
}

// CreateWithPhotos creates a task and its photos atomically
func (r *GormTaskRepository) CreateWithPhotos(ctx context.Context, task *models.Task, photos []models.TaskPhoto) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Company", "User", "Photos").Create(task).Error; err != nil {
			return err
		}
		if len(photos) == 0 {
			return nil
		}
		for i := range photos {
			photos[i].TaskID = task.ID
		}
		if err := tx.Create(&photos).Error; err != nil {
			return err
		}
		task.Photos = photos
		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if filter.CompanyID == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(
			database.ForCompany("tasks", filter.CompanyID),
			database.CreatedInPeriod("tasks", filter.Year, filter.Month),
		)
	if filter.UserID != 0 {
		query = query.Where("tasks.user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("User").Preload("Photos").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Delete removes a task and its photos
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (*CascadeResult, error) {
	res := &CascadeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cascadeTasks(tx, res, "id = ?", id); err != nil {
			return err
		}
		if res.Tasks == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
