package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/metrics"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"gorm.io/gorm"
)

// Photo owner kinds, used as metric labels.
const (
	OwnerTask       = "task"
	OwnerAssignment = "assignment"
)

// TaskService handles field activity logs
type TaskService struct {
	taskRepo repository.TaskRepository
	photos   *PhotoService
	metrics  *metrics.Metrics
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, photos *PhotoService, m *metrics.Metrics) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		photos:   photos,
		metrics:  m,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	CompanyID uint64
	UserID    uint64
	Year      int
	Month     int
	Page      int
	PageSize  int
}

// ListTasks returns tasks in the principal's scope: every task of the company
// for admins, only their own for everyone else.
func (s *TaskService) ListTasks(ctx context.Context, p access.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	scope, err := access.ListScope(p, input.CompanyID, input.UserID)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		CompanyID: scope.CompanyID,
		UserID:    scope.UserID,
		Year:      input.Year,
		Month:     input.Month,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// CreateTask logs a task for the principal. At least one photo is required and
// the batch is validated before anything is stored; a failed insert removes
// the uploaded objects.
func (s *TaskService) CreateTask(ctx context.Context, p access.Principal, fields models.TaskFields, files []PhotoUpload) (*models.Task, error) {
	creator := &models.User{ID: p.UserID, CompanyID: p.CompanyID}
	task, err := models.NewTask(creator, fields)
	if err != nil {
		return nil, err
	}

	if err := s.photos.Validate(0, files); err != nil {
		s.metrics.PhotoBatch(OwnerTask, false)
		return nil, err
	}
	stored, err := s.photos.Store(ctx, companyPrefix(p.CompanyID), files)
	if err != nil {
		s.metrics.PhotoBatch(OwnerTask, false)
		return nil, err
	}

	photos := make([]models.TaskPhoto, 0, len(stored))
	for _, f := range stored {
		photos = append(photos, models.TaskPhoto{PhotoFile: f})
	}

	if err := s.taskRepo.CreateWithPhotos(ctx, task, photos); err != nil {
		s.photos.Remove(ctx, storagePaths(stored))
		s.metrics.PhotoBatch(OwnerTask, false)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.metrics.PhotoBatch(OwnerTask, true)

	return s.taskRepo.FindByID(ctx, task.ID, "User", "Photos")
}

// GetTask returns a task with its creator and photos
func (s *TaskService) GetTask(ctx context.Context, p access.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.find(ctx, taskID, "User", "Photos")
	if err != nil {
		return nil, err
	}
	if err := access.CanReadTask(p, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and its photos. Storage cleanup is best-effort.
func (s *TaskService) DeleteTask(ctx context.Context, p access.Principal, taskID uint64) error {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return err
	}
	if err := access.CanMutateTask(p, task); err != nil {
		return err
	}

	res, err := s.taskRepo.Delete(ctx, task.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.photos.Remove(ctx, res.PhotoPaths)
	return nil
}

// AddPhotos attaches a batch of photos to an existing task, all or nothing.
func (s *TaskService) AddPhotos(ctx context.Context, p access.Principal, taskID uint64, files []PhotoUpload) ([]models.TaskPhoto, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := access.CanMutateTask(p, task); err != nil {
		return nil, err
	}

	existing, err := s.taskRepo.CountPhotos(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	if err := s.photos.Validate(existing, files); err != nil {
		s.metrics.PhotoBatch(OwnerTask, false)
		return nil, err
	}

	stored, err := s.photos.Store(ctx, companyPrefix(task.CompanyID), files)
	if err != nil {
		s.metrics.PhotoBatch(OwnerTask, false)
		return nil, err
	}

	photos := make([]models.TaskPhoto, 0, len(stored))
	for _, f := range stored {
		photos = append(photos, models.TaskPhoto{PhotoFile: f})
	}
	if err := s.taskRepo.AddPhotos(ctx, task.ID, photos); err != nil {
		s.photos.Remove(ctx, storagePaths(stored))
		s.metrics.PhotoBatch(OwnerTask, false)
		return nil, fmt.Errorf("failed to save photos: %w", err)
	}

	s.metrics.PhotoBatch(OwnerTask, true)
	return photos, nil
}

// ListPhotos returns the photos of a readable task
func (s *TaskService) ListPhotos(ctx context.Context, p access.Principal, taskID uint64) ([]models.TaskPhoto, error) {
	if _, err := s.GetTask(ctx, p, taskID); err != nil {
		return nil, err
	}
	photos, err := s.taskRepo.ListPhotos(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// OpenPhoto returns one photo and a reader over its bytes. The caller closes the reader.
func (s *TaskService) OpenPhoto(ctx context.Context, p access.Principal, taskID, photoID uint64) (*models.TaskPhoto, io.ReadCloser, error) {
	photo, err := s.findPhoto(ctx, p, taskID, photoID, access.CanReadTask)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.photos.Open(ctx, photo.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return photo, r, nil
}

// DeletePhoto removes a single photo row and its object
func (s *TaskService) DeletePhoto(ctx context.Context, p access.Principal, taskID, photoID uint64) error {
	photo, err := s.findPhoto(ctx, p, taskID, photoID, access.CanMutateTask)
	if err != nil {
		return err
	}
	if err := s.taskRepo.DeletePhoto(ctx, taskID, photo.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	s.photos.Remove(ctx, []string{photo.StoragePath})
	return nil
}

// PhotoURL returns a direct link for a photo when the storage backend can sign one.
func (s *TaskService) PhotoURL(ctx context.Context, photo *models.TaskPhoto) (string, bool) {
	return s.photos.SignedURL(ctx, photo.StoragePath)
}

func (s *TaskService) findPhoto(ctx context.Context, p access.Principal, taskID, photoID uint64, guard func(access.Principal, *models.Task) error) (*models.TaskPhoto, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := guard(p, task); err != nil {
		return nil, err
	}
	photo, err := s.taskRepo.FindPhoto(ctx, taskID, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find photo: %w", err)
	}
	return photo, nil
}

func (s *TaskService) find(ctx context.Context, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
