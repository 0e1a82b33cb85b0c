package repository

import (
	"fmt"

	"github.com/yukikurage/field-task-api/internal/models"
	"gorm.io/gorm"
)

// cascadeTasks removes the tasks matching cond together with their photos.
// cond is evaluated against the tasks table.
func cascadeTasks(tx *gorm.DB, res *CascadeResult, cond string, args ...interface{}) error {
	taskIDs := func() *gorm.DB {
		return tx.Model(&models.Task{}).Select("id").Where(cond, args...)
	}

	var paths []string
	if err := tx.Model(&models.TaskPhoto{}).Where("task_id IN (?)", taskIDs()).Pluck("storage_path", &paths).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCollectPhotos, err)
	}

	photos := tx.Where("task_id IN (?)", taskIDs()).Delete(&models.TaskPhoto{})
	if photos.Error != nil {
		return fmt.Errorf("%w: task photos: %v", ErrCascadeDelete, photos.Error)
	}

	tasks := tx.Where(cond, args...).Delete(&models.Task{})
	if tasks.Error != nil {
		return fmt.Errorf("%w: tasks: %v", ErrCascadeDelete, tasks.Error)
	}

	res.PhotoPaths = append(res.PhotoPaths, paths...)
	res.Photos += photos.RowsAffected
	res.Tasks += tasks.RowsAffected
	return nil
}

// cascadeAssignments removes the assignments matching cond together with
// their photos and the notifications that point at them.
func cascadeAssignments(tx *gorm.DB, res *CascadeResult, cond string, args ...interface{}) error {
	assignmentIDs := func() *gorm.DB {
		return tx.Model(&models.Assignment{}).Select("id").Where(cond, args...)
	}

	var paths []string
	if err := tx.Model(&models.AssignmentPhoto{}).Where("assignment_id IN (?)", assignmentIDs()).Pluck("storage_path", &paths).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCollectPhotos, err)
	}

	if err := tx.Where("reference_id IN (?)", assignmentIDs()).Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("%w: notifications: %v", ErrCascadeDelete, err)
	}

	photos := tx.Where("assignment_id IN (?)", assignmentIDs()).Delete(&models.AssignmentPhoto{})
	if photos.Error != nil {
		return fmt.Errorf("%w: assignment photos: %v", ErrCascadeDelete, photos.Error)
	}

	assignments := tx.Where(cond, args...).Delete(&models.Assignment{})
	if assignments.Error != nil {
		return fmt.Errorf("%w: assignments: %v", ErrCascadeDelete, assignments.Error)
	}

	res.PhotoPaths = append(res.PhotoPaths, paths...)
	res.Photos += photos.RowsAffected
	res.Assignments += assignments.RowsAffected
	return nil
}
