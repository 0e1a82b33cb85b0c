package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/field-task-api/internal/models"
)

// PhotoDTO represents a stored photo in API responses
type PhotoDTO struct {
	ID           uint64    `json:"id"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	ContentType  string    `json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
	URL          string    `json:"url"`
}

// TaskDTO represents a field activity log in API responses
type TaskDTO struct {
	ID              uint64           `json:"id"`
	CompanyID       uint64           `json:"company_id"`
	UserID          uint64           `json:"user_id"`
	Contractor      string           `json:"contractor"`
	Neighborhood    string           `json:"neighborhood"`
	SpliceBoxOpened bool             `json:"splice_box_opened"`
	SpliceBoxClosed bool             `json:"splice_box_closed"`
	CTOOpened       bool             `json:"cto_opened"`
	CTOClosed       bool             `json:"cto_closed"`
	RosetteOpened   bool             `json:"rosette_opened"`
	RosetteClosed   bool             `json:"rosette_closed"`
	CTOCount        int              `json:"cto_count"`
	SpliceBoxCount  int              `json:"splice_box_count"`
	FiberType       models.FiberType `json:"fiber_type,omitempty"`
	FiberLaid       decimal.Decimal  `json:"fiber_laid_meters"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
	User            *UserSummaryDTO  `json:"user,omitempty"`
	Photos          []PhotoDTO       `json:"photos"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// PhotoURL resolves the URL a client uses to fetch one photo
type PhotoURL func(photoID uint64, storagePath string) string

// ToPhotoDTO converts stored photo metadata to PhotoDTO
func ToPhotoDTO(id uint64, file models.PhotoFile, url PhotoURL) PhotoDTO {
	dto := PhotoDTO{
		ID:           id,
		OriginalName: file.OriginalName,
		FileSize:     file.FileSize,
		ContentType:  file.ContentType,
		UploadedAt:   file.UploadedAt,
	}
	if url != nil {
		dto.URL = url(id, file.StoragePath)
	}
	return dto
}

// ToTaskPhotoDTOs converts task photos
func ToTaskPhotoDTOs(photos []models.TaskPhoto, url PhotoURL) []PhotoDTO {
	items := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		items[i] = ToPhotoDTO(p.ID, p.PhotoFile, url)
	}
	return items
}

// ToTaskDTO converts a Task model to TaskDTO. url builds photo links for the task.
func ToTaskDTO(task models.Task, url PhotoURL) TaskDTO {
	return TaskDTO{
		ID:              task.ID,
		CompanyID:       task.CompanyID,
		UserID:          task.UserID,
		Contractor:      task.Contractor,
		Neighborhood:    task.Neighborhood,
		SpliceBoxOpened: task.SpliceBoxOpened,
		SpliceBoxClosed: task.SpliceBoxClosed,
		CTOOpened:       task.CTOOpened,
		CTOClosed:       task.CTOClosed,
		RosetteOpened:   task.RosetteOpened,
		RosetteClosed:   task.RosetteClosed,
		CTOCount:        task.CTOCount,
		SpliceBoxCount:  task.SpliceBoxCount,
		FiberType:       task.FiberType,
		FiberLaid:       task.FiberLaid,
		Notes:           task.Notes,
		CreatedAt:       task.CreatedAt,
		User:            toUserSummary(task.User),
		Photos:          ToTaskPhotoDTOs(task.Photos, url),
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, urlFor func(models.Task) PhotoURL, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, urlFor(task))
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

func totalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		pages++
	}
	return pages
}
