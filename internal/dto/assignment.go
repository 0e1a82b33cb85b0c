package dto

import (
	"time"

	"github.com/yukikurage/field-task-api/internal/models"
)

// AssignmentDTO represents a manager-issued job in API responses
type AssignmentDTO struct {
	ID           uint64                  `json:"id"`
	CompanyID    uint64                  `json:"company_id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Address      string                  `json:"address"`
	Latitude     *float64                `json:"latitude"`
	Longitude    *float64                `json:"longitude"`
	Status       models.AssignmentStatus `json:"status"`
	StatusLabel  string                  `json:"status_label"`
	Priority     models.Priority         `json:"priority"`
	DueDate      *time.Time              `json:"due_date"`
	Observations string                  `json:"observations"`
	Materials    string                  `json:"materials"`
	StartedAt    *time.Time              `json:"started_at"`
	CompletedAt  *time.Time              `json:"completed_at"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	AssignedByID uint64                  `json:"assigned_by_id"`
	AssignedToID uint64                  `json:"assigned_to_id"`
	AssignedBy   *UserSummaryDTO         `json:"assigned_by,omitempty"`
	AssignedTo   *UserSummaryDTO         `json:"assigned_to,omitempty"`
	Photos       []PhotoDTO              `json:"photos,omitempty"`
}

// AssignmentListResponse represents a paginated list of assignments
type AssignmentListResponse struct {
	Assignments []AssignmentDTO `json:"assignments"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalCount  int64           `json:"total_count"`
	TotalPages  int             `json:"total_pages"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID          uint64                  `json:"id"`
	Type        models.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	ReferenceID *uint64                 `json:"reference_id"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ToAssignmentPhotoDTOs converts assignment photos
func ToAssignmentPhotoDTOs(photos []models.AssignmentPhoto, url PhotoURL) []PhotoDTO {
	items := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		items[i] = ToPhotoDTO(p.ID, p.PhotoFile, url)
	}
	return items
}

// ToAssignmentDTO converts an Assignment model to AssignmentDTO
func ToAssignmentDTO(a models.Assignment, url PhotoURL) AssignmentDTO {
	dto := AssignmentDTO{
		ID:           a.ID,
		CompanyID:    a.CompanyID,
		Title:        a.Title,
		Description:  a.Description,
		Address:      a.Address,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
		Status:       a.Status,
		StatusLabel:  a.Status.Label(),
		Priority:     a.Priority,
		DueDate:      a.DueDate,
		Observations: a.Observations,
		Materials:    a.Materials,
		StartedAt:    a.StartedAt,
		CompletedAt:  a.CompletedAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		AssignedByID: a.AssignedByID,
		AssignedToID: a.AssignedToID,
		AssignedBy:   toUserSummary(a.AssignedBy),
		AssignedTo:   toUserSummary(a.AssignedTo),
	}
	if len(a.Photos) > 0 {
		dto.Photos = ToAssignmentPhotoDTOs(a.Photos, url)
	}
	return dto
}

// ToAssignmentListResponse converts a slice of assignments to AssignmentListResponse
func ToAssignmentListResponse(assignments []models.Assignment, urlFor func(models.Assignment) PhotoURL, page, pageSize int, totalCount int64) AssignmentListResponse {
	items := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		items[i] = ToAssignmentDTO(a, urlFor(a))
	}

	return AssignmentListResponse{
		Assignments: items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages(totalCount, pageSize),
	}
}

// ToNotificationDTOs converts notifications
func ToNotificationDTOs(list []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, len(list))
	for i, n := range list {
		items[i] = NotificationDTO{
			ID:          n.ID,
			Type:        n.Type,
			Title:       n.Title,
			Message:     n.Message,
			ReferenceID: n.ReferenceID,
			Read:        n.Read,
			CreatedAt:   n.CreatedAt,
		}
	}
	return items
}
