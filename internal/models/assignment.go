package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyTitle            = errors.New("title is required")
	ErrCrossTenantAssignment = errors.New("assigner and assignee must belong to the assignment company")
	ErrInactiveAssignee      = errors.New("assignee is not active")
	ErrSelfAssignment        = errors.New("cannot assign a task to yourself")
	ErrInvalidCoordinates    = errors.New("invalid coordinates")
)

// Assignment is a manager-issued field job.
type Assignment struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	CompanyID    uint64           `gorm:"not null;index" json:"company_id"`
	AssignedByID uint64           `gorm:"not null;index" json:"assigned_by"`
	AssignedToID uint64           `gorm:"not null;index" json:"assigned_to"`
	Title        string           `gorm:"type:varchar(200);not null" json:"title"`
	Description  string           `gorm:"type:text" json:"description"`
	Address      string           `gorm:"type:varchar(300)" json:"address"`
	Latitude     *float64         `json:"latitude"`
	Longitude    *float64         `json:"longitude"`
	Status       AssignmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Priority     Priority         `gorm:"type:varchar(20);not null" json:"priority"`
	DueDate      *time.Time       `json:"due_date"`
	Observations string           `gorm:"type:text" json:"observations"`
	Materials    string           `gorm:"type:text" json:"materials"`
	StartedAt    *time.Time       `json:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relations
	Company    Company           `gorm:"foreignKey:CompanyID" json:"-"`
	AssignedBy User              `gorm:"foreignKey:AssignedByID" json:"-"`
	AssignedTo User              `gorm:"foreignKey:AssignedToID" json:"-"`
	Photos     []AssignmentPhoto `gorm:"foreignKey:AssignmentID" json:"-"`
}

func (Assignment) TableName() string {
	return "task_assignments"
}

// AssignmentFields carries the manager-entered part of an assignment.
type AssignmentFields struct {
	Title       string
	Description string
	Address     string
	Latitude    *float64
	Longitude   *float64
	Priority    Priority
	DueDate     *time.Time
}

// NewAssignment builds a pending assignment. Both users must belong to companyID.
func NewAssignment(companyID uint64, assigner, assignee *User, f AssignmentFields) (*Assignment, error) {
	if companyID == 0 || assigner == nil || assignee == nil {
		return nil, ErrMissingTenant
	}
	if assigner.CompanyID != companyID || assignee.CompanyID != companyID {
		return nil, ErrCrossTenantAssignment
	}
	if assigner.ID == assignee.ID {
		return nil, ErrSelfAssignment
	}
	if !assignee.Active {
		return nil, ErrInactiveAssignee
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if f.Latitude != nil && (*f.Latitude < -90 || *f.Latitude > 90 || *f.Longitude < -180 || *f.Longitude > 180) {
		return nil, ErrInvalidCoordinates
	}
	priority := f.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return &Assignment{
		CompanyID:    companyID,
		AssignedByID: assigner.ID,
		AssignedToID: assignee.ID,
		Title:        title,
		Description:  strings.TrimSpace(f.Description),
		Address:      strings.TrimSpace(f.Address),
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		Status:       StatusPending,
		Priority:     priority,
		DueDate:      f.DueDate,
	}, nil
}

// TransitionTo moves the assignment forward and stamps lifecycle timestamps.
// It reports whether the status actually changed.
func (a *Assignment) TransitionTo(next AssignmentStatus, now time.Time) (bool, error) {
	if err := a.Status.CanTransitionTo(next); err != nil {
		return false, err
	}
	if a.Status == next {
		return false, nil
	}
	if next != StatusPending && a.StartedAt == nil {
		a.StartedAt = &now
	}
	if next == StatusCompleted {
		a.CompletedAt = &now
	}
	a.Status = next
	return true, nil
}
