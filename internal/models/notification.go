package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskUpdated   NotificationType = "task_updated"
	NotificationTaskCompleted NotificationType = "task_completed"
)

type Notification struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	UserID      uint64           `gorm:"not null;index" json:"user_id"`
	CompanyID   uint64           `gorm:"not null;index" json:"company_id"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title       string           `gorm:"type:varchar(200);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	ReferenceID *uint64          `gorm:"index" json:"reference_id"`
	Read        bool             `gorm:"not null;index" json:"read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
