package models

import "time"

// PhotoFile describes a stored image.
type PhotoFile struct {
	StoragePath  string    `gorm:"type:varchar(500);not null" json:"-"`
	OriginalName string    `gorm:"type:varchar(255);not null" json:"original_name"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	ContentType  string    `gorm:"type:varchar(50);not null" json:"content_type"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

type TaskPhoto struct {
	ID     uint64 `gorm:"primarykey" json:"id"`
	TaskID uint64 `gorm:"not null;index" json:"task_id"`
	PhotoFile

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}

type AssignmentPhoto struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	AssignmentID uint64 `gorm:"not null;index" json:"assignment_id"`
	PhotoFile

	// Relations
	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
}
