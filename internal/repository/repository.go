package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/field-task-api/internal/models"
)

var (
	// ErrCollectPhotos is returned when photo paths cannot be gathered before a cascade delete.
	ErrCollectPhotos = errors.New("repository: collect photo paths failed")
	// ErrCascadeDelete is returned when a dependent row set cannot be removed.
	ErrCascadeDelete = errors.New("repository: cascade delete failed")
	// ErrCreateNotification is returned when the notification of a mutation cannot be stored.
	ErrCreateNotification = errors.New("repository: create notification failed")
	// ErrNoRows is returned by scoped mutations that matched nothing.
	ErrNoRows = errors.New("repository: no rows matched")
)

// CompanyRepository defines the interface for tenant data access
type CompanyRepository interface {
	// Create creates a new company
	Create(ctx context.Context, company *models.Company) error

	// FindByID finds a company by ID
	FindByID(ctx context.Context, id uint64) (*models.Company, error)

	// FindBySlug finds a company by its unique slug
	FindBySlug(ctx context.Context, slug string) (*models.Company, error)

	// List lists all companies ordered by name
	List(ctx context.Context) ([]models.Company, error)

	// Update saves a company
	Update(ctx context.Context, company *models.Company) error

	// Delete removes a company and every row it owns
	Delete(ctx context.Context, id uint64) (*CascadeResult, error)

	// Stats counts users and tasks of a company
	Stats(ctx context.Context, id uint64) (*CompanyStats, error)
}

// CompanyStats is a read-only aggregate of one tenant.
type CompanyStats struct {
	Users int64 `json:"users"`
	Tasks int64 `json:"tasks"`
}

// CascadeResult reports what a cascade delete removed. PhotoPaths must be
// cleaned from object storage by the caller.
type CascadeResult struct {
	Users       int64
	Tasks       int64
	Assignments int64
	Photos      int64
	PhotoPaths  []string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindInCompany finds a user by ID only if it belongs to companyID
	FindInCompany(ctx context.Context, id, companyID uint64) (*models.User, error)

	// FindByUsername finds a user by username with its company preloaded
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindWithCompany finds a user by ID with its company preloaded
	FindWithCompany(ctx context.Context, id uint64) (*models.User, error)

	// ListByCompany lists users of a company ordered by full name
	ListByCompany(ctx context.Context, companyID uint64, activeOnly bool) ([]models.User, error)

	// UpdateFields updates columns of a user that belongs to companyID
	UpdateFields(ctx context.Context, id, companyID uint64, fields map[string]interface{}) error

	// Delete removes a user of companyID and every row it owns
	Delete(ctx context.Context, id, companyID uint64) (*CascadeResult, error)
}

// SessionRepository defines the interface for server-side session data access
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *models.Session) error

	// FindByTokenHash finds a session by the hash of its token
	FindByTokenHash(ctx context.Context, hash string) (*models.Session, error)

	// FindByID finds a session by ID
	FindByID(ctx context.Context, id uint64) (*models.Session, error)

	// Revoke marks a session revoked
	Revoke(ctx context.Context, id uint64, at time.Time) error

	// RevokeAllForUser revokes every live session of a user
	RevokeAllForUser(ctx context.Context, userID uint64, at time.Time) error

	// DeleteExpired removes sessions that expired before the given time
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PhotoRepository is shared by the task and assignment stores.
type PhotoRepository[T any] interface {
	// AddPhotos stores photo rows for an owner in one transaction
	AddPhotos(ctx context.Context, ownerID uint64, photos []T) error

	// CountPhotos counts photos of an owner
	CountPhotos(ctx context.Context, ownerID uint64) (int64, error)

	// ListPhotos lists photos of an owner in upload order
	ListPhotos(ctx context.Context, ownerID uint64) ([]T, error)

	// FindPhoto finds one photo of an owner
	FindPhoto(ctx context.Context, ownerID, photoID uint64) (*T, error)

	// DeletePhoto removes one photo row
	DeletePhoto(ctx context.Context, ownerID, photoID uint64) error
}

// TaskRepository defines the interface for field task data access
type TaskRepository interface {
	PhotoRepository[models.TaskPhoto]

	// CreateWithPhotos creates a task and its photos atomically
	CreateWithPhotos(ctx context.Context, task *models.Task, photos []models.TaskPhoto) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Delete removes a task and its photos
	Delete(ctx context.Context, id uint64) (*CascadeResult, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	CompanyID uint64
	UserID    uint64
	Year      int
	Month     int
	Page      int
	PageSize  int
}

// AssignmentRepository defines the interface for assignment data access
type AssignmentRepository interface {
	PhotoRepository[models.AssignmentPhoto]

	// CreateWithNotification creates an assignment and the notification for its assignee
	CreateWithNotification(ctx context.Context, assignment *models.Assignment, notification *models.Notification) error

	// FindByID finds an assignment by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Assignment, error)

	// List retrieves assignments with filtering and pagination
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)

	// SaveStatus persists a status update and, when given, its notification
	SaveStatus(ctx context.Context, assignment *models.Assignment, notification *models.Notification) error

	// Delete removes an assignment, its notifications and its photos
	Delete(ctx context.Context, id uint64) (*CascadeResult, error)
}

// AssignmentFilter holds filtering options for listing assignments
type AssignmentFilter struct {
	CompanyID    uint64
	AssignedToID uint64
	AssignedByID uint64
	Status       *models.AssignmentStatus
	Page         int
	PageSize     int
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// FindByID finds a notification by ID
	FindByID(ctx context.Context, id uint64) (*models.Notification, error)

	// ListForUser lists newest notifications of a user
	ListForUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]models.Notification, error)

	// CountUnread counts unread notifications of a user
	CountUnread(ctx context.Context, userID uint64) (int64, error)

	// MarkRead flips one notification to read
	MarkRead(ctx context.Context, id uint64) error

	// MarkAllRead flips every unread notification of a user
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
}

// StatsRepository defines read-only dashboard aggregates
type StatsRepository interface {
	// TaskTotals sums tasks and fiber laid in a period
	TaskTotals(ctx context.Context, q StatsQuery) (*TaskTotals, error)

	// TeamStats groups task totals by team
	TeamStats(ctx context.Context, q StatsQuery) ([]TeamStat, error)

	// UserRanking orders users by task count
	UserRanking(ctx context.Context, q StatsQuery, limit int) ([]UserRank, error)

	// AssignmentStatusCounts counts assignments per status
	AssignmentStatusCounts(ctx context.Context, q StatsQuery) (map[models.AssignmentStatus]int64, error)

	// MonthlyStats returns twelve buckets of task totals for q.Year, ignoring q.Month
	MonthlyStats(ctx context.Context, q StatsQuery) ([]MonthStat, error)
}

// StatsQuery selects the company and period to aggregate. A zero year means
// all time and a zero month with a year means that whole year. A non-zero
// UserID narrows tasks to their creator and assignments to their assignee.
type StatsQuery struct {
	CompanyID uint64
	UserID    uint64
	Year      int
	Month     int
}

type TaskTotals struct {
	Tasks     int64           `gorm:"column:task_count" json:"tasks"`
	FiberLaid decimal.Decimal `gorm:"column:fiber_laid" json:"fiber_laid_meters"`
	CTOs      int64           `gorm:"column:cto_total" json:"cto_count"`
	SpliceBox int64           `gorm:"column:splice_box_total" json:"splice_box_count"`
}

type MonthStat struct {
	Month     int             `json:"month"`
	Tasks     int64           `json:"tasks"`
	CTOs      int64           `json:"cto_count"`
	SpliceBox int64           `json:"splice_box_count"`
	FiberLaid decimal.Decimal `json:"fiber_laid_meters"`
}

type TeamStat struct {
	Team      string          `gorm:"column:team" json:"team"`
	Tasks     int64           `gorm:"column:task_count" json:"tasks"`
	FiberLaid decimal.Decimal `gorm:"column:fiber_laid" json:"fiber_laid_meters"`
}

type UserRank struct {
	UserID    uint64          `gorm:"column:user_id" json:"user_id"`
	FullName  string          `gorm:"column:full_name" json:"full_name"`
	Team      string          `gorm:"column:team" json:"team"`
	Tasks     int64           `gorm:"column:task_count" json:"tasks"`
	FiberLaid decimal.Decimal `gorm:"column:fiber_laid" json:"fiber_laid_meters"`
}
