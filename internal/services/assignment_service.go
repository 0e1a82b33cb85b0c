package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/metrics"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/notify"
	"github.com/yukikurage/field-task-api/internal/repository"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAssigneeNotFound = errors.New("assigned user not found in this company")
)

// AssignmentService handles manager-issued field jobs
type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	photos         *PhotoService
	publisher      notify.Publisher
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	photos *PhotoService,
	publisher notify.Publisher,
	m *metrics.Metrics,
) *AssignmentService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		photos:         photos,
		publisher:      publisher,
		metrics:        m,
		now:            time.Now,
	}
}

// CreateAssignmentInput represents input for creating an assignment. Location
// comes either from a Google Maps link or from raw coordinates.
type CreateAssignmentInput struct {
	AssignedToID uint64
	Title        string
	Description  string
	Address      string
	MapsLink     string
	Latitude     string
	Longitude    string
	Priority     string
	DueDate      *time.Time
}

// CreateAssignment issues a job to a user of the principal's company and
// notifies the assignee.
func (s *AssignmentService) CreateAssignment(ctx context.Context, p access.Principal, input CreateAssignmentInput) (*models.Assignment, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}

	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	lat, lng, err := utils.ResolveCoordinates(input.MapsLink, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	assigner, err := s.userRepo.FindInCompany(ctx, p.UserID, p.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assigner: %w", err)
	}
	assignee, err := s.userRepo.FindInCompany(ctx, input.AssignedToID, p.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to load assignee: %w", err)
	}

	assignment, err := models.NewAssignment(p.CompanyID, assigner, assignee, models.AssignmentFields{
		Title:       input.Title,
		Description: input.Description,
		Address:     input.Address,
		Latitude:    lat,
		Longitude:   lng,
		Priority:    priority,
		DueDate:     input.DueDate,
	})
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:    assignee.ID,
		CompanyID: p.CompanyID,
		Type:      models.NotificationTaskAssigned,
		Title:     "Nova Tarefa Atribuída",
		Message:   fmt.Sprintf("%s atribuiu a tarefa: %s", assigner.FullName, assignment.Title),
	}
	if err := s.assignmentRepo.CreateWithNotification(ctx, assignment, notification); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.publish(ctx, notification, assignee.PushToken)
	assignment.AssignedBy = *assigner
	assignment.AssignedTo = *assignee
	return assignment, nil
}

// ListAssignmentsInput represents filters for listing assignments
type ListAssignmentsInput struct {
	AssignedToID uint64
	AssignedByID uint64
	Status       string
	Page         int
	PageSize     int
}

// ListAssignments returns the company's assignments for admins and the
// principal's own assignments for everyone else.
func (s *AssignmentService) ListAssignments(ctx context.Context, p access.Principal, input ListAssignmentsInput) ([]models.Assignment, int64, error) {
	scope, err := access.ListScope(p, 0, input.AssignedToID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.AssignmentFilter{
		CompanyID:    scope.CompanyID,
		AssignedToID: scope.UserID,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if p.IsAdmin() {
		filter.AssignedByID = input.AssignedByID
	}
	if input.Status != "" {
		status, err := models.ParseAssignmentStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = &status
	}

	assignments, total, err := s.assignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}

// GetAssignment returns an assignment with both parties and its photos
func (s *AssignmentService) GetAssignment(ctx context.Context, p access.Principal, id uint64) (*models.Assignment, error) {
	a, err := s.find(ctx, id, "AssignedBy", "AssignedTo", "Photos")
	if err != nil {
		return nil, err
	}
	if err := access.CanReadAssignment(p, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateStatusInput carries a status change and optional field notes
type UpdateStatusInput struct {
	Status       string
	Observations *string
	Materials    *string
}

// UpdateStatus moves an assignment forward. A real status change notifies the
// assigner; repeating the current status only updates the notes.
func (s *AssignmentService) UpdateStatus(ctx context.Context, p access.Principal, id uint64, input UpdateStatusInput) (*models.Assignment, error) {
	next, err := models.ParseAssignmentStatus(input.Status)
	if err != nil {
		return nil, err
	}

	a, err := s.find(ctx, id, "AssignedTo")
	if err != nil {
		return nil, err
	}
	if err := access.CanWorkOnAssignment(p, a); err != nil {
		return nil, err
	}

	changed, err := a.TransitionTo(next, s.now())
	if err != nil {
		return nil, err
	}
	if input.Observations != nil {
		a.Observations = *input.Observations
	}
	if input.Materials != nil {
		a.Materials = *input.Materials
	}

	var notification *models.Notification
	if changed {
		kind := models.NotificationTaskUpdated
		if next == models.StatusCompleted {
			kind = models.NotificationTaskCompleted
		}
		ref := a.ID
		notification = &models.Notification{
			UserID:      a.AssignedByID,
			CompanyID:   a.CompanyID,
			Type:        kind,
			Title:       fmt.Sprintf("Tarefa %s", next.Label()),
			Message:     fmt.Sprintf("%s alterou o status de '%s' para %s", p.FullName, a.Title, next.Label()),
			ReferenceID: &ref,
		}
	}

	if err := s.assignmentRepo.SaveStatus(ctx, a, notification); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	if notification != nil {
		var token *string
		if assigner, err := s.userRepo.FindByID(ctx, a.AssignedByID); err == nil {
			token = assigner.PushToken
		}
		s.publish(ctx, notification, token)
	}
	return a, nil
}

// DeleteAssignment removes an assignment, its notifications and its photos. Admin only.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, p access.Principal, id uint64) error {
	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanManageAssignment(p, a); err != nil {
		return err
	}

	res, err := s.assignmentRepo.Delete(ctx, a.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.photos.Remove(ctx, res.PhotoPaths)
	return nil
}

// AddPhotos attaches a batch of photos to an assignment, all or nothing.
func (s *AssignmentService) AddPhotos(ctx context.Context, p access.Principal, id uint64, files []PhotoUpload) ([]models.AssignmentPhoto, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanWorkOnAssignment(p, a); err != nil {
		return nil, err
	}

	existing, err := s.assignmentRepo.CountPhotos(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	if err := s.photos.Validate(existing, files); err != nil {
		s.metrics.PhotoBatch(OwnerAssignment, false)
		return nil, err
	}

	prefix := fmt.Sprintf("%s/assignment_%d", companyPrefix(a.CompanyID), a.ID)
	stored, err := s.photos.Store(ctx, prefix, files)
	if err != nil {
		s.metrics.PhotoBatch(OwnerAssignment, false)
		return nil, err
	}

	photos := make([]models.AssignmentPhoto, 0, len(stored))
	for _, f := range stored {
		photos = append(photos, models.AssignmentPhoto{PhotoFile: f})
	}
	if err := s.assignmentRepo.AddPhotos(ctx, a.ID, photos); err != nil {
		s.photos.Remove(ctx, storagePaths(stored))
		s.metrics.PhotoBatch(OwnerAssignment, false)
		return nil, fmt.Errorf("failed to save photos: %w", err)
	}

	s.metrics.PhotoBatch(OwnerAssignment, true)
	return photos, nil
}

// ListPhotos returns the photos of a readable assignment
func (s *AssignmentService) ListPhotos(ctx context.Context, p access.Principal, id uint64) ([]models.AssignmentPhoto, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadAssignment(p, a); err != nil {
		return nil, err
	}
	photos, err := s.assignmentRepo.ListPhotos(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// OpenPhoto returns one photo and a reader over its bytes. The caller closes the reader.
func (s *AssignmentService) OpenPhoto(ctx context.Context, p access.Principal, id, photoID uint64) (*models.AssignmentPhoto, io.ReadCloser, error) {
	photo, err := s.findPhoto(ctx, p, id, photoID, access.CanReadAssignment)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.photos.Open(ctx, photo.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return photo, r, nil
}

// DeletePhoto removes a single photo of an assignment
func (s *AssignmentService) DeletePhoto(ctx context.Context, p access.Principal, id, photoID uint64) error {
	photo, err := s.findPhoto(ctx, p, id, photoID, access.CanWorkOnAssignment)
	if err != nil {
		return err
	}
	if err := s.assignmentRepo.DeletePhoto(ctx, id, photo.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	s.photos.Remove(ctx, []string{photo.StoragePath})
	return nil
}

// PhotoURL returns a direct link for a photo when the storage backend can sign one.
func (s *AssignmentService) PhotoURL(ctx context.Context, photo *models.AssignmentPhoto) (string, bool) {
	return s.photos.SignedURL(ctx, photo.StoragePath)
}

func (s *AssignmentService) findPhoto(ctx context.Context, p access.Principal, id, photoID uint64, guard func(access.Principal, *models.Assignment) error) (*models.AssignmentPhoto, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(p, a); err != nil {
		return nil, err
	}
	photo, err := s.assignmentRepo.FindPhoto(ctx, id, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find photo: %w", err)
	}
	return photo, nil
}

// publish runs after commit; a broker failure never fails the request.
func (s *AssignmentService) publish(ctx context.Context, n *models.Notification, pushToken *string) {
	s.metrics.Notification(string(n.Type))
	if err := s.publisher.Publish(ctx, notify.NewEvent(n, pushToken)); err != nil {
		log.Warn().Err(err).Uint64("notification_id", n.ID).Msg("failed to publish notification")
	}
}

func (s *AssignmentService) find(ctx context.Context, id uint64, preload ...string) (*models.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return a, nil
}
