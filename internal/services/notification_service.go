package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"gorm.io/gorm"
)

// NotificationService exposes a user's own notifications
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListForUser returns the newest notifications of userID, which must be the principal.
func (s *NotificationService) ListForUser(ctx context.Context, p access.Principal, userID uint64, unreadOnly bool) ([]models.Notification, error) {
	if err := access.CanActAs(p, userID); err != nil {
		return nil, err
	}
	list, err := s.notificationRepo.ListForUser(ctx, userID, unreadOnly, constants.NotificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount counts unread notifications of the principal
func (s *NotificationService) UnreadCount(ctx context.Context, p access.Principal) (int64, error) {
	n, err := s.notificationRepo.CountUnread(ctx, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return n, nil
}

// MarkRead flips one notification of the principal to read
func (s *NotificationService) MarkRead(ctx context.Context, p access.Principal, id uint64) error {
	n, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to find notification: %w", err)
	}
	if err := access.CanAccessNotification(p, n); err != nil {
		return err
	}
	if err := s.notificationRepo.MarkRead(ctx, n.ID); err != nil {
		return fmt.Errorf("failed to mark notification: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the principal
func (s *NotificationService) MarkAllRead(ctx context.Context, p access.Principal) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications: %w", err)
	}
	return n, nil
}
