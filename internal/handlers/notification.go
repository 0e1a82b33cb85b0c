package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/dto"
	"github.com/yukikurage/field-task-api/internal/services"
)

const notificationNotFound = "Notification not found"

// NotificationHandler serves the caller's own notifications
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the newest notifications of the caller.
// Pass unread_only=true to skip read ones.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	list, err := h.notificationService.ListForUser(c.Request.Context(), p, p.UserID, c.Query("unread_only") == "true")
	if err != nil {
		respondError(c, err, notificationNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": dto.ToNotificationDTOs(list)})
}

// UnreadCount returns how many notifications the caller has not read
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	n, err := h.notificationService.UnreadCount(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, notificationNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// MarkRead flips one notification to read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), p, id); err != nil {
		respondError(c, err, notificationNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead flips every unread notification of the caller
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAllRead(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, notificationNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": n})
}
