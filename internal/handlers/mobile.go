package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	"github.com/yukikurage/field-task-api/internal/dto"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
	"github.com/yukikurage/field-task-api/internal/services"
	"github.com/yukikurage/field-task-api/internal/validation"
)

// MobileHandler serves the field app. Every response is wrapped in a
// {"success": bool, ...} envelope; failures also carry a meaningful status code.
type MobileHandler struct {
	authService         *services.AuthService
	userService         *services.UserService
	assignmentService   *services.AssignmentService
	notificationService *services.NotificationService
	assignments         *AssignmentHandler
}

// NewMobileHandler creates a new MobileHandler.
func NewMobileHandler(
	authService *services.AuthService,
	userService *services.UserService,
	assignmentService *services.AssignmentService,
	notificationService *services.NotificationService,
) *MobileHandler {
	return &MobileHandler{
		authService:         authService,
		userService:         userService,
		assignmentService:   assignmentService,
		notificationService: notificationService,
		assignments:         NewAssignmentHandler(assignmentService),
	}
}

func mobileOK(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

func mobileFail(c *gin.Context, err error, notFound string) {
	status, apiErr := classifyError(c, err, notFound)
	c.JSON(status, gin.H{
		"success": false,
		"code":    apiErr.Code,
		"error":   apiErr.Message,
	})
}

func mobileBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"code":    apierrors.ErrCodeInvalidInput,
		"error":   message,
	})
}

// mobileID parses the :id path parameter, answering in the envelope on failure.
func mobileID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		mobileBadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// Login verifies credentials through the hashed password path and returns a
// bearer token bound to a server-side session.
func (h *MobileHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mobileBadRequest(c, validation.Describe(err))
		return
	}

	res, err := h.authService.LoginBearer(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		mobileFail(c, err, "")
		return
	}

	mobileOK(c, http.StatusOK, gin.H{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.Principal,
	})
}

// ListUsers returns the active users of the caller's company
func (h *MobileHandler) ListUsers(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	users, err := h.userService.ListCompanyDirectory(c.Request.Context(), p)
	if err != nil {
		mobileFail(c, err, userNotFound)
		return
	}

	mobileOK(c, http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// UpdatePushToken stores the device token of the user in the path, which must be the caller
func (h *MobileHandler) UpdatePushToken(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := mobileID(c)
	if !ok {
		return
	}

	type PushTokenRequest struct {
		PushToken string `json:"push_token" binding:"max=255"`
	}

	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mobileBadRequest(c, validation.Describe(err))
		return
	}

	if err := h.userService.UpdatePushToken(c.Request.Context(), p, userID, req.PushToken); err != nil {
		mobileFail(c, err, userNotFound)
		return
	}

	mobileOK(c, http.StatusOK, gin.H{"message": "Push token updated"})
}

// ListAssignedTasks returns the jobs assigned to the user in the path, which must be the caller
func (h *MobileHandler) ListAssignedTasks(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := mobileID(c)
	if !ok {
		return
	}
	if err := access.CanActAs(p, userID); err != nil {
		mobileFail(c, err, userNotFound)
		return
	}

	list, _, err := h.assignmentService.ListAssignments(c.Request.Context(), p, services.ListAssignmentsInput{
		AssignedToID: userID,
		Status:       c.Query("status"),
		Page:         1,
		PageSize:     constants.MaxPageSize,
	})
	if err != nil {
		mobileFail(c, err, userNotFound)
		return
	}

	items := make([]dto.AssignmentDTO, len(list))
	for i, a := range list {
		items[i] = dto.ToAssignmentDTO(a, h.assignments.photoURL(c, a.ID))
	}
	mobileOK(c, http.StatusOK, gin.H{"tasks": items})
}

// UpdateTaskStatus moves an assigned job forward
func (h *MobileHandler) UpdateTaskStatus(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := mobileID(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status       string  `json:"status" binding:"required,status"`
		Observations *string `json:"observations"`
		Materials    *string `json:"materials"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mobileBadRequest(c, validation.Describe(err))
		return
	}

	a, err := h.assignmentService.UpdateStatus(c.Request.Context(), p, id, services.UpdateStatusInput{
		Status:       req.Status,
		Observations: req.Observations,
		Materials:    req.Materials,
	})
	if err != nil {
		mobileFail(c, err, assignmentNotFound)
		return
	}

	mobileOK(c, http.StatusOK, gin.H{"task": dto.ToAssignmentDTO(*a, h.assignments.photoURL(c, a.ID))})
}

// UploadTaskPhotos uploads a batch of photos to an assigned job
func (h *MobileHandler) UploadTaskPhotos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := mobileID(c)
	if !ok {
		return
	}

	files, err := photoUploads(c, photosField)
	if err != nil {
		mobileBadRequest(c, "Expected a multipart form with photos")
		return
	}

	photos, err := h.assignmentService.AddPhotos(c.Request.Context(), p, id, files)
	if err != nil {
		mobileFail(c, err, assignmentNotFound)
		return
	}

	mobileOK(c, http.StatusCreated, gin.H{"photos": dto.ToAssignmentPhotoDTOs(photos, h.assignments.photoURL(c, id))})
}

// ListTaskPhotos returns the photos of an assigned job
func (h *MobileHandler) ListTaskPhotos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := mobileID(c)
	if !ok {
		return
	}

	photos, err := h.assignmentService.ListPhotos(c.Request.Context(), p, id)
	if err != nil {
		mobileFail(c, err, assignmentNotFound)
		return
	}

	mobileOK(c, http.StatusOK, gin.H{"photos": dto.ToAssignmentPhotoDTOs(photos, h.assignments.photoURL(c, id))})
}

// ListNotifications returns the notifications of the user in the path, which must be the caller
func (h *MobileHandler) ListNotifications(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := mobileID(c)
	if !ok {
		return
	}

	list, err := h.notificationService.ListForUser(c.Request.Context(), p, userID, c.Query("unread_only") == "true")
	if err != nil {
		mobileFail(c, err, userNotFound)
		return
	}

	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	mobileOK(c, http.StatusOK, gin.H{
		"notifications": dto.ToNotificationDTOs(list),
		"unread":        unread,
	})
}

// MarkNotificationRead flips one notification of the caller to read
func (h *MobileHandler) MarkNotificationRead(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := mobileID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), p, id); err != nil {
		mobileFail(c, err, notificationNotFound)
		return
	}

	mobileOK(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}
