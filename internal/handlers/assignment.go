package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/dto"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/services"
	"github.com/yukikurage/field-task-api/internal/utils"
)

const assignmentNotFound = "Assignment not found"

// AssignmentHandler serves manager-issued field jobs
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) photoURL(c *gin.Context, assignmentID uint64) dto.PhotoURL {
	return func(photoID uint64, storagePath string) string {
		photo := &models.AssignmentPhoto{ID: photoID, AssignmentID: assignmentID, PhotoFile: models.PhotoFile{StoragePath: storagePath}}
		if u, ok := h.assignmentService.PhotoURL(c.Request.Context(), photo); ok {
			return u
		}
		return fmt.Sprintf("/api/assignments/%d/photos/%d/file", assignmentID, photoID)
	}
}

// CreateAssignment issues a job to a user of the caller's company.
// Location comes from maps_link when it carries coordinates, else from latitude/longitude.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateAssignmentRequest struct {
		AssignedToID uint64     `json:"assigned_to_id" binding:"required"`
		Title        string     `json:"title" binding:"required,notblank,max=200"`
		Description  string     `json:"description"`
		Address      string     `json:"address" binding:"max=300"`
		MapsLink     string     `json:"maps_link"`
		Latitude     *float64   `json:"latitude"`
		Longitude    *float64   `json:"longitude"`
		Priority     string     `json:"priority" binding:"omitempty,priority"`
		DueDate      *time.Time `json:"due_date"`
	}

	var req CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.assignmentService.CreateAssignment(c.Request.Context(), p, services.CreateAssignmentInput{
		AssignedToID: req.AssignedToID,
		Title:        req.Title,
		Description:  req.Description,
		Address:      req.Address,
		MapsLink:     req.MapsLink,
		Latitude:     formatCoordinate(req.Latitude),
		Longitude:    formatCoordinate(req.Longitude),
		Priority:     req.Priority,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondError(c, err, assignmentNotFound)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*a, h.photoURL(c, a.ID)))
}

// ListAssignments returns the company's assignments for admins and the
// caller's own assignments for everyone else.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	assignedTo, ok := queryUint(c, "assigned_to_id")
	if !ok {
		return
	}
	assignedBy, ok := queryUint(c, "assigned_by_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	list, total, err := h.assignmentService.ListAssignments(c.Request.Context(), p, services.ListAssignmentsInput{
		AssignedToID: assignedTo,
		AssignedByID: assignedBy,
		Status:       c.Query("status"),
		Page:         params.Page,
		PageSize:     params.Limit,
	})
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	urlFor := func(a models.Assignment) dto.PhotoURL { return h.photoURL(c, a.ID) }
	c.JSON(http.StatusOK, dto.ToAssignmentListResponse(list, urlFor, params.Page, params.Limit, total))
}

// GetAssignment returns one assignment with both parties and its photos
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.GetAssignment(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, assignmentNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*a, h.photoURL(c, a.ID)))
}

// UpdateStatus moves an assignment forward and records field notes
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status       string  `json:"status" binding:"required,status"`
		Observations *string `json:"observations"`
		Materials    *string `json:"materials"`
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.assignmentService.UpdateStatus(c.Request.Context(), p, id, services.UpdateStatusInput{
		Status:       req.Status,
		Observations: req.Observations,
		Materials:    req.Materials,
	})
	if err != nil {
		respondError(c, err, assignmentNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*a, h.photoURL(c, a.ID)))
}

// DeleteAssignment removes an assignment with its photos and notifications
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAssignment(c.Request.Context(), p, id); err != nil {
		respondError(c, err, assignmentNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// ListPhotos returns the photos of an assignment
func (h *AssignmentHandler) ListPhotos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	photos, err := h.assignmentService.ListPhotos(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, assignmentNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": dto.ToAssignmentPhotoDTOs(photos, h.photoURL(c, id))})
}

// AddPhotos uploads a batch of photos to an assignment
func (h *AssignmentHandler) AddPhotos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	files, err := photoUploads(c, photosField)
	if err != nil {
		apierrors.BadRequest(c, "Expected a multipart form with photos")
		return
	}

	photos, err := h.assignmentService.AddPhotos(c.Request.Context(), p, id, files)
	if err != nil {
		respondError(c, err, assignmentNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photos": dto.ToAssignmentPhotoDTOs(photos, h.photoURL(c, id))})
}

// GetPhotoFile streams the bytes of one assignment photo
func (h *AssignmentHandler) GetPhotoFile(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	photoID, ok := pathID(c, "photo_id")
	if !ok {
		return
	}

	photo, body, err := h.assignmentService.OpenPhoto(c.Request.Context(), p, id, photoID)
	if err != nil {
		respondError(c, err, photoNotFound)
		return
	}
	servePhoto(c, photo.PhotoFile, body)
}

// DeletePhoto removes one photo of an assignment
func (h *AssignmentHandler) DeletePhoto(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	photoID, ok := pathID(c, "photo_id")
	if !ok {
		return
	}

	if err := h.assignmentService.DeletePhoto(c.Request.Context(), p, id, photoID); err != nil {
		respondError(c, err, photoNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted successfully"})
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
