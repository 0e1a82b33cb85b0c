package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/field-task-api/internal/dto"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/services"
	"github.com/yukikurage/field-task-api/internal/utils"
	"github.com/yukikurage/field-task-api/internal/validation"
)

const (
	taskNotFound  = "Task not found"
	photoNotFound = "Photo not found"
	photosField   = "photos"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// photoURL links photos of a task to a signed URL when storage supports it
// and to the streaming endpoint otherwise.
func (h *TaskHandler) photoURL(c *gin.Context, taskID uint64) dto.PhotoURL {
	return func(photoID uint64, storagePath string) string {
		photo := &models.TaskPhoto{ID: photoID, TaskID: taskID, PhotoFile: models.PhotoFile{StoragePath: storagePath}}
		if u, ok := h.taskService.PhotoURL(c.Request.Context(), photo); ok {
			return u
		}
		return fmt.Sprintf("/api/tasks/%d/photos/%d/file", taskID, photoID)
	}
}

// ListTasks returns the tasks visible to the caller.
// Admins may filter by user_id; super-admins may also pass company_id.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	companyID, ok := queryUint(c, "company_id")
	if !ok {
		return
	}
	userID, ok := queryUint(c, "user_id")
	if !ok {
		return
	}
	year, month, ok := queryMonth(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), p, services.ListTasksInput{
		CompanyID: companyID,
		UserID:    userID,
		Year:      year,
		Month:     month,
		Page:      params.Page,
		PageSize:  params.Limit,
	})
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	urlFor := func(t models.Task) dto.PhotoURL { return h.photoURL(c, t.ID) }
	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, urlFor, params.Page, params.Limit, total))
}

// CreateTask logs a field activity. The request is a multipart form carrying
// the task fields and at least one file under "photos".
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Contractor      string `form:"contractor" binding:"required,notblank,max=100"`
		Neighborhood    string `form:"neighborhood" binding:"required,notblank,max=100"`
		SpliceBoxOpened bool   `form:"splice_box_opened"`
		SpliceBoxClosed bool   `form:"splice_box_closed"`
		CTOOpened       bool   `form:"cto_opened"`
		CTOClosed       bool   `form:"cto_closed"`
		RosetteOpened   bool   `form:"rosette_opened"`
		RosetteClosed   bool   `form:"rosette_closed"`
		CTOCount        int    `form:"cto_count" binding:"min=0"`
		SpliceBoxCount  int    `form:"splice_box_count" binding:"min=0"`
		FiberType       string `form:"fiber_type" binding:"omitempty,fibertype"`
		FiberLaid       string `form:"fiber_laid_meters"`
		Notes           string `form:"notes"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, validation.Describe(err))
		return
	}

	fiberLaid := decimal.Zero
	if raw := strings.TrimSpace(strings.ReplaceAll(req.FiberLaid, ",", ".")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			apierrors.BadRequest(c, "fiber_laid_meters must be a number")
			return
		}
		fiberLaid = d
	}

	files, err := photoUploads(c, photosField)
	if err != nil {
		apierrors.BadRequest(c, "Expected a multipart form with photos")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), p, models.TaskFields{
		Contractor:      req.Contractor,
		Neighborhood:    req.Neighborhood,
		SpliceBoxOpened: req.SpliceBoxOpened,
		SpliceBoxClosed: req.SpliceBoxClosed,
		CTOOpened:       req.CTOOpened,
		CTOClosed:       req.CTOClosed,
		RosetteOpened:   req.RosetteOpened,
		RosetteClosed:   req.RosetteClosed,
		CTOCount:        req.CTOCount,
		SpliceBoxCount:  req.SpliceBoxCount,
		FiberType:       req.FiberType,
		FiberLaid:       fiberLaid,
		Notes:           req.Notes,
	}, files)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, h.photoURL(c, task.ID)))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.photoURL(c, task.ID)))
}

// DeleteTask removes a task and its photos
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), p, id); err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// ListPhotos returns the photos of a task
func (h *TaskHandler) ListPhotos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	photos, err := h.taskService.ListPhotos(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": dto.ToTaskPhotoDTOs(photos, h.photoURL(c, id))})
}

// AddPhotos uploads more photos to a task; the whole batch is rejected on any invalid file
func (h *TaskHandler) AddPhotos(c *gin.Context) {
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

	photos, err := h.taskService.AddPhotos(c.Request.Context(), p, id, files)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photos": dto.ToTaskPhotoDTOs(photos, h.photoURL(c, id))})
}

// GetPhotoFile streams the bytes of one photo
func (h *TaskHandler) GetPhotoFile(c *gin.Context) {
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

	photo, body, err := h.taskService.OpenPhoto(c.Request.Context(), p, id, photoID)
	if err != nil {
		respondError(c, err, photoNotFound)
		return
	}
	servePhoto(c, photo.PhotoFile, body)
}

// DeletePhoto removes one photo of a task
func (h *TaskHandler) DeletePhoto(c *gin.Context) {
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

	if err := h.taskService.DeletePhoto(c.Request.Context(), p, id, photoID); err != nil {
		respondError(c, err, photoNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted successfully"})
}
