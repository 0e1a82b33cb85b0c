package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
	"github.com/yukikurage/field-task-api/internal/middleware"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/services"
	"github.com/yukikurage/field-task-api/internal/storage"
	"github.com/yukikurage/field-task-api/internal/utils"
	"github.com/yukikurage/field-task-api/internal/validation"
)

// badInput lists domain errors whose message is safe to return as a 400.
var badInput = []error{
	models.ErrEmptyCompanyName,
	models.ErrEmptySlug,
	models.ErrInvalidSlug,
	models.ErrEmptyUsername,
	models.ErrEmptyFullName,
	models.ErrInvalidRole,
	models.ErrMissingContractor,
	models.ErrMissingNeighborhood,
	models.ErrNoActivity,
	models.ErrInvalidFiberType,
	models.ErrNegativeQuantity,
	models.ErrEmptyTitle,
	models.ErrCrossTenantAssignment,
	models.ErrInactiveAssignee,
	models.ErrSelfAssignment,
	models.ErrInvalidCoordinates,
	models.ErrInvalidStatus,
	models.ErrInvalidPriority,
	services.ErrNoFiles,
	services.ErrTooManyFiles,
	services.ErrInvalidExtension,
	services.ErrFileTooLarge,
	services.ErrUsernameTooLong,
	services.ErrTeamTooLong,
	services.ErrWrongPassword,
	services.ErrAssigneeNotFound,
	access.ErrSelfAction,
}

// respondError maps service errors to API errors. notFound is the message
// used for missing or out-of-scope resources.
func respondError(c *gin.Context, err error, notFound string) {
	status, apiErr := classifyError(c, err, notFound)
	apierrors.RespondWithError(c, status, apiErr)
}

func classifyError(c *gin.Context, err error, notFound string) (int, *apierrors.APIError) {
	switch {
	case errors.Is(err, access.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		if notFound == "" {
			notFound = "Resource not found"
		}
		return http.StatusNotFound, apierrors.NewAPIError(apierrors.ErrCodeNotFound, notFound)
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden, apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "Insufficient permissions")
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrDuplicateSlug):
		return http.StatusConflict, apierrors.NewAPIError(apierrors.ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, models.ErrStatusRegression), errors.Is(err, models.ErrAssignmentClosed):
		return http.StatusConflict, apierrors.NewAPIError(apierrors.ErrCodeInvalidOperation, err.Error())
	case errors.Is(err, utils.ErrPasswordTooShort):
		return http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidInput,
			fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrStorage):
		middleware.Logger(c).Error().Err(err).Msg("photo storage failed")
		return http.StatusServiceUnavailable, apierrors.NewAPIError(apierrors.ErrCodeServiceUnavailable, "Photo storage is unavailable")
	case isBadInput(err):
		return http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, err.Error())
	default:
		middleware.Logger(c).Error().Err(err).Msg("request failed")
		return http.StatusInternalServerError, apierrors.ErrInternalError
	}
}

func isBadInput(err error) bool {
	for _, target := range badInput {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// bindJSON binds the request body and answers 400 with the failing fields.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequest(c, validation.Describe(err))
		return false
	}
	return true
}

// currentPrincipal returns the caller or answers 401.
func currentPrincipal(c *gin.Context) (access.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return p, ok
}

// pathID returns an ID parsed by middleware.RequireIDParams, parsing it
// directly when the middleware was not installed.
func pathID(c *gin.Context, name string) (uint64, bool) {
	if id, ok := middleware.GetID(c, name); ok {
		return id, true
	}
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryUint parses an optional unsigned query parameter. Absent means zero.
func queryUint(c *gin.Context, name string) (uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// queryMonth parses the optional month and year filters. A month without a
// year means the current year.
func queryMonth(c *gin.Context) (year, month int, ok bool) {
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			apierrors.BadRequest(c, "Invalid month")
			return 0, 0, false
		}
		month = m
	}
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			apierrors.BadRequest(c, "Invalid year")
			return 0, 0, false
		}
		year = y
	}
	if month != 0 && year == 0 {
		year = time.Now().Year()
	}
	return year, month, true
}

// photoUploads collects the files sent under field in a multipart form.
func photoUploads(c *gin.Context, field string) ([]services.PhotoUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	headers := form.File[field]
	uploads := make([]services.PhotoUpload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, services.PhotoUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads, nil
}

// servePhoto streams a stored photo to the client.
func servePhoto(c *gin.Context, file models.PhotoFile, body io.ReadCloser) {
	defer body.Close()
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.OriginalName))
	c.DataFromReader(http.StatusOK, file.FileSize, file.ContentType, body, nil)
}
