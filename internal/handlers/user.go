package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/dto"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/services"
)

const userNotFound = "User not found"

// UserHandler serves the user directory
type UserHandler struct {
	userService *services.UserService
	teams       []string
}

// NewUserHandler creates a new UserHandler. teams are the suggestions offered
// by the user form; any other team name is accepted too.
func NewUserHandler(userService *services.UserService, teams []string) *UserHandler {
	return &UserHandler{userService: userService, teams: teams}
}

// CreateUser adds a user to the caller's company. Super-admins may target
// another company and create other super-admins.
func (h *UserHandler) CreateUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		CompanyID    uint64 `json:"company_id"`
		Username     string `json:"username" binding:"required,notblank,max=50"`
		Password     string `json:"password" binding:"required"`
		FullName     string `json:"full_name" binding:"required,notblank,max=100"`
		Team         string `json:"team" binding:"max=50"`
		Role         string `json:"role" binding:"omitempty,role"`
		IsSuperAdmin bool   `json:"is_super_admin"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), p, services.CreateUserInput{
		CompanyID:    req.CompanyID,
		Username:     req.Username,
		Password:     req.Password,
		FullName:     req.FullName,
		Team:         req.Team,
		Role:         role,
		IsSuperAdmin: req.IsSuperAdmin,
	})
	if err != nil {
		respondError(c, err, "Company not found")
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers returns every user of a company
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	companyID, ok := queryUint(c, "company_id")
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), p, companyID)
	if err != nil {
		respondError(c, err, "Company not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// ListAssignable returns active colleagues the caller may assign jobs to
func (h *UserHandler) ListAssignable(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	users, err := h.userService.ListAssignable(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ToggleUser activates or deactivates another user
func (h *UserHandler) ToggleUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.ToggleActive(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ResetPassword sets a new password on another user
func (h *UserHandler) ResetPassword(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	type ResetPasswordRequest struct {
		Password string `json:"password" binding:"required"`
	}

	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), p, id, req.Password); err != nil {
		respondError(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// DeleteUser removes another user and everything it owns
func (h *UserHandler) DeleteUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.userService.DeleteUser(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "User deleted successfully",
		"deleted_tasks":       res.Tasks,
		"deleted_assignments": res.Assignments,
		"deleted_photos":      res.Photos,
	})
}

// UpdateMyPushToken stores the caller's device token. An empty token clears it.
func (h *UserHandler) UpdateMyPushToken(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type PushTokenRequest struct {
		PushToken string `json:"push_token" binding:"max=255"`
	}

	var req PushTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(c.Request.Context(), p, p.UserID, req.PushToken); err != nil {
		respondError(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token updated"})
}

// ListTeams returns the configured team suggestions
func (h *UserHandler) ListTeams(c *gin.Context) {
	teams := h.teams
	if teams == nil {
		teams = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}
