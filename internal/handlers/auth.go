package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
	"github.com/yukikurage/field-task-api/internal/middleware"
	"github.com/yukikurage/field-task-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type loginResponse struct {
	User      access.Principal `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Login authenticates a user and stores the session token in the cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, "")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyToken, res.Token)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, loginResponse{User: res.Principal, ExpiresAt: res.ExpiresAt})
}

// Logout revokes the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	if raw, _ := session.Get(constants.SessionKeyToken).(string); raw != "" {
		if p, err := h.authService.ResolveToken(ctx, raw); err == nil {
			if err := h.authService.Logout(ctx, p.SessionID); err != nil {
				middleware.Logger(c).Warn().Err(err).Msg("failed to revoke session")
			}
		}
	}

	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated principal.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// ChangePassword replaces the caller's password. Every session of the user
// is revoked, so the client has to log in again.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangeOwnPassword(c.Request.Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "User not found")
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		middleware.Logger(c).Warn().Err(err).Msg("failed to clear session")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed, please log in again",
	})
}
