package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
	"github.com/yukikurage/field-task-api/internal/services"
)

// PrincipalResolver maps client credentials to a Principal.
type PrincipalResolver interface {
	ResolveToken(ctx context.Context, raw string) (access.Principal, error)
	ResolveBearer(ctx context.Context, token string) (access.Principal, error)
}

// RequireAuth resolves the caller from a bearer token or, failing that, from
// the web session cookie. Every request reloads the user so a deactivated
// account or company is rejected immediately.
func RequireAuth(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			p   access.Principal
			err error
		)
		if token, ok := bearerToken(c); ok {
			p, err = resolver.ResolveBearer(ctx, token)
		} else {
			raw, _ := sessions.Default(c).Get(constants.SessionKeyToken).(string)
			if raw == "" {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}
			p, err = resolver.ResolveToken(ctx, raw)
		}

		if err != nil {
			if !errors.Is(err, services.ErrSessionInvalid) {
				log.Error().Err(err).Msg("failed to resolve session")
				apierrors.InternalError(c, "")
				c.Abort()
				return
			}
			apierrors.Unauthorized(c, "Session expired or revoked")
			c.Abort()
			return
		}

		// Store principal in context for easy access in handlers
		c.Set(constants.ContextKeyPrincipal, p)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(access.RequireAdmin)
}

// RequireSuperAdmin rejects callers that cannot act across companies. Must run after RequireAuth.
func RequireSuperAdmin() gin.HandlerFunc {
	return requireRole(access.RequireSuperAdmin)
}

func requireRole(check func(access.Principal) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if err := check(p); err != nil {
			apierrors.InsufficientPermissions(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated caller from context
func GetPrincipal(c *gin.Context) (access.Principal, bool) {
	v, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
