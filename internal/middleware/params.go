package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
)

// RequireIDParams parses the named path parameters as positive IDs and stores
// them in context under the same names. A malformed ID is rejected with 400
// before the handler runs.
func RequireIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			id, err := strconv.ParseUint(c.Param(name), 10, 64)
			if err != nil || id == 0 {
				apierrors.BadRequest(c, "Invalid "+name)
				c.Abort()
				return
			}
			c.Set(name, id)
		}
		c.Next()
	}
}

// GetID returns an ID stored by RequireIDParams
func GetID(c *gin.Context, name string) (uint64, bool) {
	v, exists := c.Get(name)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
