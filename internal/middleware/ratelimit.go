package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	apierrors "github.com/yukikurage/field-task-api/internal/errors"
)

// NewLoginLimiter builds an in-memory per-IP limiter from a formatted rate such as "10-M".
func NewLoginLimiter(rate string) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), r), nil
}

// RateLimit rejects requests once the client IP has used up its quota.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		ctx, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			Logger(c).Error().Err(err).Str("ip", ip).Msg("failed to get rate limit context")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		if ctx.Reached {
			Logger(c).Warn().Str("ip", ip).Int64("limit", ctx.Limit).Msg("rate limit exceeded")
			apierrors.TooManyRequests(c, "Too many login attempts. Please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}
