package middleware

import (
	"net/http"

	"github.com/coursemarket/backend/internal/metrics"
	"github.com/coursemarket/backend/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

const errRateLimited = "Too many requests, slow down"

// RateLimit applies the process-wide sliding-window limiter, keyed by client
// address, before any routing happens.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			metrics.RateLimitedTotal.Inc()
			abort(c, http.StatusTooManyRequests, errRateLimited)
			return
		}
		c.Next()
	}
}
