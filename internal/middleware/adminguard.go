package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// AdminRateGuard caps the admin surface with a process-local token bucket,
// independent of the shared sliding-window limiter.
func AdminRateGuard(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many admin requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
