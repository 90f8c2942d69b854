package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS stamps cross-origin headers on every response and terminates OPTIONS
// preflights with 204. It runs before the admission handler so denials and
// failures carry the headers too.
func CORS(allowOrigin string) gin.HandlerFunc {
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Expose-Headers", "X-Rate-Limit-Remaining, X-Rate-Limit-Exceeded, X-Rate-Limit-Tier, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
