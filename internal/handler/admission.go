package handler

import (
	"log"
	"net/http"
	"strconv"

	"admission-gateway/internal/admission"
	"github.com/gin-gonic/gin"
)

// AdmissionHandler renders admission outcomes. Every catch-all request ends
// here, so this switch is the single place outcomes turn into HTTP.
type AdmissionHandler struct {
	dispatcher *admission.Dispatcher
}

func NewAdmissionHandler(dispatcher *admission.Dispatcher) *AdmissionHandler {
	return &AdmissionHandler{dispatcher: dispatcher}
}

func (h *AdmissionHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	out := h.dispatcher.Decide(ctx, c.GetHeader("Authorization"), c.ClientIP())

	// Stash the decision for the log middleware.
	c.Set("admission_outcome", out.Kind.String())
	c.Set("admission_class", string(out.Identity.Class))
	c.Set("admission_tier", out.Tier)

	switch out.Kind {
	case admission.KindBypassed:
		c.Header("X-Rate-Limit-Remaining", "Overridden")
		c.Header("X-Rate-Limit-Tier", out.Tier)
		c.JSON(http.StatusOK, gin.H{
			"message":  "Request admitted, rate limit override active",
			"tier":     out.Tier,
			"override": true,
		})

	case admission.KindAdmitted:
		c.Header("X-Rate-Limit-Remaining", "Available")
		c.Header("X-Rate-Limit-Tier", out.Tier)
		c.JSON(http.StatusOK, gin.H{
			"message": "Request admitted",
			"tier":    out.Tier,
		})

	case admission.KindDenied:
		c.Header("X-Rate-Limit-Exceeded", "true")
		if out.RetryAfter != nil {
			c.Header("Retry-After", strconv.Itoa(*out.RetryAfter))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded",
			"tier":  out.Tier,
		})

	case admission.KindNoIdentity:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No client identifier: send an Authorization bearer token or connect from a resolvable address",
		})

	case admission.KindFailed:
		requestID := c.GetString("request_id")
		// Token identifiers are bearer secrets; log only an abbreviation.
		log.Printf("[%s] Admission check failed for %s identity %s: %v",
			requestID, out.Identity.Class, abbreviate(out.Identity.Value), out.Err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal Server Error",
		})
	}
}

func abbreviate(identifier string) string {
	if len(identifier) <= 4 {
		return "****"
	}
	return identifier[:4] + "****"
}
