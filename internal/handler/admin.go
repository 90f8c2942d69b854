package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"admission-gateway/internal/admin"
	"admission-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

type OverrideHandler struct {
	service *service.OverrideService
}

func NewOverrideHandler(service *service.OverrideService) *OverrideHandler {
	return &OverrideHandler{service: service}
}

// Handles POST /admin/override-rate-limit
func (h *OverrideHandler) Set(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	req, err := admin.ParseOverrideRequest(c.ContentType(), body)
	if err != nil {
		h.renderValidationError(c, err, body)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.Apply(ctx, req.ClientID, req.Override, c.GetString("request_id")); err != nil {
		log.Printf("Failed to apply override for %s: %v", req.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Override for %s set to %t.", req.ClientID, req.Override),
	})
}

// Maps each validation stage to its status; the parse order already
// guarantees exactly one of these matches.
func (h *OverrideHandler) renderValidationError(c *gin.Context, err error, body []byte) {
	requestID := c.GetString("request_id")

	var ctErr *admin.ContentTypeError
	if errors.As(err, &ctErr) {
		log.Printf("[%s] Override rejected, bad content type: %q", requestID, ctErr.Offered)
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}

	var parseErr *admin.ParseError
	if errors.As(err, &parseErr) {
		log.Printf("[%s] Override rejected, unparseable body: %s", requestID, body)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var schemaErr *admin.SchemaError
	if errors.As(err, &schemaErr) {
		log.Printf("[%s] Override rejected, wrong shape: %v", requestID, schemaErr.Value)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// Handles GET /admin/overrides
func (h *OverrideHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	flags, err := h.service.List(ctx)
	if err != nil {
		log.Printf("Failed to list overrides: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"overrides": flags})
}

// Handles GET /admin/overrides/audit
func (h *OverrideHandler) Audit(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	ctx := c.Request.Context()
	audits, err := h.service.RecentAudits(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": audits})
}
