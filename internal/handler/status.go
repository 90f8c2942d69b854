package handler

import (
	"net/http"
	"time"

	"admission-gateway/internal/admission"
	"admission-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

// Handles gateway introspection endpoints
type StatusHandler struct {
	dispatcher      *admission.Dispatcher
	overrideService *service.OverrideService
	strategy        string
	startTime       time.Time
}

func NewStatusHandler(dispatcher *admission.Dispatcher, overrideService *service.OverrideService, strategy string) *StatusHandler {
	return &StatusHandler{
		dispatcher:      dispatcher,
		overrideService: overrideService,
		strategy:        strategy,
		startTime:       time.Now(),
	}
}

// Handles GET /admin/status
func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	overrides, err := h.overrideService.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	active := 0
	for _, enabled := range overrides {
		if enabled {
			active++
		}
	}

	tiers := make([]gin.H, 0)
	for _, tier := range h.dispatcher.Tiers() {
		tiers = append(tiers, gin.H{
			"name":         tier.Name,
			"prefix":       tier.Prefix,
			"window_ms":    tier.Window.Milliseconds(),
			"max_requests": tier.MaxRequests,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"gateway":          "running",
		"limiter_strategy": h.strategy,
		"tiers":            tiers,
		"active_overrides": active,
		"uptime":           time.Since(h.startTime).Seconds(),
		"timestamp":        time.Now().Unix(),
	})
}
