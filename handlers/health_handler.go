package handlers

import (
	"context"
	"net/http"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker is satisfied by *services.HealthService.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// LivenessCheck answers as long as the process serves HTTP; it never touches
// a dependency.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": types.HealthStatusUp})
}

// ReadinessCheck fails with 503 only when a required component is down. A
// degraded service (no cache, export bucket unreachable) still takes traffic.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.checker.CheckHealth(c.Request.Context())
	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

// DetailedHealth always answers 200 with the full report.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.checker.CheckHealth(c.Request.Context()))
}

// ComponentHealth reports a single component, with 503 when it is down.
func (h *HealthHandler) ComponentHealth(c *gin.Context) {
	name := c.Param("component")
	component, ok := h.checker.CheckHealth(c.Request.Context()).Components[name]
	if !ok {
		_ = c.Error(errors.NotFound("Health component", name))
		return
	}
	status := http.StatusOK
	if component.Status == types.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, component)
}
