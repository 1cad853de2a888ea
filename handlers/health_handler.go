package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripsplit/tripsplit-backend/types"
)

// HealthHandler serves the probes and the detailed health report.
type HealthHandler struct {
	healthService HealthCheckerInterface
}

func NewHealthHandler(healthService HealthCheckerInterface) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// LivenessCheck answers as long as the process serves HTTP.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck fails with 503 while a required dependency is down, so the
// instance is taken out of rotation. A degraded instance stays ready.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	status := http.StatusOK
	if health.Status == types.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": health.Status})
}

// DetailedHealth reports every component. It always answers 200.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthService.CheckHealth(c.Request.Context()))
}
