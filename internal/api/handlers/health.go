package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Ken2664/llm-question-app/internal/health"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "llm-question-app"

type HealthHandler struct {
	checker *health.HealthChecker
	logger  *logrus.Logger
}

func NewHealthHandler(checker *health.HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

// Liveness answers as long as the process serves requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    models.StatusHealthy,
		Service:   serviceName,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Detailed serves the cached snapshot unless ?fresh=true, falling back to a
// live check. Unhealthy answers 503.
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	var result *health.OverallHealth
	if c.Query("fresh") != "true" {
		cached, err := h.checker.CheckCached(ctx)
		if err == nil {
			result = cached
		} else {
			h.logger.WithError(err).Debug("No cached health snapshot")
		}
	}
	if result == nil {
		live := h.checker.CheckAll(ctx)
		result = &live
	}

	status := http.StatusOK
	if result.Status == models.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
