package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/models"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

const readinessTimeout = 2 * time.Second

var startTime = time.Now()

// HealthCheck provides a simple liveness endpoint
func HealthCheck(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthCheckResponse{
			Status:    "healthy",
			Timestamp: time.Now().Unix(),
			Version:   Version,
			Uptime:    int64(time.Since(startTime).Seconds()),
		})
	}
}

// Readiness reports whether the database answers
func Readiness(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		start := time.Now()
		check := models.HealthCheck{Status: "healthy"}
		status := http.StatusOK
		overall := "healthy"
		if err := services.Ping(ctx); err != nil {
			services.GetLogger().Warning("Database readiness check failed", "error", err.Error())
			check = models.HealthCheck{Status: "unhealthy", Message: "database unreachable"}
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		check.Latency = time.Since(start).String()

		c.JSON(status, models.HealthCheckResponse{
			Status:    overall,
			Timestamp: time.Now().Unix(),
			Version:   Version,
			Checks:    map[string]models.HealthCheck{"database": check},
		})
	}
}

// MethodNotAllowed answers requests whose path exists under another method
func MethodNotAllowed(c *gin.Context) {
	respondError(c, models.ErrMethodNotAllowed)
}

// NotFound answers requests for unknown routes
func NotFound(c *gin.Context) {
	respondError(c, models.ErrNotFound)
}
