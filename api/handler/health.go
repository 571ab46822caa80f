package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sessionprobe/introspect"
	"github.com/use-agent/sessionprobe/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports browser session utilisation and degrades status when > 80% of
// sessions are active. Browser may be nil (plain-only deployment).
func Health(b *introspect.Browser, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.BrowserStats
		if b != nil {
			stats = b.Stats()
		}

		status := "healthy"
		if stats.MaxSessions > 0 && stats.ActiveSessions > int(float64(stats.MaxSessions)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			BrowserStats: stats,
			Version:      "0.1.0",
		})
	}
}
