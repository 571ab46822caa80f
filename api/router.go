package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sessionprobe/api/handler"
	"github.com/use-agent/sessionprobe/api/middleware"
	"github.com/use-agent/sessionprobe/checker"
	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/introspect"
	"github.com/use-agent/sessionprobe/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(ck *checker.Checker, b *introspect.Browser, notifier *webhook.Notifier, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(b, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Check
	protected.POST("/check", handler.Check(ck))

	// Batch
	protected.POST("/check/batch", handler.PostBatch(ck, cfg.Browser.MaxSessions, notifier))
	protected.GET("/check/batch/:id", handler.GetBatch())

	return r
}
