package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/adapters/control"
	"github.com/dkeye/Remote/internal/app"
	"github.com/dkeye/Remote/internal/app/robot"
	"github.com/dkeye/Remote/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, rb *robot.Robot, reg *app.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctrl := control.NewControlWSController(rb, reg, control.Options{
		Host:       cfg.Sim.Host,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.Sim.PingPeriod,
		RateLimit:  cfg.Sim.RateLimit,
		RateBurst:  cfg.Sim.RateBurst,
	})

	log.Info().Str("module", "adapters.http").Str("ws_path", cfg.WSPath).Msg("router setup")

	r.GET(cfg.WSPath, func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws control endpoint hit")
		ctrl.HandleControl(ctx, c)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// GET /api/status: robot and client snapshot
	api.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"robot":   rb.Snapshot(),
			"clients": reg.Clients(),
		})
	})

	// DELETE /api/clients/:sid: drop an operator connection
	api.DELETE("/clients/:sid", func(c *gin.Context) {
		if !reg.Cancel(app.SessionID(c.Param("sid"))) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such client"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	return r
}
