package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gurizes/gatewarden/internal/handlers"
	"github.com/gurizes/gatewarden/internal/middleware"
	"github.com/gurizes/gatewarden/internal/realtime"
	"github.com/gurizes/gatewarden/internal/services"
)

// Services bundles the application services the router exposes.
type Services struct {
	Verifications *services.VerificationService
	Configs       *services.GuildConfigService
	Stats         *services.StatsService
	Hub           *realtime.Hub
}

// NewRouter builds the Gin engine, wires middleware and registers the
// dashboard routes.
func NewRouter(svcs Services) (*gin.Engine, error) {
	if svcs.Verifications == nil {
		return nil, fmt.Errorf("verification service must be provided")
	}
	if svcs.Configs == nil {
		return nil, fmt.Errorf("guild config service must be provided")
	}
	if svcs.Stats == nil {
		return nil, fmt.Errorf("stats service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	registerGuildConfigRoutes(api, handlers.NewGuildConfigHandler(svcs.Configs))
	registerVerificationRoutes(api, handlers.NewVerificationsHandler(svcs.Verifications))
	registerStatsRoutes(api, handlers.NewStatsHandler(svcs.Stats))
	if svcs.Hub != nil {
		registerRealtimeRoutes(api, handlers.NewRealtimeHandler(svcs.Hub))
	}

	return r, nil
}
