package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/handlers"
)

func registerStatsRoutes(api *gin.RouterGroup, handler *handlers.StatsHandler) {
	guilds := api.Group("/guilds/:guildID")
	{
		guilds.GET("/stats", handler.Get)
		guilds.PUT("/stats", handler.Update)
	}
}
