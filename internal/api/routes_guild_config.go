package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/handlers"
)

func registerGuildConfigRoutes(api *gin.RouterGroup, handler *handlers.GuildConfigHandler) {
	guilds := api.Group("/guilds/:guildID")
	{
		guilds.GET("/config", handler.Get)
		guilds.PUT("/config", handler.Update)
	}
}
