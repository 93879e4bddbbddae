package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/handlers"
)

func registerRealtimeRoutes(api *gin.RouterGroup, handler *handlers.RealtimeHandler) {
	api.GET("/guilds/:guildID/events", handler.Events)
}
