package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/handlers"
)

func registerVerificationRoutes(api *gin.RouterGroup, handler *handlers.VerificationsHandler) {
	guilds := api.Group("/guilds/:guildID")
	{
		guilds.GET("/requests", handler.List)
		guilds.POST("/requests", handler.Create)
		guilds.GET("/activity", handler.Activity)
	}

	api.PATCH("/requests/:id", handler.Decide)
}
