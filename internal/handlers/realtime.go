package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/realtime"
)

// RealtimeHandler upgrades dashboard clients onto a guild's event stream.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates the handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Events hands the connection to the hub for the requested guild.
func (h *RealtimeHandler) Events(c *gin.Context) {
	h.hub.Serve(c.Param("guildID"), c.Writer, c.Request)
}
