package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/internal/store"
	appErrors "github.com/gurizes/gatewarden/pkg/errors"
	"github.com/gurizes/gatewarden/pkg/response"
)

// GuildConfigHandler serves the per-guild configuration endpoints.
type GuildConfigHandler struct {
	configs *services.GuildConfigService
}

// NewGuildConfigHandler creates the handler.
func NewGuildConfigHandler(configs *services.GuildConfigService) *GuildConfigHandler {
	return &GuildConfigHandler{configs: configs}
}

type updateGuildConfigRequest struct {
	VerificationChannelID *string `json:"verification_channel_id"`
	VerificationRoleID    *string `json:"verification_role_id"`
	LogsChannelID         *string `json:"logs_channel_id"`
	EmbedTitle            *string `json:"embed_title" validate:"omitempty,min=1,max=256"`
	EmbedDescription      *string `json:"embed_description" validate:"omitempty,min=1,max=4096"`
}

// Get returns the guild's configuration.
func (h *GuildConfigHandler) Get(c *gin.Context) {
	config, err := h.configs.Get(c.Request.Context(), c.Param("guildID"))
	if err != nil {
		if errors.Is(err, services.ErrConfigNotFound) {
			response.Error(c, appErrors.NewNotFound("guild is not configured"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, config)
}

// Update merges the supplied fields into the guild's configuration,
// creating it on first write. Omitted fields are left unchanged.
func (h *GuildConfigHandler) Update(c *gin.Context) {
	var req updateGuildConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}

	config, err := h.configs.Upsert(c.Request.Context(), c.Param("guildID"), store.GuildConfigPatch{
		VerificationChannelID: req.VerificationChannelID,
		VerificationRoleID:    req.VerificationRoleID,
		LogsChannelID:         req.LogsChannelID,
		EmbedTitle:            req.EmbedTitle,
		EmbedDescription:      req.EmbedDescription,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, config)
}
