package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/internal/store"
	"github.com/gurizes/gatewarden/pkg/response"
)

// StatsHandler serves the aggregate counter endpoints.
type StatsHandler struct {
	stats *services.StatsService
}

// NewStatsHandler creates the handler.
func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

type updateStatsRequest struct {
	TotalVerified *string `json:"total_verified" validate:"omitempty,number"`
	TotalPending  *string `json:"total_pending" validate:"omitempty,number"`
	TotalRejected *string `json:"total_rejected" validate:"omitempty,number"`
}

// Get returns the guild's counters, zeroed when none were ever written.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context(), c.Param("guildID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Update merges the supplied counters into the guild's stats record.
func (h *StatsHandler) Update(c *gin.Context) {
	var req updateStatsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	stats, err := h.stats.Update(c.Request.Context(), c.Param("guildID"), store.StatsPatch{
		TotalVerified: req.TotalVerified,
		TotalPending:  req.TotalPending,
		TotalRejected: req.TotalRejected,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
