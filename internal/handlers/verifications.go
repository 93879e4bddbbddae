package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/internal/store"
	appErrors "github.com/gurizes/gatewarden/pkg/errors"
	"github.com/gurizes/gatewarden/pkg/response"
)

// VerificationsHandler serves the request lifecycle endpoints.
type VerificationsHandler struct {
	verifications *services.VerificationService
}

// NewVerificationsHandler creates the handler.
func NewVerificationsHandler(verifications *services.VerificationService) *VerificationsHandler {
	return &VerificationsHandler{verifications: verifications}
}

type createRequestRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	Username         string `json:"username" validate:"required"`
	ReferrerID       string `json:"referrer_id" validate:"required"`
	ReferrerUsername string `json:"referrer_username" validate:"required"`
}

type decideRequestRequest struct {
	Status             string `json:"status" validate:"required,oneof=approved rejected"`
	ApprovedBy         string `json:"approved_by" validate:"required"`
	ApprovedByUsername string `json:"approved_by_username" validate:"required"`
}

// List returns a guild's requests, optionally filtered by ?status=.
func (h *VerificationsHandler) List(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	requests, err := h.verifications.Requests(c.Request.Context(), c.Param("guildID"), status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			response.Error(c, appErrors.NewBadRequest("status must be one of: pending, approved, rejected"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, requests)
}

// Create opens a new pending verification request.
func (h *VerificationsHandler) Create(c *gin.Context) {
	var req createRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.verifications.CreateRequest(c.Request.Context(), store.CreateRequestInput{
		GuildID:          c.Param("guildID"),
		UserID:           req.UserID,
		Username:         req.Username,
		ReferrerID:       req.ReferrerID,
		ReferrerUsername: req.ReferrerUsername,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// Decide applies a moderator's ruling to a pending request.
func (h *VerificationsHandler) Decide(c *gin.Context) {
	var req decideRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.verifications.Decide(c.Request.Context(), c.Param("id"), services.Decision{
		Status:            models.RequestStatus(req.Status),
		ModeratorID:       req.ApprovedBy,
		ModeratorUsername: req.ApprovedByUsername,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			response.Error(c, appErrors.NewNotFound("verification request not found"))
		case errors.Is(err, services.ErrAlreadyDecided):
			response.Error(c, appErrors.NewConflict("verification request was already decided"))
		case errors.Is(err, services.ErrInvalidStatus):
			response.Error(c, appErrors.NewBadRequest("status must be approved or rejected"))
		default:
			response.Error(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, request)
}

// Activity returns the most recently decided requests, capped by ?limit=.
func (h *VerificationsHandler) Activity(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 0)
	activity, err := h.verifications.RecentActivity(c.Request.Context(), c.Param("guildID"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, activity)
}
