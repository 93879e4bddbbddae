package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/internal/store"
	"github.com/gurizes/gatewarden/pkg/logger"
	"github.com/gurizes/gatewarden/pkg/metrics"
)

var (
	// ErrRequestNotFound is returned when a verification request id is unknown.
	ErrRequestNotFound = errors.New("verification request not found")

	// ErrAlreadyDecided is returned when a moderator acts on a request that
	// was already approved or rejected. The first decision stands.
	ErrAlreadyDecided = errors.New("verification request already decided")

	// ErrInvalidStatus is returned for a status filter or decision outside
	// pending, approved, rejected.
	ErrInvalidStatus = errors.New("invalid request status")
)

// Notifier delivers Discord-side effects of the request lifecycle: the
// moderation embed when a request opens, and the role grant plus member DM
// when it is decided. Failures are logged and counted, never propagated;
// the stored decision is the source of truth.
type Notifier interface {
	RequestOpened(ctx context.Context, request *models.VerificationRequest, config *models.GuildConfig) error
	RequestDecided(ctx context.Context, request *models.VerificationRequest, config *models.GuildConfig) error
}

// Event is a guild-scoped lifecycle notification pushed to dashboard clients.
type Event struct {
	Type    string                      `json:"type"`
	Request *models.VerificationRequest `json:"request,omitempty"`
}

// Event types published on the guild stream.
const (
	EventRequestOpened  = "request.opened"
	EventRequestDecided = "request.decided"
)

// EventPublisher fans events out to connected dashboard clients.
type EventPublisher interface {
	Publish(guildID string, event Event)
}

// Decision captures a moderator's ruling on a pending request.
type Decision struct {
	Status            models.RequestStatus
	ModeratorID       string
	ModeratorUsername string
}

// VerificationService owns the request lifecycle: opening requests, applying
// moderator decisions, and reading lists for the dashboard.
type VerificationService struct {
	store     store.Store
	notifier  Notifier
	publisher EventPublisher
	logger    *zap.Logger
}

// VerificationOption configures a VerificationService.
type VerificationOption func(*VerificationService)

// WithNotifier wires the Discord side effects for lifecycle transitions.
func WithNotifier(n Notifier) VerificationOption {
	return func(s *VerificationService) {
		s.notifier = n
	}
}

// WithEventPublisher wires the dashboard event stream.
func WithEventPublisher(p EventPublisher) VerificationOption {
	return func(s *VerificationService) {
		s.publisher = p
	}
}

// NewVerificationService creates the service around a store.
func NewVerificationService(st store.Store, opts ...VerificationOption) *VerificationService {
	s := &VerificationService{
		store:  st,
		logger: logger.WithModule("services.verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest opens a pending request and, after the write commits, posts
// the moderation embed and publishes the dashboard event.
func (s *VerificationService) CreateRequest(ctx context.Context, input store.CreateRequestInput) (*models.VerificationRequest, error) {
	request, err := s.store.CreateRequest(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create verification request: %w", err)
	}
	metrics.VerificationRequests.WithLabelValues(input.GuildID).Inc()

	s.logger.Info("verification request opened",
		zap.String("request_id", request.ID),
		zap.String("guild_id", request.GuildID),
		zap.String("user_id", request.UserID))

	s.notifyOpened(ctx, request)
	s.publish(request.GuildID, Event{Type: EventRequestOpened, Request: request})
	return request, nil
}

// Decide applies a moderator's ruling. A request can be decided exactly once;
// later attempts fail with ErrAlreadyDecided regardless of direction.
func (s *VerificationService) Decide(ctx context.Context, requestID string, decision Decision) (*models.VerificationRequest, error) {
	if decision.Status != models.StatusApproved && decision.Status != models.StatusRejected {
		return nil, ErrInvalidStatus
	}

	current, err := s.store.Request(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load verification request: %w", err)
	}
	if current.Status.Decided() {
		return nil, ErrAlreadyDecided
	}

	patch := store.RequestPatch{Status: decision.Status}
	if decision.ModeratorID != "" {
		patch.ApprovedBy = &decision.ModeratorID
	}
	if decision.ModeratorUsername != "" {
		patch.ApprovedByUsername = &decision.ModeratorUsername
	}

	updated, err := s.store.UpdateRequest(ctx, requestID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("update verification request: %w", err)
	}
	metrics.VerificationDecisions.WithLabelValues(updated.GuildID, string(updated.Status)).Inc()

	s.logger.Info("verification request decided",
		zap.String("request_id", updated.ID),
		zap.String("guild_id", updated.GuildID),
		zap.String("status", string(updated.Status)),
		zap.String("moderator_id", decision.ModeratorID))

	s.notifyDecided(ctx, updated)
	s.publish(updated.GuildID, Event{Type: EventRequestDecided, Request: updated})
	return updated, nil
}

// Request looks up a single request by id.
func (s *VerificationService) Request(ctx context.Context, requestID string) (*models.VerificationRequest, error) {
	request, err := s.store.Request(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load verification request: %w", err)
	}
	return request, nil
}

// Requests lists a guild's requests, optionally filtered by status.
func (s *VerificationService) Requests(ctx context.Context, guildID string, status models.RequestStatus) ([]models.VerificationRequest, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	requests, err := s.store.Requests(ctx, guildID, status)
	if err != nil {
		return nil, fmt.Errorf("list verification requests: %w", err)
	}
	return requests, nil
}

// RecentActivity lists the most recently decided requests for the dashboard.
func (s *VerificationService) RecentActivity(ctx context.Context, guildID string, limit int) ([]models.VerificationRequest, error) {
	activity, err := s.store.RecentActivity(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	return activity, nil
}

func (s *VerificationService) notifyOpened(ctx context.Context, request *models.VerificationRequest) {
	if s.notifier == nil {
		return
	}
	config := s.guildConfig(ctx, request.GuildID)
	if err := s.notifier.RequestOpened(ctx, request, config); err != nil {
		metrics.SideEffectFailures.WithLabelValues("request_opened").Inc()
		s.logger.Warn("request opened notification failed",
			zap.String("request_id", request.ID),
			zap.String("guild_id", request.GuildID),
			zap.Error(err))
	}
}

func (s *VerificationService) notifyDecided(ctx context.Context, request *models.VerificationRequest) {
	if s.notifier == nil {
		return
	}
	config := s.guildConfig(ctx, request.GuildID)
	if err := s.notifier.RequestDecided(ctx, request, config); err != nil {
		metrics.SideEffectFailures.WithLabelValues("request_decided").Inc()
		s.logger.Warn("request decided notification failed",
			zap.String("request_id", request.ID),
			zap.String("guild_id", request.GuildID),
			zap.Error(err))
	}
}

func (s *VerificationService) guildConfig(ctx context.Context, guildID string) *models.GuildConfig {
	config, err := s.store.GuildConfig(ctx, guildID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("guild config lookup failed", zap.String("guild_id", guildID), zap.Error(err))
		}
		return nil
	}
	return config
}

func (s *VerificationService) publish(guildID string, event Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(guildID, event)
}
