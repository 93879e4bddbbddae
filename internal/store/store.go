package store

import (
	"context"
	"errors"

	"github.com/gurizes/gatewarden/internal/models"
)

// DefaultActivityLimit bounds RecentActivity when the caller passes no limit.
const DefaultActivityLimit = 10

// ErrNotFound is returned when a request or per-guild record does not exist.
// Callers branch on presence; the store never panics on a missing id.
var ErrNotFound = errors.New("store: record not found")

// CreateRequestInput carries the fields required to open a verification request.
type CreateRequestInput struct {
	GuildID          string
	UserID           string
	Username         string
	ReferrerID       string
	ReferrerUsername string
}

// RequestPatch carries decision fields merged into an existing request.
// The store applies the patch as-is; decision policy lives with the caller.
type RequestPatch struct {
	Status             models.RequestStatus
	ApprovedBy         *string
	ApprovedByUsername *string
}

// GuildConfigPatch describes a partial configuration update. Nil fields are
// left untouched; they are never cleared implicitly.
type GuildConfigPatch struct {
	VerificationChannelID *string
	VerificationRoleID    *string
	LogsChannelID         *string
	EmbedTitle            *string
	EmbedDescription      *string
}

// StatsPatch describes a partial counter update with the same merge policy.
type StatsPatch struct {
	TotalVerified *string
	TotalPending  *string
	TotalRejected *string
}

// Store is the persistence surface for verification requests, per-guild
// configuration, and aggregate counters. Two implementations exist: an
// in-memory variant and a database-backed variant, selected by configuration.
type Store interface {
	// CreateRequest opens a new pending request with a fresh id and both
	// timestamps stamped. Duplicate pending requests from the same user are
	// permitted.
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.VerificationRequest, error)

	// Request looks up a single request by id.
	Request(ctx context.Context, id string) (*models.VerificationRequest, error)

	// Requests lists a guild's requests newest-created first, optionally
	// restricted to one status (empty status means all).
	Requests(ctx context.Context, guildID string, status models.RequestStatus) ([]models.VerificationRequest, error)

	// UpdateRequest merges the patch into an existing request and refreshes
	// its update timestamp. ErrNotFound when the id is unknown.
	UpdateRequest(ctx context.Context, id string, patch RequestPatch) (*models.VerificationRequest, error)

	// RecentActivity lists decided requests newest-updated first, truncated
	// to limit (DefaultActivityLimit when limit <= 0).
	RecentActivity(ctx context.Context, guildID string, limit int) ([]models.VerificationRequest, error)

	// GuildConfig returns the guild's configuration or ErrNotFound.
	GuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)

	// UpsertGuildConfig merges the patch into the guild's configuration,
	// creating it with defaulted embed copy when absent.
	UpsertGuildConfig(ctx context.Context, guildID string, patch GuildConfigPatch) (*models.GuildConfig, error)

	// Stats returns the guild's counters or ErrNotFound.
	Stats(ctx context.Context, guildID string) (*models.VerificationStats, error)

	// UpsertStats merges the patch into the guild's counters, creating the
	// record with zero-valued string counters when absent.
	UpsertStats(ctx context.Context, guildID string, patch StatsPatch) (*models.VerificationStats, error)

	// PendingCounts reports the number of pending requests per guild. Guilds
	// without pending requests are absent from the map.
	PendingCounts(ctx context.Context) (map[string]int64, error)

	// StatsGuildIDs lists the guilds that hold a counter record.
	StatsGuildIDs(ctx context.Context) ([]string, error)
}
