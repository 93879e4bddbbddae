package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gurizes/gatewarden/internal/models"
)

// DatabaseStore implements Store on top of the primary SQL database.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// DatabaseOption customises DatabaseStore behaviour.
type DatabaseOption func(*DatabaseStore)

// WithDatabaseClock injects a custom clock, primarily for testing.
func WithDatabaseClock(clock func() time.Time) DatabaseOption {
	return func(s *DatabaseStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB, opts ...DatabaseOption) (*DatabaseStore, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}

	s := &DatabaseStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateRequest opens a new pending verification request.
func (s *DatabaseStore) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.VerificationRequest, error) {
	now := s.now().UTC()
	request := models.VerificationRequest{
		BaseModel: models.BaseModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
		GuildID:          input.GuildID,
		UserID:           input.UserID,
		Username:         input.Username,
		ReferrerID:       input.ReferrerID,
		ReferrerUsername: input.ReferrerUsername,
		Status:           models.StatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("store: create request: %w", err)
	}
	return &request, nil
}

// Request looks up a request by id.
func (s *DatabaseStore) Request(ctx context.Context, id string) (*models.VerificationRequest, error) {
	var request models.VerificationRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find request: %w", err)
	}
	return &request, nil
}

// Requests lists a guild's requests newest-created first.
func (s *DatabaseStore) Requests(ctx context.Context, guildID string, status models.RequestStatus) ([]models.VerificationRequest, error) {
	query := s.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.VerificationRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	return rows, nil
}

// UpdateRequest merges decision fields into an existing request.
func (s *DatabaseStore) UpdateRequest(ctx context.Context, id string, patch RequestPatch) (*models.VerificationRequest, error) {
	request, err := s.Request(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": s.now().UTC()}
	if patch.Status != "" {
		updates["status"] = patch.Status
	}
	if patch.ApprovedBy != nil {
		updates["approved_by"] = *patch.ApprovedBy
	}
	if patch.ApprovedByUsername != nil {
		updates["approved_by_username"] = *patch.ApprovedByUsername
	}

	// UpdateColumns keeps the explicit updated_at instead of the ORM's.
	if err := s.db.WithContext(ctx).
		Model(request).
		UpdateColumns(updates).Error; err != nil {
		return nil, fmt.Errorf("store: update request: %w", err)
	}

	return s.Request(ctx, id)
}

// RecentActivity lists decided requests newest-updated first.
func (s *DatabaseStore) RecentActivity(ctx context.Context, guildID string, limit int) ([]models.VerificationRequest, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	var rows []models.VerificationRequest
	if err := s.db.WithContext(ctx).
		Where("guild_id = ? AND status <> ?", guildID, models.StatusPending).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: recent activity: %w", err)
	}
	return rows, nil
}

// GuildConfig returns the guild's configuration.
func (s *DatabaseStore) GuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	var config models.GuildConfig
	if err := s.db.WithContext(ctx).First(&config, "guild_id = ?", guildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find guild config: %w", err)
	}
	return &config, nil
}

// UpsertGuildConfig merges the patch into the guild's configuration record.
func (s *DatabaseStore) UpsertGuildConfig(ctx context.Context, guildID string, patch GuildConfigPatch) (*models.GuildConfig, error) {
	existing, err := s.GuildConfig(ctx, guildID)
	if errors.Is(err, ErrNotFound) {
		created, createErr := s.createGuildConfig(ctx, guildID, patch)
		if createErr == nil {
			return created, nil
		}
		if !isUniqueConstraintError(createErr) {
			return nil, createErr
		}
		// Lost a create race with another writer; fall through to merge.
		if existing, err = s.GuildConfig(ctx, guildID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": s.now().UTC()}
	if patch.VerificationChannelID != nil {
		updates["verification_channel_id"] = *patch.VerificationChannelID
	}
	if patch.VerificationRoleID != nil {
		updates["verification_role_id"] = *patch.VerificationRoleID
	}
	if patch.LogsChannelID != nil {
		updates["logs_channel_id"] = *patch.LogsChannelID
	}
	if patch.EmbedTitle != nil {
		updates["embed_title"] = *patch.EmbedTitle
	}
	if patch.EmbedDescription != nil {
		updates["embed_description"] = *patch.EmbedDescription
	}

	if err := s.db.WithContext(ctx).
		Model(existing).
		UpdateColumns(updates).Error; err != nil {
		return nil, fmt.Errorf("store: update guild config: %w", err)
	}

	return s.GuildConfig(ctx, guildID)
}

func (s *DatabaseStore) createGuildConfig(ctx context.Context, guildID string, patch GuildConfigPatch) (*models.GuildConfig, error) {
	now := s.now().UTC()
	config := models.GuildConfig{
		BaseModel: models.BaseModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
		GuildID:               guildID,
		VerificationChannelID: patch.VerificationChannelID,
		VerificationRoleID:    patch.VerificationRoleID,
		LogsChannelID:         patch.LogsChannelID,
		EmbedTitle:            models.DefaultEmbedTitle,
		EmbedDescription:      models.DefaultEmbedDescription,
	}
	if patch.EmbedTitle != nil {
		config.EmbedTitle = *patch.EmbedTitle
	}
	if patch.EmbedDescription != nil {
		config.EmbedDescription = *patch.EmbedDescription
	}

	if err := s.db.WithContext(ctx).Create(&config).Error; err != nil {
		return nil, fmt.Errorf("store: create guild config: %w", err)
	}
	return &config, nil
}

// Stats returns the guild's aggregate counters.
func (s *DatabaseStore) Stats(ctx context.Context, guildID string) (*models.VerificationStats, error) {
	var stats models.VerificationStats
	if err := s.db.WithContext(ctx).First(&stats, "guild_id = ?", guildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find stats: %w", err)
	}
	return &stats, nil
}

// UpsertStats merges the patch into the guild's counter record.
func (s *DatabaseStore) UpsertStats(ctx context.Context, guildID string, patch StatsPatch) (*models.VerificationStats, error) {
	existing, err := s.Stats(ctx, guildID)
	if errors.Is(err, ErrNotFound) {
		created, createErr := s.createStats(ctx, guildID, patch)
		if createErr == nil {
			return created, nil
		}
		if !isUniqueConstraintError(createErr) {
			return nil, createErr
		}
		if existing, err = s.Stats(ctx, guildID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": s.now().UTC()}
	if patch.TotalVerified != nil {
		updates["total_verified"] = *patch.TotalVerified
	}
	if patch.TotalPending != nil {
		updates["total_pending"] = *patch.TotalPending
	}
	if patch.TotalRejected != nil {
		updates["total_rejected"] = *patch.TotalRejected
	}

	if err := s.db.WithContext(ctx).
		Model(existing).
		UpdateColumns(updates).Error; err != nil {
		return nil, fmt.Errorf("store: update stats: %w", err)
	}

	return s.Stats(ctx, guildID)
}

func (s *DatabaseStore) createStats(ctx context.Context, guildID string, patch StatsPatch) (*models.VerificationStats, error) {
	now := s.now().UTC()
	stats := models.VerificationStats{
		BaseModel: models.BaseModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
		GuildID:       guildID,
		TotalVerified: "0",
		TotalPending:  "0",
		TotalRejected: "0",
	}
	if patch.TotalVerified != nil {
		stats.TotalVerified = *patch.TotalVerified
	}
	if patch.TotalPending != nil {
		stats.TotalPending = *patch.TotalPending
	}
	if patch.TotalRejected != nil {
		stats.TotalRejected = *patch.TotalRejected
	}

	if err := s.db.WithContext(ctx).Create(&stats).Error; err != nil {
		return nil, fmt.Errorf("store: create stats: %w", err)
	}
	return &stats, nil
}

// PendingCounts reports pending request totals per guild.
func (s *DatabaseStore) PendingCounts(ctx context.Context) (map[string]int64, error) {
	type row struct {
		GuildID string
		Total   int64
	}

	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&models.VerificationRequest{}).
		Select("guild_id, COUNT(*) AS total").
		Where("status = ?", models.StatusPending).
		Group("guild_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: pending counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.GuildID] = r.Total
	}
	return counts, nil
}

// StatsGuildIDs lists guilds holding a counter record.
func (s *DatabaseStore) StatsGuildIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.VerificationStats{}).
		Order("guild_id").
		Pluck("guild_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("store: stats guild ids: %w", err)
	}
	return ids, nil
}
