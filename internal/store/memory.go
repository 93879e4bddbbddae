package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gurizes/gatewarden/internal/models"
)

// MemoryStore implements Store with plain maps. It backs tests and the
// zero-configuration demo mode. The original event loop serialised every
// operation for free; here HTTP and gateway handlers run concurrently, so a
// mutex re-establishes that property inside a single process.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*models.VerificationRequest
	configs  map[string]*models.GuildConfig
	stats    map[string]*models.VerificationStats
	now      func() time.Time
}

// MemoryOption customises MemoryStore behaviour.
type MemoryOption func(*MemoryStore)

// WithMemoryClock injects a custom clock, primarily for testing.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		requests: make(map[string]*models.VerificationRequest),
		configs:  make(map[string]*models.GuildConfig),
		stats:    make(map[string]*models.VerificationStats),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest opens a new pending verification request.
func (s *MemoryStore) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.VerificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	request := &models.VerificationRequest{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
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

	s.requests[request.ID] = request
	return cloneRequest(request), nil
}

// Request looks up a request by id.
func (s *MemoryStore) Request(ctx context.Context, id string) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequest(request), nil
}

// Requests lists a guild's requests newest-created first.
func (s *MemoryStore) Requests(ctx context.Context, guildID string, status models.RequestStatus) ([]models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []models.VerificationRequest
	for _, request := range s.requests {
		if request.GuildID != guildID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		rows = append(rows, *cloneRequest(request))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

// UpdateRequest merges decision fields into an existing request.
func (s *MemoryStore) UpdateRequest(ctx context.Context, id string, patch RequestPatch) (*models.VerificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Status != "" {
		request.Status = patch.Status
	}
	if patch.ApprovedBy != nil {
		approvedBy := *patch.ApprovedBy
		request.ApprovedBy = &approvedBy
	}
	if patch.ApprovedByUsername != nil {
		approvedByUsername := *patch.ApprovedByUsername
		request.ApprovedByUsername = &approvedByUsername
	}
	request.UpdatedAt = s.now().UTC()

	return cloneRequest(request), nil
}

// RecentActivity lists decided requests newest-updated first.
func (s *MemoryStore) RecentActivity(ctx context.Context, guildID string, limit int) ([]models.VerificationRequest, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []models.VerificationRequest
	for _, request := range s.requests {
		if request.GuildID != guildID || request.Status == models.StatusPending {
			continue
		}
		rows = append(rows, *cloneRequest(request))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// GuildConfig returns the guild's configuration.
func (s *MemoryStore) GuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConfig(config), nil
}

// UpsertGuildConfig merges the patch into the guild's configuration record.
func (s *MemoryStore) UpsertGuildConfig(ctx context.Context, guildID string, patch GuildConfigPatch) (*models.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	config, ok := s.configs[guildID]
	if !ok {
		config = &models.GuildConfig{
			BaseModel: models.BaseModel{
				ID:        uuid.NewString(),
				CreatedAt: now,
			},
			GuildID:          guildID,
			EmbedTitle:       models.DefaultEmbedTitle,
			EmbedDescription: models.DefaultEmbedDescription,
		}
		s.configs[guildID] = config
	}

	if patch.VerificationChannelID != nil {
		value := *patch.VerificationChannelID
		config.VerificationChannelID = &value
	}
	if patch.VerificationRoleID != nil {
		value := *patch.VerificationRoleID
		config.VerificationRoleID = &value
	}
	if patch.LogsChannelID != nil {
		value := *patch.LogsChannelID
		config.LogsChannelID = &value
	}
	if patch.EmbedTitle != nil {
		config.EmbedTitle = *patch.EmbedTitle
	}
	if patch.EmbedDescription != nil {
		config.EmbedDescription = *patch.EmbedDescription
	}
	config.UpdatedAt = now

	return cloneConfig(config), nil
}

// Stats returns the guild's aggregate counters.
func (s *MemoryStore) Stats(ctx context.Context, guildID string) (*models.VerificationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStats(stats), nil
}

// UpsertStats merges the patch into the guild's counter record.
func (s *MemoryStore) UpsertStats(ctx context.Context, guildID string, patch StatsPatch) (*models.VerificationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	stats, ok := s.stats[guildID]
	if !ok {
		stats = &models.VerificationStats{
			BaseModel: models.BaseModel{
				ID:        uuid.NewString(),
				CreatedAt: now,
			},
			GuildID:       guildID,
			TotalVerified: "0",
			TotalPending:  "0",
			TotalRejected: "0",
		}
		s.stats[guildID] = stats
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
	stats.UpdatedAt = now

	return cloneStats(stats), nil
}

// PendingCounts reports pending request totals per guild.
func (s *MemoryStore) PendingCounts(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, request := range s.requests {
		if request.Status == models.StatusPending {
			counts[request.GuildID]++
		}
	}
	return counts, nil
}

// StatsGuildIDs lists guilds holding a counter record.
func (s *MemoryStore) StatsGuildIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.stats))
	for guildID := range s.stats {
		ids = append(ids, guildID)
	}
	sort.Strings(ids)
	return ids, nil
}

// The store owns its records exclusively; clones keep callers from holding
// writable references into the maps.

func cloneRequest(request *models.VerificationRequest) *models.VerificationRequest {
	cpy := *request
	if request.ApprovedBy != nil {
		approvedBy := *request.ApprovedBy
		cpy.ApprovedBy = &approvedBy
	}
	if request.ApprovedByUsername != nil {
		approvedByUsername := *request.ApprovedByUsername
		cpy.ApprovedByUsername = &approvedByUsername
	}
	return &cpy
}

func cloneConfig(config *models.GuildConfig) *models.GuildConfig {
	cpy := *config
	if config.VerificationChannelID != nil {
		value := *config.VerificationChannelID
		cpy.VerificationChannelID = &value
	}
	if config.VerificationRoleID != nil {
		value := *config.VerificationRoleID
		cpy.VerificationRoleID = &value
	}
	if config.LogsChannelID != nil {
		value := *config.LogsChannelID
		cpy.LogsChannelID = &value
	}
	return &cpy
}

func cloneStats(stats *models.VerificationStats) *models.VerificationStats {
	cpy := *stats
	return &cpy
}
