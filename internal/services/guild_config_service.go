package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/cache"
	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/internal/store"
	"github.com/gurizes/gatewarden/pkg/logger"
)

// ErrConfigNotFound is returned when a guild has never been configured.
var ErrConfigNotFound = errors.New("guild config not found")

const defaultConfigTTL = 5 * time.Minute

// GuildConfigService reads and writes per-guild configuration, with an
// optional cache in front of the store. Writes invalidate the cached entry
// so the next read observes the merge.
type GuildConfigService struct {
	store    store.Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// GuildConfigOption configures a GuildConfigService.
type GuildConfigOption func(*GuildConfigService)

// WithConfigCache puts a cache in front of config reads.
func WithConfigCache(c cache.Store) GuildConfigOption {
	return func(s *GuildConfigService) {
		s.cache = c
	}
}

// WithConfigTTL overrides how long cached configs stay fresh.
func WithConfigTTL(ttl time.Duration) GuildConfigOption {
	return func(s *GuildConfigService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewGuildConfigService creates the service around a store.
func NewGuildConfigService(st store.Store, opts ...GuildConfigOption) *GuildConfigService {
	s := &GuildConfigService{
		store:    st,
		cacheTTL: defaultConfigTTL,
		logger:   logger.WithModule("services.guild_config"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the guild's configuration, from cache when warm.
func (s *GuildConfigService) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if cached := s.cachedConfig(ctx, guildID); cached != nil {
		return cached, nil
	}

	config, err := s.store.GuildConfig(ctx, guildID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("load guild config: %w", err)
	}

	s.cacheConfig(ctx, config)
	return config, nil
}

// Upsert merges the patch into the guild's configuration, creating it on
// first write. Fields absent from the patch are left as they were.
func (s *GuildConfigService) Upsert(ctx context.Context, guildID string, patch store.GuildConfigPatch) (*models.GuildConfig, error) {
	config, err := s.store.UpsertGuildConfig(ctx, guildID, patch)
	if err != nil {
		return nil, fmt.Errorf("upsert guild config: %w", err)
	}

	s.invalidate(ctx, guildID)
	s.logger.Info("guild config updated", zap.String("guild_id", guildID))
	return config, nil
}

func configCacheKey(guildID string) string {
	return "guild_config:" + guildID
}

func (s *GuildConfigService) cachedConfig(ctx context.Context, guildID string) *models.GuildConfig {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, configCacheKey(guildID))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("guild config cache read failed", zap.String("guild_id", guildID), zap.Error(err))
		}
		return nil
	}
	var config models.GuildConfig
	if err := json.Unmarshal(raw, &config); err != nil {
		s.logger.Warn("guild config cache entry corrupt", zap.String("guild_id", guildID), zap.Error(err))
		s.invalidate(ctx, guildID)
		return nil
	}
	return &config
}

func (s *GuildConfigService) cacheConfig(ctx context.Context, config *models.GuildConfig) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, configCacheKey(config.GuildID), raw, s.cacheTTL); err != nil {
		s.logger.Warn("guild config cache write failed", zap.String("guild_id", config.GuildID), zap.Error(err))
	}
}

func (s *GuildConfigService) invalidate(ctx context.Context, guildID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, configCacheKey(guildID)); err != nil {
		s.logger.Warn("guild config cache invalidation failed", zap.String("guild_id", guildID), zap.Error(err))
	}
}
