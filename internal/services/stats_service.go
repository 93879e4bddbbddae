package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/internal/store"
)

// StatsService reads and writes per-guild aggregate counters. Counters are
// maintained explicitly by operators or external jobs; deciding a request
// never changes them.
type StatsService struct {
	store store.Store
}

// NewStatsService creates the service around a store.
func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

// Get returns the guild's counters, or all-zero counters for a guild that
// has never had stats written.
func (s *StatsService) Get(ctx context.Context, guildID string) (*models.VerificationStats, error) {
	stats, err := s.store.Stats(ctx, guildID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &models.VerificationStats{
				GuildID:       guildID,
				TotalVerified: "0",
				TotalPending:  "0",
				TotalRejected: "0",
			}, nil
		}
		return nil, fmt.Errorf("load verification stats: %w", err)
	}
	return stats, nil
}

// Update merges the patch into the guild's counters, creating the record on
// first write.
func (s *StatsService) Update(ctx context.Context, guildID string, patch store.StatsPatch) (*models.VerificationStats, error) {
	stats, err := s.store.UpsertStats(ctx, guildID, patch)
	if err != nil {
		return nil, fmt.Errorf("upsert verification stats: %w", err)
	}
	return stats, nil
}
