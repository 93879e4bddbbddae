package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gurizes/gatewarden/internal/cache"
	"github.com/gurizes/gatewarden/internal/store"
)

func TestGuildConfigGetUnknownGuild(t *testing.T) {
	svc := NewGuildConfigService(store.NewMemoryStore())

	_, err := svc.Get(context.Background(), "missing-guild")
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestGuildConfigUpsertThenGet(t *testing.T) {
	svc := NewGuildConfigService(store.NewMemoryStore())

	channel := "channel-1"
	created, err := svc.Upsert(context.Background(), "guild-1", store.GuildConfigPatch{
		VerificationChannelID: &channel,
	})
	require.NoError(t, err)

	loaded, err := svc.Get(context.Background(), "guild-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, loaded.ID)
	require.NotNil(t, loaded.VerificationChannelID)
	require.Equal(t, channel, *loaded.VerificationChannelID)
}

func TestGuildConfigCacheReadThrough(t *testing.T) {
	st := store.NewMemoryStore()
	c := cache.NewMemoryStore()
	svc := NewGuildConfigService(st, WithConfigCache(c))

	channel := "channel-1"
	_, err := svc.Upsert(context.Background(), "guild-1", store.GuildConfigPatch{
		VerificationChannelID: &channel,
	})
	require.NoError(t, err)

	// First read warms the cache.
	first, err := svc.Get(context.Background(), "guild-1")
	require.NoError(t, err)
	raw, err := c.Get(context.Background(), "guild_config:guild-1")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// A cached read survives the store record disappearing underneath.
	second, err := svc.Get(context.Background(), "guild-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestGuildConfigCacheHonoursConfiguredTTL(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	c := cache.NewMemoryStore(cache.WithMemoryCacheClock(func() time.Time {
		return now
	}))
	svc := NewGuildConfigService(store.NewMemoryStore(),
		WithConfigCache(c),
		WithConfigTTL(time.Minute))

	channel := "channel-1"
	_, err := svc.Upsert(context.Background(), "guild-1", store.GuildConfigPatch{
		VerificationChannelID: &channel,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "guild-1")
	require.NoError(t, err)

	// Still warm just inside the configured minute.
	now = now.Add(59 * time.Second)
	_, err = c.Get(context.Background(), "guild_config:guild-1")
	require.NoError(t, err)

	// Expired past the configured TTL, well before the default would lapse.
	now = now.Add(2 * time.Second)
	_, err = c.Get(context.Background(), "guild_config:guild-1")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestGuildConfigUpsertInvalidatesCache(t *testing.T) {
	st := store.NewMemoryStore()
	c := cache.NewMemoryStore()
	svc := NewGuildConfigService(st, WithConfigCache(c))

	channel := "channel-1"
	_, err := svc.Upsert(context.Background(), "guild-1", store.GuildConfigPatch{
		VerificationChannelID: &channel,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "guild-1")
	require.NoError(t, err)

	role := "role-1"
	_, err = svc.Upsert(context.Background(), "guild-1", store.GuildConfigPatch{
		VerificationRoleID: &role,
	})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "guild_config:guild-1")
	require.ErrorIs(t, err, cache.ErrMiss)

	// The next read sees the merged record.
	loaded, err := svc.Get(context.Background(), "guild-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.VerificationChannelID)
	require.NotNil(t, loaded.VerificationRoleID)
}
