package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/gatewarden.sqlite", cfg.Database.Path)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Address)
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, 5*time.Minute, cfg.Cache.ConfigTTL)
	require.Empty(t, cfg.Discord.Token)
	require.False(t, cfg.Demo.Seed)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.Schedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "gatewarden", cfg.Database.Postgres.Database)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6379", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 30*time.Second, cfg.Cache.ConfigTTL)
	require.True(t, cfg.Demo.Seed)
	require.False(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@every 10m", cfg.Maintenance.Schedule)
}

func TestConfigureLoggingDefaultsLevel(t *testing.T) {
	require.NoError(t, ConfigureLogging(""))
	require.NoError(t, ConfigureLogging("debug"))
}
