package testutil

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gurizes/gatewarden/internal/database"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	seedData    bool
}

// WithAutoMigrate enables automatic schema migration after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithDemoData ensures migrations are applied and the demo guild is seeded.
func WithDemoData() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.seedData = true
	}
}

// MustOpenTestDB opens an in-memory SQLite database for tests, applying
// optional migrations and seed data. The connection is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// One named in-memory database per test keeps tests isolated while the
	// shared cache keeps pooled connections on the same database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", url.PathEscape(t.Name()))
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	if cfg.seedData {
		require.NoError(t, database.AutoMigrateAndSeed(db, true))
	} else if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
