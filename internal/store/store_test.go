package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gurizes/gatewarden/internal/database/testutil"
	"github.com/gurizes/gatewarden/internal/models"
)

type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

// withEachStore runs the subtest against both store variants so they stay
// behaviourally interchangeable.
func withEachStore(t *testing.T, fn func(t *testing.T, s Store, clock *fakeClock)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		clock := newFakeClock()
		fn(t, NewMemoryStore(WithMemoryClock(clock.Now)), clock)
	})

	t.Run("database", func(t *testing.T) {
		clock := newFakeClock()
		db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
		s, err := NewDatabaseStore(db, WithDatabaseClock(clock.Now))
		require.NoError(t, err)
		fn(t, s, clock)
	})
}

func mustCreate(t *testing.T, s Store, guildID, userID, username string) *models.VerificationRequest {
	t.Helper()
	request, err := s.CreateRequest(context.Background(), CreateRequestInput{
		GuildID:          guildID,
		UserID:           userID,
		Username:         username,
		ReferrerID:       "referrer-1",
		ReferrerUsername: "Veterano#1111",
	})
	require.NoError(t, err)
	return request
}

func TestCreateRequestStartsPending(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		request := mustCreate(t, s, "guild-1", "user-1", "Novato#0001")

		require.NotEmpty(t, request.ID)
		require.Equal(t, models.StatusPending, request.Status)
		require.Nil(t, request.ApprovedBy)
		require.Nil(t, request.ApprovedByUsername)
		require.False(t, request.CreatedAt.IsZero())
		require.True(t, request.CreatedAt.Equal(request.UpdatedAt))

		rows, err := s.Requests(context.Background(), "guild-1", "")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, request.ID, rows[0].ID)
	})
}

func TestDuplicateRequestsFromSameUserAllowed(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		first := mustCreate(t, s, "guild-1", "user-1", "Novato#0001")
		clock.Advance(time.Second)
		second := mustCreate(t, s, "guild-1", "user-1", "Novato#0001")

		require.NotEqual(t, first.ID, second.ID)

		rows, err := s.Requests(context.Background(), "guild-1", models.StatusPending)
		require.NoError(t, err)
		require.Len(t, rows, 2)
	})
}

func TestRequestsFilterByStatusAndOrderByCreation(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		oldest := mustCreate(t, s, "guild-1", "user-1", "Primeiro#0001")
		clock.Advance(time.Minute)
		middle := mustCreate(t, s, "guild-1", "user-2", "Segundo#0002")
		clock.Advance(time.Minute)
		newest := mustCreate(t, s, "guild-1", "user-3", "Terceiro#0003")
		mustCreate(t, s, "guild-2", "user-9", "Outro#0009")

		admin := "admin-1"
		adminName := "Admin#1234"
		clock.Advance(time.Minute)
		_, err := s.UpdateRequest(context.Background(), middle.ID, RequestPatch{
			Status:             models.StatusApproved,
			ApprovedBy:         &admin,
			ApprovedByUsername: &adminName,
		})
		require.NoError(t, err)

		all, err := s.Requests(context.Background(), "guild-1", "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, newest.ID, all[0].ID)
		require.Equal(t, middle.ID, all[1].ID)
		require.Equal(t, oldest.ID, all[2].ID)

		approved, err := s.Requests(context.Background(), "guild-1", models.StatusApproved)
		require.NoError(t, err)
		require.Len(t, approved, 1)
		require.Equal(t, middle.ID, approved[0].ID)

		pending, err := s.Requests(context.Background(), "guild-1", models.StatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 2)
	})
}

func TestUpdateRequestNotFound(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		_, err := s.UpdateRequest(context.Background(), "missing-id", RequestPatch{Status: models.StatusApproved})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateRequestMergesDecisionFields(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		request := mustCreate(t, s, "guild-1", "user-1", "Novato#0001")

		clock.Advance(30 * time.Second)
		admin := "admin-1"
		adminName := "Admin#1234"
		updated, err := s.UpdateRequest(context.Background(), request.ID, RequestPatch{
			Status:             models.StatusApproved,
			ApprovedBy:         &admin,
			ApprovedByUsername: &adminName,
		})
		require.NoError(t, err)

		require.Equal(t, models.StatusApproved, updated.Status)
		require.NotNil(t, updated.ApprovedBy)
		require.Equal(t, admin, *updated.ApprovedBy)
		require.NotNil(t, updated.ApprovedByUsername)
		require.Equal(t, adminName, *updated.ApprovedByUsername)
		require.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	})
}

func TestRecentActivityExcludesPendingAndOrdersByUpdate(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		first := mustCreate(t, s, "guild-1", "user-1", "Primeiro#0001")
		clock.Advance(time.Second)
		second := mustCreate(t, s, "guild-1", "user-2", "Segundo#0002")
		clock.Advance(time.Second)
		third := mustCreate(t, s, "guild-1", "user-3", "Terceiro#0003")
		mustCreate(t, s, "guild-1", "user-4", "Pendente#0004")

		admin := "admin-1"
		adminName := "Admin#1234"
		for _, decision := range []struct {
			id     string
			status models.RequestStatus
		}{
			{first.ID, models.StatusApproved},
			{second.ID, models.StatusRejected},
			{third.ID, models.StatusApproved},
		} {
			clock.Advance(time.Minute)
			_, err := s.UpdateRequest(context.Background(), decision.id, RequestPatch{
				Status:             decision.status,
				ApprovedBy:         &admin,
				ApprovedByUsername: &adminName,
			})
			require.NoError(t, err)
		}

		activity, err := s.RecentActivity(context.Background(), "guild-1", 2)
		require.NoError(t, err)
		require.Len(t, activity, 2)
		require.Equal(t, third.ID, activity[0].ID)
		require.Equal(t, second.ID, activity[1].ID)
		for _, row := range activity {
			require.NotEqual(t, models.StatusPending, row.Status)
		}

		// Default limit applies when the caller passes none.
		activity, err = s.RecentActivity(context.Background(), "guild-1", 0)
		require.NoError(t, err)
		require.Len(t, activity, 3)
	})
}

func TestGuildConfigUpsertCreatesWithDefaults(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		channel := "channel-1"
		config, err := s.UpsertGuildConfig(context.Background(), "guild-1", GuildConfigPatch{
			VerificationChannelID: &channel,
		})
		require.NoError(t, err)

		require.Equal(t, "guild-1", config.GuildID)
		require.NotNil(t, config.VerificationChannelID)
		require.Equal(t, channel, *config.VerificationChannelID)
		require.Nil(t, config.VerificationRoleID)
		require.Nil(t, config.LogsChannelID)
		require.Equal(t, models.DefaultEmbedTitle, config.EmbedTitle)
		require.Equal(t, models.DefaultEmbedDescription, config.EmbedDescription)
	})
}

func TestGuildConfigUpsertMergesPartialUpdates(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		channel := "channel-1"
		first, err := s.UpsertGuildConfig(context.Background(), "guild-1", GuildConfigPatch{
			VerificationChannelID: &channel,
		})
		require.NoError(t, err)

		clock.Advance(time.Second)
		role := "role-1"
		second, err := s.UpsertGuildConfig(context.Background(), "guild-1", GuildConfigPatch{
			VerificationRoleID: &role,
		})
		require.NoError(t, err)

		// Same record, both fields present after the second write.
		require.Equal(t, first.ID, second.ID)
		require.NotNil(t, second.VerificationChannelID)
		require.Equal(t, channel, *second.VerificationChannelID)
		require.NotNil(t, second.VerificationRoleID)
		require.Equal(t, role, *second.VerificationRoleID)

		loaded, err := s.GuildConfig(context.Background(), "guild-1")
		require.NoError(t, err)
		require.Equal(t, first.ID, loaded.ID)
		require.NotNil(t, loaded.VerificationChannelID)
		require.NotNil(t, loaded.VerificationRoleID)
	})
}

func TestGuildConfigNotFound(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		_, err := s.GuildConfig(context.Background(), "missing-guild")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStatsUpsertDefaultsAndMerge(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		verified := "10"
		stats, err := s.UpsertStats(context.Background(), "guild-1", StatsPatch{
			TotalVerified: &verified,
		})
		require.NoError(t, err)
		require.Equal(t, "10", stats.TotalVerified)
		require.Equal(t, "0", stats.TotalPending)
		require.Equal(t, "0", stats.TotalRejected)

		rejected := "3"
		merged, err := s.UpsertStats(context.Background(), "guild-1", StatsPatch{
			TotalRejected: &rejected,
		})
		require.NoError(t, err)
		require.Equal(t, stats.ID, merged.ID)
		require.Equal(t, "10", merged.TotalVerified)
		require.Equal(t, "3", merged.TotalRejected)
	})
}

func TestStatsNotFound(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		_, err := s.Stats(context.Background(), "missing-guild")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPendingCounts(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		mustCreate(t, s, "guild-1", "user-1", "Primeiro#0001")
		mustCreate(t, s, "guild-1", "user-2", "Segundo#0002")
		decided := mustCreate(t, s, "guild-2", "user-3", "Terceiro#0003")
		mustCreate(t, s, "guild-2", "user-4", "Quarto#0004")

		admin := "admin-1"
		adminName := "Admin#1234"
		_, err := s.UpdateRequest(context.Background(), decided.ID, RequestPatch{
			Status:             models.StatusRejected,
			ApprovedBy:         &admin,
			ApprovedByUsername: &adminName,
		})
		require.NoError(t, err)

		counts, err := s.PendingCounts(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(2), counts["guild-1"])
		require.Equal(t, int64(1), counts["guild-2"])
	})
}

func TestStatsGuildIDs(t *testing.T) {
	withEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		ids, err := s.StatsGuildIDs(context.Background())
		require.NoError(t, err)
		require.Empty(t, ids)

		verified := "3"
		_, err = s.UpsertStats(context.Background(), "guild-2", StatsPatch{TotalVerified: &verified})
		require.NoError(t, err)
		_, err = s.UpsertStats(context.Background(), "guild-1", StatsPatch{})
		require.NoError(t, err)

		ids, err = s.StatsGuildIDs(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"guild-1", "guild-2"}, ids)
	})
}
