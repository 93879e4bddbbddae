package store

import (
	"context"
	"fmt"

	"github.com/gurizes/gatewarden/internal/models"
)

// DemoGuildID identifies the guild seeded for the dashboard preview when
// running on the in-memory store.
const DemoGuildID = "demo-server-123"

// SeedDemoData populates a fresh store with the demo guild: a configured
// guild, aggregate counters, and a small request history. Intended for the
// memory driver, which starts empty on every boot.
func SeedDemoData(ctx context.Context, st Store) error {
	verificationChannel := "verification-channel-123"
	verifiedRole := "verified-role-123"
	logsChannel := "logs-channel-123"

	_, err := st.UpsertGuildConfig(ctx, DemoGuildID, GuildConfigPatch{
		VerificationChannelID: &verificationChannel,
		VerificationRoleID:    &verifiedRole,
		LogsChannelID:         &logsChannel,
	})
	if err != nil {
		return fmt.Errorf("seed demo config: %w", err)
	}

	verified, pending, rejected := "247", "8", "12"
	_, err = st.UpsertStats(ctx, DemoGuildID, StatsPatch{
		TotalVerified: &verified,
		TotalPending:  &pending,
		TotalRejected: &rejected,
	})
	if err != nil {
		return fmt.Errorf("seed demo stats: %w", err)
	}

	approved, err := st.CreateRequest(ctx, CreateRequestInput{
		GuildID:          DemoGuildID,
		UserID:           "user-123",
		Username:         "NovoUsuario#5678",
		ReferrerID:       "referrer-123",
		ReferrerUsername: "Veterano#1111",
	})
	if err != nil {
		return fmt.Errorf("seed demo request: %w", err)
	}

	approvedBy := "admin-123"
	approvedByUsername := "Admin#1234"
	_, err = st.UpdateRequest(ctx, approved.ID, RequestPatch{
		Status:             models.StatusApproved,
		ApprovedBy:         &approvedBy,
		ApprovedByUsername: &approvedByUsername,
	})
	if err != nil {
		return fmt.Errorf("seed demo decision: %w", err)
	}

	_, err = st.CreateRequest(ctx, CreateRequestInput{
		GuildID:          DemoGuildID,
		UserID:           "user-456",
		Username:         "OutroMembro#9999",
		ReferrerID:       "referrer-456",
		ReferrerUsername: "Veterano#1111",
	})
	if err != nil {
		return fmt.Errorf("seed demo request: %w", err)
	}

	return nil
}
