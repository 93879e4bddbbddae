package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/gurizes/gatewarden/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GuildConfig{},
		&models.VerificationRequest{},
		&models.VerificationStats{},
	)
}

// DemoGuildID identifies the guild seeded for the dashboard preview.
const DemoGuildID = "demo-server-123"

// SeedDemoData installs the demo guild used by the dashboard preview: a
// fully configured guild, aggregate counters, and a small request history.
// Seeding is idempotent; existing rows are left untouched.
func SeedDemoData(db *gorm.DB) error {
	verificationChannel := "verification-channel-123"
	verifiedRole := "verified-role-123"
	logsChannel := "logs-channel-123"

	config := models.GuildConfig{
		GuildID:               DemoGuildID,
		VerificationChannelID: &verificationChannel,
		VerificationRoleID:    &verifiedRole,
		LogsChannelID:         &logsChannel,
		EmbedTitle:            models.DefaultEmbedTitle,
		EmbedDescription:      models.DefaultEmbedDescription,
	}
	if err := db.Where(models.GuildConfig{GuildID: DemoGuildID}).
		Attrs(config).
		FirstOrCreate(&models.GuildConfig{}).Error; err != nil {
		return err
	}

	stats := models.VerificationStats{
		GuildID:       DemoGuildID,
		TotalVerified: "247",
		TotalPending:  "8",
		TotalRejected: "12",
	}
	if err := db.Where(models.VerificationStats{GuildID: DemoGuildID}).
		Attrs(stats).
		FirstOrCreate(&models.VerificationStats{}).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	approvedBy := "admin-123"
	approvedByUsername := "Admin#1234"

	samples := []models.VerificationRequest{
		{
			BaseModel: models.BaseModel{
				ID:        "demo-request-approved",
				CreatedAt: now.Add(-2 * time.Minute),
				UpdatedAt: now.Add(-2 * time.Minute),
			},
			GuildID:            DemoGuildID,
			UserID:             "user-123",
			Username:           "NovoUsuario#5678",
			ReferrerID:         "referrer-123",
			ReferrerUsername:   "Veterano#1111",
			Status:             models.StatusApproved,
			ApprovedBy:         &approvedBy,
			ApprovedByUsername: &approvedByUsername,
		},
		{
			BaseModel: models.BaseModel{
				ID:        "demo-request-pending",
				CreatedAt: now.Add(-15 * time.Minute),
				UpdatedAt: now.Add(-15 * time.Minute),
			},
			GuildID:          DemoGuildID,
			UserID:           "user-456",
			Username:         "OutroMembro#9999",
			ReferrerID:       "referrer-456",
			ReferrerUsername: "Veterano#1111",
			Status:           models.StatusPending,
		},
	}

	for _, sample := range samples {
		if err := db.Where(models.VerificationRequest{BaseModel: models.BaseModel{ID: sample.ID}}).
			Attrs(sample).
			FirstOrCreate(&models.VerificationRequest{}).Error; err != nil {
			return err
		}
	}

	return nil
}
