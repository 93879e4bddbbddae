package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gurizes/gatewarden/internal/models"
)

func TestVerificationEmbedUsesConfiguredCopy(t *testing.T) {
	embed := verificationEmbed(&models.GuildConfig{
		EmbedTitle:       "Título Custom",
		EmbedDescription: "Descrição custom.",
	}, "https://cdn.example/icon.png")

	require.Equal(t, "Título Custom", embed.Title)
	require.Equal(t, "Descrição custom.", embed.Description)
	require.Equal(t, embedFooterText, embed.Footer.Text)
	require.NotNil(t, embed.Thumbnail)
	require.Equal(t, "https://cdn.example/icon.png", embed.Thumbnail.URL)
}

func TestVerificationEmbedFallsBackToDefaults(t *testing.T) {
	embed := verificationEmbed(nil, "")

	require.Equal(t, models.DefaultEmbedTitle, embed.Title)
	require.Equal(t, models.DefaultEmbedDescription, embed.Description)
	require.Nil(t, embed.Thumbnail)
	require.Len(t, embed.Fields, 1)
	require.Equal(t, "Como funciona:", embed.Fields[0].Name)
}

func TestAdminNotificationEmbedFields(t *testing.T) {
	request := &models.VerificationRequest{
		GuildID:          "guild-1",
		UserID:           "user-1",
		Username:         "NovoUsuario#5678",
		ReferrerID:       "referrer-1",
		ReferrerUsername: "Veterano#1111",
	}
	request.CreatedAt = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	embed := adminNotificationEmbed(request, "")

	require.Equal(t, "⚠️ Nova Solicitação de Verificação", embed.Title)
	require.Contains(t, embed.Description, "<@user-1>")
	require.Contains(t, embed.Description, "<@referrer-1>")
	require.Len(t, embed.Fields, 4)
	require.Equal(t, "NovoUsuario#5678", embed.Fields[0].Value)
	require.Equal(t, "Veterano#1111", embed.Fields[1].Value)
	require.Equal(t, "15/06/2024", embed.Fields[2].Value)
	require.Equal(t, "user-1", embed.Fields[3].Value)
}

func TestDecisionEmbed(t *testing.T) {
	original := adminNotificationEmbed(&models.VerificationRequest{
		UserID:           "user-1",
		Username:         "NovoUsuario#5678",
		ReferrerID:       "referrer-1",
		ReferrerUsername: "Veterano#1111",
	}, "")

	approved := decisionEmbed(original, models.StatusApproved, "Admin#1234")
	require.Equal(t, "✅ Verificação Aprovada", approved.Title)
	require.Equal(t, colorApproved, approved.Color)
	last := approved.Fields[len(approved.Fields)-1]
	require.Equal(t, "Aprovado por", last.Name)
	require.Equal(t, "Admin#1234", last.Value)

	rejected := decisionEmbed(nil, models.StatusRejected, "Admin#1234")
	require.Equal(t, "❌ Verificação Negada", rejected.Title)
	require.Equal(t, colorRejected, rejected.Color)
	require.Equal(t, "Negado por", rejected.Fields[len(rejected.Fields)-1].Name)
}

func TestDecisionDM(t *testing.T) {
	require.Contains(t, decisionDM(models.StatusApproved), "aprovada")
	require.Contains(t, decisionDM(models.StatusRejected), "negada")
}
