package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/gurizes/gatewarden/internal/models"
)

const (
	embedFooterText = "Bot oficial da Gurizes - cpxd"

	colorNeutral  = 0x000000
	colorApproved = 0x00ff00
	colorRejected = 0xff0000
)

const howItWorksField = "1. Clique no botão 'Verificar' abaixo\n" +
	"2. Selecione um membro que você conhece no servidor\n" +
	"3. Aguarde a aprovação de um administrador\n" +
	"4. Após aprovado, você receberá acesso completo!"

func embedFooter() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: embedFooterText}
}

func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// verificationEmbed is the public message pinned in the verification channel,
// with the configurable title and description.
func verificationEmbed(config *models.GuildConfig, iconURL string) *discordgo.MessageEmbed {
	title := models.DefaultEmbedTitle
	description := models.DefaultEmbedDescription
	if config != nil {
		if config.EmbedTitle != "" {
			title = config.EmbedTitle
		}
		if config.EmbedDescription != "" {
			description = config.EmbedDescription
		}
	}

	return &discordgo.MessageEmbed{
		Color:       colorNeutral,
		Title:       title,
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Como funciona:", Value: howItWorksField},
		},
		Thumbnail: embedThumbnail(iconURL),
		Footer:    embedFooter(),
		Timestamp: timestampNow(),
	}
}

// configPanelEmbed heads the admin configuration panel.
func configPanelEmbed(iconURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       colorNeutral,
		Title:       "🔧 Configuração de Verificação",
		Description: "Configure as opções de verificação para novos membros do servidor.",
		Thumbnail:   embedThumbnail(iconURL),
		Footer:      embedFooter(),
		Timestamp:   timestampNow(),
	}
}

// adminNotificationEmbed announces a new request in the logs channel.
func adminNotificationEmbed(request *models.VerificationRequest, iconURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: colorNeutral,
		Title: "⚠️ Nova Solicitação de Verificação",
		Description: fmt.Sprintf("<@%s> solicitou verificação e foi indicado por <@%s>",
			request.UserID, request.ReferrerID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usuário", Value: request.Username, Inline: true},
			{Name: "Indicado por", Value: request.ReferrerUsername, Inline: true},
			{Name: "Data de entrada", Value: request.CreatedAt.Format("02/01/2006"), Inline: true},
			{Name: "ID do usuário", Value: request.UserID},
		},
		Thumbnail: embedThumbnail(iconURL),
		Footer:    embedFooter(),
		Timestamp: timestampNow(),
	}
}

// decisionEmbed rewrites the notification embed after a moderator ruling.
func decisionEmbed(original *discordgo.MessageEmbed, status models.RequestStatus, moderatorUsername string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{}
	if original != nil {
		clone := *original
		embed = &clone
	}

	if status == models.StatusApproved {
		embed.Color = colorApproved
		embed.Title = "✅ Verificação Aprovada"
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Aprovado por", Value: moderatorUsername, Inline: true,
		})
	} else {
		embed.Color = colorRejected
		embed.Title = "❌ Verificação Negada"
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Negado por", Value: moderatorUsername, Inline: true,
		})
	}
	return embed
}

func embedThumbnail(iconURL string) *discordgo.MessageEmbedThumbnail {
	if iconURL == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: iconURL}
}

// decisionDM is the direct message sent to the member after a ruling.
func decisionDM(status models.RequestStatus) string {
	if status == models.StatusApproved {
		return "✅ Sua verificação foi aprovada! Você agora tem acesso completo ao servidor."
	}
	return "❌ Sua verificação foi negada. Entre em contato com a administração para mais informações."
}
