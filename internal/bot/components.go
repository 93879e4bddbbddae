package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/gurizes/gatewarden/internal/models"
)

// Component custom ids. The decision and referrer ids carry a suffix; the
// rest are fixed.
const (
	customIDVerifyUser = "verify_user"

	customIDReferrerPrefix = "select_referrer_"
	customIDApprovePrefix  = "approve_"
	customIDRejectPrefix   = "reject_"
	customIDConfigPrefix   = "config_"

	customIDVerificationChannelSelect = "select_verification_channel"
	customIDLogsChannelSelect         = "select_logs_channel"
	customIDVerificationRoleSelect    = "select_verification_role"
	customIDEmbedModal                = "config_embed_modal"

	modalFieldEmbedTitle       = "embed_title"
	modalFieldEmbedDescription = "embed_description"
)

// selectMenuMemberLimit is Discord's cap on select menu options.
const selectMenuMemberLimit = 25

func referrerSelectID(guildID string) string {
	return customIDReferrerPrefix + guildID
}

func approveID(requestID string) string {
	return customIDApprovePrefix + requestID
}

func rejectID(requestID string) string {
	return customIDRejectPrefix + requestID
}

func configButtonID(kind, guildID string) string {
	return customIDConfigPrefix + kind + "_" + guildID
}

func isDecisionID(customID string) bool {
	return strings.HasPrefix(customID, customIDApprovePrefix) ||
		strings.HasPrefix(customID, customIDRejectPrefix)
}

// parseDecisionID maps an approve/reject button id to the resulting status
// and the request it targets.
func parseDecisionID(customID string) (models.RequestStatus, string, bool) {
	if requestID, ok := strings.CutPrefix(customID, customIDApprovePrefix); ok && requestID != "" {
		return models.StatusApproved, requestID, true
	}
	if requestID, ok := strings.CutPrefix(customID, customIDRejectPrefix); ok && requestID != "" {
		return models.StatusRejected, requestID, true
	}
	return "", "", false
}

// parseConfigButtonID extracts the config kind (channel, role, embed, logs)
// from a config panel button id.
func parseConfigButtonID(customID string) (string, bool) {
	rest, ok := strings.CutPrefix(customID, customIDConfigPrefix)
	if !ok {
		return "", false
	}
	kind, _, found := strings.Cut(rest, "_")
	if !found || kind == "" {
		return "", false
	}
	return kind, true
}

// formatUserTag renders the legacy name#discriminator form, falling back to
// the plain username for accounts migrated off discriminators.
func formatUserTag(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}
	return user.Username + "#" + user.Discriminator
}

// verifyButtonRow holds the single button under the verification embed.
func verifyButtonRow() discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: customIDVerifyUser,
				Label:    "🔐 Verificar",
				Style:    discordgo.SuccessButton,
			},
		},
	}
}

// configPanelRow holds the four configuration buttons.
func configPanelRow(guildID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: configButtonID("channel", guildID),
				Label:    "Configurar Canal",
				Emoji:    &discordgo.ComponentEmoji{Name: "📝"},
				Style:    discordgo.PrimaryButton,
			},
			discordgo.Button{
				CustomID: configButtonID("role", guildID),
				Label:    "Configurar Cargo",
				Emoji:    &discordgo.ComponentEmoji{Name: "🏷️"},
				Style:    discordgo.SuccessButton,
			},
			discordgo.Button{
				CustomID: configButtonID("embed", guildID),
				Label:    "Configurar Embed",
				Emoji:    &discordgo.ComponentEmoji{Name: "✏️"},
				Style:    discordgo.SecondaryButton,
			},
			discordgo.Button{
				CustomID: configButtonID("logs", guildID),
				Label:    "Configurar Logs",
				Emoji:    &discordgo.ComponentEmoji{Name: "📋"},
				Style:    discordgo.SecondaryButton,
			},
		},
	}
}

// decisionRow holds the approve and reject buttons under an admin
// notification.
func decisionRow(requestID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: approveID(requestID),
				Label:    "Aprovar",
				Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				Style:    discordgo.SuccessButton,
			},
			discordgo.Button{
				CustomID: rejectID(requestID),
				Label:    "Negar",
				Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				Style:    discordgo.DangerButton,
			},
		},
	}
}

// referrerOptions builds the member select options, excluding bots and the
// requesting member, capped at Discord's option limit.
func referrerOptions(members []*discordgo.Member, requesterID string) []discordgo.SelectMenuOption {
	options := make([]discordgo.SelectMenuOption, 0, selectMenuMemberLimit)
	for _, member := range members {
		if member.User == nil || member.User.Bot || member.User.ID == requesterID {
			continue
		}
		label := member.Nick
		if label == "" {
			label = member.User.Username
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       label,
			Description: "@" + member.User.Username,
			Value:       member.User.ID,
		})
		if len(options) == selectMenuMemberLimit {
			break
		}
	}
	return options
}
