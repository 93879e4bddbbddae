package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/internal/store"
)

const (
	msgNotAdmin          = "❌ Você precisa ter permissões de administrador para configurar o bot."
	msgNotAdminDecision  = "❌ Você precisa ter permissões de administrador para aprovar ou rejeitar verificações."
	msgNotAdminCommand   = "Você precisa ser gurizão pra usar esse comando."
	msgGenericError      = "Ocorreu um erro ao processar sua solicitação."
	msgRequestNotFound   = "Solicitação de verificação não encontrada."
	msgAlreadyDecided    = "⚠️ Esta solicitação já foi decidida por outro administrador."
	msgNoMembersToRefer  = "Não foi possível encontrar membros disponíveis para indicação."
	msgReferrerPrompt    = "Selecione um membro existente que pode te indicar:"
	msgUnknownConfigKind = "❌ Tipo de configuração não reconhecido."
)

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "configurar" || len(data.Options) == 0 || data.Options[0].Name != "verificar" {
		return
	}

	if !isAdmin(i) {
		b.replyEphemeral(s, i, msgNotAdminCommand)
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{configPanelEmbed(guildIconURL(s, i.GuildID))},
			Components: []discordgo.MessageComponent{configPanelRow(i.GuildID)},
		},
	})
	if err != nil {
		b.logger.Warn("config panel reply failed", zap.Error(err))
	}
}

// handleVerifyClick offers the member a referrer picker built from the
// guild's member list.
func (b *Bot) handleVerifyClick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	requester := interactionUser(i)
	if requester == nil {
		return
	}

	members, err := s.GuildMembers(i.GuildID, "", 1000)
	if err != nil {
		b.logger.Warn("member list fetch failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		b.replyEphemeral(s, i, msgGenericError)
		return
	}

	options := referrerOptions(members, requester.ID)
	if len(options) == 0 {
		b.replyEphemeral(s, i, msgNoMembersToRefer)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msgReferrerPrompt,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							MenuType:    discordgo.StringSelectMenu,
							CustomID:    referrerSelectID(i.GuildID),
							Placeholder: "Selecione o membro que você conhece",
							Options:     options,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.logger.Warn("referrer picker reply failed", zap.Error(err))
	}
}

// handleReferrerSelected opens the verification request. The logs channel
// notification is delivered by the service's notifier.
func (b *Bot) handleReferrerSelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	requester := interactionUser(i)
	values := i.MessageComponentData().Values
	if requester == nil || len(values) == 0 {
		return
	}
	referrerID := values[0]

	referrer, err := s.GuildMember(i.GuildID, referrerID)
	if err != nil {
		b.logger.Warn("referrer lookup failed",
			zap.String("guild_id", i.GuildID),
			zap.String("referrer_id", referrerID),
			zap.Error(err))
		b.replyEphemeral(s, i, msgGenericError)
		return
	}
	referrerTag := formatUserTag(referrer.User)

	_, err = b.verifications.CreateRequest(context.Background(), store.CreateRequestInput{
		GuildID:          i.GuildID,
		UserID:           requester.ID,
		Username:         formatUserTag(requester),
		ReferrerID:       referrerID,
		ReferrerUsername: referrerTag,
	})
	if err != nil {
		b.logger.Error("request creation failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		b.replyEphemeral(s, i, msgGenericError)
		return
	}

	b.replyEphemeral(s, i, fmt.Sprintf(
		"✅ Sua solicitação de verificação foi enviada! Você foi indicado por **%s**. Aguarde a aprovação de um administrador.",
		referrerTag))
}

// handleDecision applies an approve or reject button press. When the request
// was already decided the buttons are stale; the moderator is told and the
// message is left as-is.
func (b *Bot) handleDecision(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	if !isAdmin(i) {
		b.replyEphemeral(s, i, msgNotAdminDecision)
		return
	}

	status, requestID, ok := parseDecisionID(customID)
	if !ok {
		return
	}

	moderator := interactionUser(i)
	decided, err := b.verifications.Decide(context.Background(), requestID, services.Decision{
		Status:            status,
		ModeratorID:       moderator.ID,
		ModeratorUsername: formatUserTag(moderator),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			b.replyEphemeral(s, i, msgRequestNotFound)
		case errors.Is(err, services.ErrAlreadyDecided):
			b.replyEphemeral(s, i, msgAlreadyDecided)
		default:
			b.logger.Error("decision failed", zap.String("request_id", requestID), zap.Error(err))
			b.replyEphemeral(s, i, msgGenericError)
		}
		return
	}

	var original *discordgo.MessageEmbed
	if i.Message != nil && len(i.Message.Embeds) > 0 {
		original = i.Message.Embeds[0]
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{decisionEmbed(original, decided.Status, formatUserTag(moderator))},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		b.logger.Warn("decision message update failed", zap.String("request_id", requestID), zap.Error(err))
	}
}

func (b *Bot) handleConfigButton(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	if !isAdmin(i) {
		b.replyEphemeral(s, i, msgNotAdmin)
		return
	}

	kind, ok := parseConfigButtonID(customID)
	if !ok {
		return
	}

	switch kind {
	case "channel":
		b.replyChannelSelect(s, i, customIDVerificationChannelSelect,
			"Selecione o canal de verificação",
			"📝 Selecione o canal onde será exibida a mensagem de verificação:")
	case "role":
		b.replyRoleSelect(s, i)
	case "embed":
		b.showEmbedModal(s, i)
	case "logs":
		b.replyChannelSelect(s, i, customIDLogsChannelSelect,
			"Selecione o canal de logs",
			"📋 Selecione o canal onde serão enviadas as notificações de verificação para os administradores:")
	default:
		b.replyEphemeral(s, i, msgUnknownConfigKind)
	}
}

func (b *Bot) replyChannelSelect(s *discordgo.Session, i *discordgo.InteractionCreate, customID, placeholder, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							MenuType:     discordgo.ChannelSelectMenu,
							CustomID:     customID,
							Placeholder:  placeholder,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.logger.Warn("channel select reply failed", zap.Error(err))
	}
}

func (b *Bot) replyRoleSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "🏷️ Selecione o cargo que será aplicado aos membros verificados:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							MenuType:    discordgo.RoleSelectMenu,
							CustomID:    customIDVerificationRoleSelect,
							Placeholder: "Selecione o cargo de verificado",
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.logger.Warn("role select reply failed", zap.Error(err))
	}
}

func (b *Bot) showEmbedModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customIDEmbedModal,
			Title:    "Configurar Embed de Verificação",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    modalFieldEmbedTitle,
							Label:       "Título da Embed",
							Style:       discordgo.TextInputShort,
							Placeholder: models.DefaultEmbedTitle,
							Value:       models.DefaultEmbedTitle,
							Required:    true,
							MaxLength:   256,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    modalFieldEmbedDescription,
							Label:       "Descrição da Embed",
							Style:       discordgo.TextInputParagraph,
							Placeholder: models.DefaultEmbedDescription,
							Value:       models.DefaultEmbedDescription,
							Required:    true,
							MaxLength:   4000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.logger.Warn("embed modal reply failed", zap.Error(err))
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.replyEphemeral(s, i, msgNotAdmin)
		return
	}

	data := i.ModalSubmitData()
	if data.CustomID != customIDEmbedModal {
		return
	}

	title := modalInputValue(data, modalFieldEmbedTitle)
	description := modalInputValue(data, modalFieldEmbedDescription)
	if title == "" || description == "" {
		b.replyEphemeral(s, i, "❌ Erro ao salvar configuração da embed.")
		return
	}

	_, err := b.configs.Upsert(context.Background(), i.GuildID, store.GuildConfigPatch{
		EmbedTitle:       &title,
		EmbedDescription: &description,
	})
	if err != nil {
		b.logger.Error("embed config update failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		b.replyEphemeral(s, i, "❌ Erro ao salvar configuração da embed.")
		return
	}

	b.replyEphemeral(s, i, fmt.Sprintf(
		"✅ Embed personalizada configurada com sucesso!\n\n**Título:** %s\n**Descrição:** %s",
		title, description))
}

func (b *Bot) handleChannelSelected(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	if !isAdmin(i) {
		b.replyEphemeral(s, i, msgNotAdmin)
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	channelID := values[0]

	var patch store.GuildConfigPatch
	var confirmation string
	if customID == customIDVerificationChannelSelect {
		patch.VerificationChannelID = &channelID
		confirmation = fmt.Sprintf("✅ Canal de verificação configurado para: <#%s>", channelID)
	} else {
		patch.LogsChannelID = &channelID
		confirmation = fmt.Sprintf("✅ Canal de logs configurado para: <#%s>", channelID)
	}

	config, err := b.configs.Upsert(context.Background(), i.GuildID, patch)
	if err != nil {
		b.logger.Error("channel config update failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		b.replyEphemeral(s, i, "❌ Erro ao salvar configuração de canal.")
		return
	}

	b.replyEphemeral(s, i, confirmation)

	if customID == customIDVerificationChannelSelect {
		b.postVerificationEmbed(s, i.GuildID, channelID, config)
	}
}

// postVerificationEmbed publishes the public verification message with the
// verify button into the configured channel.
func (b *Bot) postVerificationEmbed(s *discordgo.Session, guildID, channelID string, config *models.GuildConfig) {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{verificationEmbed(config, guildIconURL(s, guildID))},
		Components: []discordgo.MessageComponent{verifyButtonRow()},
	})
	if err != nil {
		b.logger.Warn("verification embed post failed",
			zap.String("guild_id", guildID),
			zap.String("channel_id", channelID),
			zap.Error(err))
	}
}

func (b *Bot) handleRoleSelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.replyEphemeral(s, i, msgNotAdmin)
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	roleID := values[0]

	_, err := b.configs.Upsert(context.Background(), i.GuildID, store.GuildConfigPatch{
		VerificationRoleID: &roleID,
	})
	if err != nil {
		b.logger.Error("role config update failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		b.replyEphemeral(s, i, "❌ Erro ao salvar configuração de cargo.")
		return
	}

	b.replyEphemeral(s, i, fmt.Sprintf("✅ Cargo de verificação configurado para: <@&%s>", roleID))
}

func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
