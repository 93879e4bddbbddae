package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/pkg/logger"
)

// NewSession builds a Discord gateway session with the guild intent. The
// session is shared between the interaction handlers and the notifier.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("bot: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// Bot wires Discord interactions to the verification services: the slash
// command opens the admin configuration panel, buttons and select menus
// drive the request lifecycle.
type Bot struct {
	session       *discordgo.Session
	verifications *services.VerificationService
	configs       *services.GuildConfigService
	logger        *zap.Logger
}

// New registers the interaction handlers on the session.
func New(session *discordgo.Session, verifications *services.VerificationService, configs *services.GuildConfigService) *Bot {
	b := &Bot{
		session:       session,
		verifications: verifications,
		configs:       configs,
		logger:        logger.WithModule("bot"),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b
}

// Start opens the gateway connection. Slash commands are registered once
// the ready event arrives.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("bot: open gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord bot logged in",
		zap.String("username", formatUserTag(r.User)))

	adminOnly := int64(discordgo.PermissionAdministrator)
	_, err := s.ApplicationCommandCreate(r.User.ID, "", &discordgo.ApplicationCommand{
		Name:                     "configurar",
		Description:              "Configurar o sistema de verificação",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "verificar",
				Description: "Configurar as opções de verificação",
			},
		},
	})
	if err != nil {
		b.logger.Error("slash command registration failed", zap.Error(err))
		return
	}
	b.logger.Info("slash commands registered")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch {
	case customID == customIDVerifyUser:
		b.handleVerifyClick(s, i)
	case customID == customIDVerificationChannelSelect, customID == customIDLogsChannelSelect:
		b.handleChannelSelected(s, i, customID)
	case customID == customIDVerificationRoleSelect:
		b.handleRoleSelected(s, i)
	case isDecisionID(customID):
		b.handleDecision(s, i, customID)
	case strings.HasPrefix(customID, customIDReferrerPrefix):
		b.handleReferrerSelected(s, i)
	case strings.HasPrefix(customID, customIDConfigPrefix):
		b.handleConfigButton(s, i, customID)
	}
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func guildIconURL(s *discordgo.Session, guildID string) string {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil || guild.Icon == "" {
		return ""
	}
	return discordgo.EndpointGuildIcon(guildID, guild.Icon)
}

func (b *Bot) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction reply failed", zap.Error(err))
	}
}
