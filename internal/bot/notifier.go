package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/pkg/logger"
)

// Notifier delivers the Discord side effects of the request lifecycle over
// a shared gateway session. It satisfies the verification service's
// notifier contract.
type Notifier struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// NewNotifier creates a notifier on the shared session.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		logger:  logger.WithModule("bot.notifier"),
	}
}

// RequestOpened posts the moderation embed with approve and reject buttons
// into the guild's logs channel. Guilds without a logs channel get no
// notification.
func (n *Notifier) RequestOpened(ctx context.Context, request *models.VerificationRequest, config *models.GuildConfig) error {
	if config == nil || config.LogsChannelID == nil || *config.LogsChannelID == "" {
		return nil
	}

	_, err := n.session.ChannelMessageSendComplex(*config.LogsChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{adminNotificationEmbed(request, guildIconURL(n.session, request.GuildID))},
		Components: []discordgo.MessageComponent{decisionRow(request.ID)},
	})
	if err != nil {
		return fmt.Errorf("post admin notification: %w", err)
	}
	return nil
}

// RequestDecided grants the configured role on approval and sends the member
// a direct message with the outcome. The role grant failing does not stop
// the DM; both failures surface in the returned error.
func (n *Notifier) RequestDecided(ctx context.Context, request *models.VerificationRequest, config *models.GuildConfig) error {
	var roleErr error
	if request.Status == models.StatusApproved {
		roleErr = n.grantRole(request, config)
	}

	if err := n.sendDecisionDM(request); err != nil {
		if roleErr != nil {
			return fmt.Errorf("%w; %w", roleErr, err)
		}
		return err
	}
	return roleErr
}

func (n *Notifier) grantRole(request *models.VerificationRequest, config *models.GuildConfig) error {
	if config == nil || config.VerificationRoleID == nil || *config.VerificationRoleID == "" {
		return nil
	}

	err := n.session.GuildMemberRoleAdd(request.GuildID, request.UserID, *config.VerificationRoleID)
	if err != nil {
		return fmt.Errorf("grant verification role: %w", err)
	}
	n.logger.Info("verification role granted",
		zap.String("guild_id", request.GuildID),
		zap.String("user_id", request.UserID),
		zap.String("role_id", *config.VerificationRoleID))
	return nil
}

func (n *Notifier) sendDecisionDM(request *models.VerificationRequest) error {
	channel, err := n.session.UserChannelCreate(request.UserID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, decisionDM(request.Status)); err != nil {
		return fmt.Errorf("send decision dm: %w", err)
	}
	return nil
}
