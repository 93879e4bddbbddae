package models

// Default embed copy shown in the verification panel when a guild has not
// customised it.
const (
	DefaultEmbedTitle       = "🔐 Sistema de Verificação"
	DefaultEmbedDescription = "Bem-vindo ao servidor! Para ter acesso completo, você precisa ser verificado por um membro existente."
)

// GuildConfig stores per-guild verification settings. At most one row exists
// per guild; channel and role fields stay null until an administrator picks
// them, and partial updates never clear fields the caller did not mention.
type GuildConfig struct {
	BaseModel

	GuildID               string  `gorm:"not null;uniqueIndex" json:"guild_id"`
	VerificationChannelID *string `json:"verification_channel_id"`
	VerificationRoleID    *string `json:"verification_role_id"`
	LogsChannelID         *string `json:"logs_channel_id"`
	EmbedTitle            string  `gorm:"type:text" json:"embed_title"`
	EmbedDescription      string  `gorm:"type:text" json:"embed_description"`
}
