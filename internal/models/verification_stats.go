package models

// VerificationStats keeps per-guild aggregate counters for the dashboard.
// The counters are opaque strings maintained independently of the request
// table; nothing reconciles the two automatically.
type VerificationStats struct {
	BaseModel

	GuildID       string `gorm:"not null;uniqueIndex" json:"guild_id"`
	TotalVerified string `gorm:"not null;default:'0'" json:"total_verified"`
	TotalPending  string `gorm:"not null;default:'0'" json:"total_pending"`
	TotalRejected string `gorm:"not null;default:'0'" json:"total_rejected"`
}
