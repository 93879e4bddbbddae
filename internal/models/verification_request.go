package models

// RequestStatus enumerates the lifecycle states of a verification request.
type RequestStatus string

// Request lifecycle: pending until an administrator approves or rejects.
const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decided reports whether the status is terminal.
func (s RequestStatus) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// VerificationRequest records one prospective member asking an existing
// member (the referrer) to vouch for them in one guild. Requests are kept
// indefinitely; decided requests feed the recent-activity feed.
type VerificationRequest struct {
	BaseModel

	GuildID          string        `gorm:"not null;index" json:"guild_id"`
	UserID           string        `gorm:"not null;index" json:"user_id"`
	Username         string        `gorm:"not null" json:"username"`
	ReferrerID       string        `gorm:"not null" json:"referrer_id"`
	ReferrerUsername string        `gorm:"not null" json:"referrer_username"`
	Status           RequestStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	ApprovedBy         *string `json:"approved_by"`
	ApprovedByUsername *string `json:"approved_by_username"`
}
