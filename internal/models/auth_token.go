package models

import "time"

// AuthToken is an API token presented as "Authorization: Token <key>".
type AuthToken struct {
	Key       string    `gorm:"type:varchar(40);primarykey" json:"key"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Expired reports whether the token is no longer usable at now.
func (t *AuthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
