package models

import (
	"time"
)

// RefreshToken represents a JWT refresh token in the database
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	// Define the relationship to User
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Revoke marks the token as revoked and expires it immediately.
func (t *RefreshToken) Revoke() {
	t.IsRevoked = true
	t.ExpiresAt = time.Now()
}

// Usable reports whether the token can still be exchanged for a new pair.
func (t *RefreshToken) Usable() bool {
	return !t.IsRevoked && t.ExpiresAt.After(time.Now())
}
