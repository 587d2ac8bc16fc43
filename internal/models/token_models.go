package models

import (
	"time"
)

// ResetToken stores only the SHA-256 of the emailed reset token. Lookup is by
// hash (indexed), the plaintext never touches the database.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// RefreshSession is one live refresh token for one device. A user may hold
// several at once; logout or admin deletion revokes them individually.
type RefreshSession struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	TokenHash  string    `gorm:"uniqueIndex" json:"-"`
	DeviceInfo string    `gorm:"size:255" json:"device_info"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	Revoked    bool      `gorm:"default:false" json:"revoked"`
}
