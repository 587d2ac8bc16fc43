package models

import (
	"time"
)

// User is never soft-deleted: removing an account is a hard delete that also
// drops its refresh sessions and profile image.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nom          string    `gorm:"size:100" json:"nom"`
	Prenom       string    `gorm:"size:100" json:"prenom"`
	Email        string    `gorm:"uniqueIndex;size:100" json:"email"`
	Password     string    `gorm:"size:255" json:"-"`
	Provider     string    `gorm:"size:50;default:'local'" json:"provider"`
	RoleID       uint      `json:"role_id"`
	Role         *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"role,omitempty"`
	IsApproved   bool      `gorm:"default:false" json:"is_approved"`
	ApprovalCode string    `gorm:"size:6" json:"-"`
	Profile      string    `json:"profile,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
