package models

import (
	"time"
)

// Role rows form a closed set seeded at startup (see role.SeedDefaultRoles):
// operateur, technicien, magasinier, responsable, admin.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
