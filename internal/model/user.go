package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleLawyer    = "lawyer"
	RoleParalegal = "paralegal"
	RoleAdmin     = "admin"
)

// User belongs to exactly one organization. Email uniqueness is global, not
// per-tenant: one address cannot be registered under two organizations.
type User struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	Email          string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName       string     `gorm:"size:255;not null" json:"full_name"`
	OrganizationID string     `gorm:"type:char(36);not null;index" json:"organization_id"`
	Role           string     `gorm:"size:32;not null;default:lawyer" json:"role"`
	PasswordHash   string     `gorm:"size:255" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
