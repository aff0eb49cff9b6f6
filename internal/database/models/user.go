package models

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User belongs to exactly one media organization, except platform-level
// admins which carry no organization. Users are deactivated, never deleted.
type User struct {
	Base
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	Name           string     `json:"name"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	Role           string     `gorm:"not null;default:'viewer'" json:"role"` // admin, moderator, editor, viewer
	Status         UserStatus `gorm:"not null;index;default:'active'" json:"status"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Organization *MediaOrganization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (User) TableName() string {
	return "users"
}
