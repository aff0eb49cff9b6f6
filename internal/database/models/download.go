package models

import "github.com/google/uuid"

// Download records a granted download of a content item.
type Download struct {
	Base
	ContentID      uuid.UUID `gorm:"type:uuid;index;not null" json:"content_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Format         string    `json:"format,omitempty"`
	Purpose        string    `json:"purpose,omitempty"`

	// Relationships
	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

func (Download) TableName() string {
	return "downloads"
}
