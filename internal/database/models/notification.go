package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationTypeApproval NotificationType = "approval"
	NotificationTypeDownload NotificationType = "download"
	NotificationTypeSystem   NotificationType = "system"
)

// Notification is an in-app message delivered to a single user.
type Notification struct {
	Base
	UserID  uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type    NotificationType `gorm:"not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `json:"message,omitempty"`
	Read    bool             `gorm:"default:false;index" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
