package models

import "github.com/google/uuid"

type ContentType string

const (
	ContentTypeVideo    ContentType = "video"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeDocument ContentType = "document"
	ContentTypeAd       ContentType = "ad"
)

type License string

const (
	LicenseFree    License = "free"
	LicensePaid    License = "paid"
	LicensePrivate License = "private"
	LicensePublic  License = "public"
)

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
	ContentStatusFlagged   ContentStatus = "flagged"
)

// Content is a media item owned by exactly one organization and attributed
// to the user who registered it. Starts as draft and moves through the
// moderation lifecycle from there.
type Content struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	UploaderID     uuid.UUID `gorm:"type:uuid;index;not null" json:"uploader_id"`

	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	Type        ContentType   `gorm:"not null;index" json:"type"`
	Format      string        `json:"format,omitempty"` // mp4, mp3, pdf, ...
	FileSize    int64         `json:"file_size"`
	Duration    int           `json:"duration,omitempty"` // seconds, video/audio only
	Language    string        `json:"language,omitempty"`
	License     License       `gorm:"not null;default:'private'" json:"license"`
	Status      ContentStatus `gorm:"not null;index;default:'draft'" json:"status"`

	Tags       []string `gorm:"serializer:json" json:"tags,omitempty"`
	Categories []string `gorm:"serializer:json" json:"categories,omitempty"`

	Downloads   int     `gorm:"default:0" json:"downloads"`
	Views       int     `gorm:"default:0" json:"views"`
	Rating      float64 `gorm:"default:0" json:"rating"` // 0-5
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	// Object store key for download grant signing
	ObjectKey string `json:"-"`

	// Optimistic concurrency token, bumped on every status transition
	Version int64 `gorm:"not null;default:1" json:"-"`

	// Relationships
	Organization *MediaOrganization `gorm:"foreignKey:OrganizationID" json:"-"`
	Uploader     *User              `gorm:"foreignKey:UploaderID" json:"-"`
}

func (Content) TableName() string {
	return "contents"
}
