package models

type OrgType string

const (
	OrgTypeTV       OrgType = "tv"
	OrgTypeRadio    OrgType = "radio"
	OrgTypePress    OrgType = "press"
	OrgTypeWebMedia OrgType = "web_media"
	OrgTypeWebTV    OrgType = "web_tv"
)

type OrgStatus string

const (
	OrgStatusPending   OrgStatus = "pending"
	OrgStatusActive    OrgStatus = "active"
	OrgStatusInactive  OrgStatus = "inactive"
	OrgStatusSuspended OrgStatus = "suspended"
)

type Subscription string

const (
	SubscriptionFree       Subscription = "free"
	SubscriptionPremium    Subscription = "premium"
	SubscriptionEnterprise Subscription = "enterprise"
)

// MediaOrganization is a content-producing outlet (TV/radio/press/web)
// registered on the platform. Created with status=pending on signup and
// status-transitioned by moderation; never hard-deleted.
type MediaOrganization struct {
	Base
	Name        string    `gorm:"not null" json:"name"`
	Type        OrgType   `gorm:"not null" json:"type"`
	Description string    `json:"description,omitempty"`
	Status      OrgStatus `gorm:"not null;index;default:'pending'" json:"status"`

	// Responsible contact submitted at signup
	ContactName     string `gorm:"not null" json:"contact_name"`
	ContactEmail    string `gorm:"index;not null" json:"contact_email"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	ContactPosition string `json:"contact_position,omitempty"`

	Subscription Subscription `gorm:"not null;default:'free'" json:"subscription"`

	// StorageUsed must never exceed StorageLimit (bytes)
	StorageUsed  int64 `gorm:"default:0" json:"storage_used"`
	StorageLimit int64 `gorm:"default:10737418240" json:"storage_limit"`

	UploadCount   int `gorm:"default:0" json:"upload_count"`
	DownloadCount int `gorm:"default:0" json:"download_count"`

	// Optimistic concurrency token, bumped on every status transition
	Version int64 `gorm:"not null;default:1" json:"-"`

	// Relationships
	Users    []User    `gorm:"foreignKey:OrganizationID" json:"-"`
	Contents []Content `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (MediaOrganization) TableName() string {
	return "organizations"
}
