// Package stats aggregates platform-wide figures for the admin dashboard.
// Results are cached in redis; the worker's rollup task refreshes them.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const cacheKey = "mediahub:stats:platform"

type Contributor struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	UploadCount    int       `json:"upload_count"`
}

type TopDownload struct {
	ContentID uuid.UUID `json:"content_id"`
	Title     string    `json:"title"`
	Downloads int       `json:"downloads"`
}

type PlatformStats struct {
	TotalOrganizations   int64            `json:"total_organizations"`
	ActiveOrganizations  int64            `json:"active_organizations"`
	PendingOrganizations int64            `json:"pending_organizations"`
	TotalContent         int64            `json:"total_content"`
	TotalDownloads       int64            `json:"total_downloads"`
	TotalStorageUsed     int64            `json:"total_storage_used"`
	ContentByType        map[string]int64 `json:"content_by_type"`
	TopContributors      []Contributor    `json:"top_contributors"`
	TopDownloads         []TopDownload    `json:"top_downloads"`
	ComputedAt           time.Time        `json:"computed_at"`
}

type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds a stats service. redis may be nil; caching then degrades
// to computing on every call.
func NewService(db *gorm.DB, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{db: db, redis: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached stats, computing and caching on a miss.
func (s *Service) Get(ctx context.Context) (*PlatformStats, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached PlatformStats
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the stats and stores them in the cache.
func (s *Service) Refresh(ctx context.Context) (*PlatformStats, error) {
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, err := json.Marshal(stats)
		if err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
				s.logger.Warn("caching platform stats failed", "error", err)
			}
		}
	}

	return stats, nil
}

func (s *Service) compute(ctx context.Context) (*PlatformStats, error) {
	db := s.db.WithContext(ctx)
	stats := &PlatformStats{
		ContentByType: make(map[string]int64),
		ComputedAt:    time.Now().UTC(),
	}

	if err := db.Model(&models.MediaOrganization{}).Count(&stats.TotalOrganizations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.MediaOrganization{}).
		Where("status = ?", models.OrgStatusActive).
		Count(&stats.ActiveOrganizations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.MediaOrganization{}).
		Where("status = ?", models.OrgStatusPending).
		Count(&stats.PendingOrganizations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Content{}).Count(&stats.TotalContent).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Download{}).Count(&stats.TotalDownloads).Error; err != nil {
		return nil, err
	}

	var storage struct{ Total int64 }
	if err := db.Model(&models.MediaOrganization{}).
		Select("COALESCE(SUM(storage_used), 0) AS total").
		Scan(&storage).Error; err != nil {
		return nil, err
	}
	stats.TotalStorageUsed = storage.Total

	var byType []struct {
		Type  string
		Count int64
	}
	if err := db.Model(&models.Content{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, row := range byType {
		stats.ContentByType[row.Type] = row.Count
	}

	var topOrgs []models.MediaOrganization
	if err := db.Where("upload_count > 0").
		Order("upload_count DESC").
		Limit(5).
		Find(&topOrgs).Error; err != nil {
		return nil, err
	}
	for _, org := range topOrgs {
		stats.TopContributors = append(stats.TopContributors, Contributor{
			OrganizationID: org.ID,
			Name:           org.Name,
			UploadCount:    org.UploadCount,
		})
	}

	var topContent []models.Content
	if err := db.Where("downloads > 0").
		Order("downloads DESC").
		Limit(5).
		Find(&topContent).Error; err != nil {
		return nil, err
	}
	for _, c := range topContent {
		stats.TopDownloads = append(stats.TopDownloads, TopDownload{
			ContentID: c.ID,
			Title:     c.Title,
			Downloads: c.Downloads,
		})
	}

	return stats, nil
}

// OrgStats is the per-organization dashboard summary.
type OrgStats struct {
	Uploads      int   `json:"uploads"`
	Downloads    int   `json:"downloads"`
	StorageUsed  int64 `json:"storage_used"`
	StorageLimit int64 `json:"storage_limit"`
	TeamMembers  int64 `json:"team_members"`
}

func (s *Service) ForOrganization(ctx context.Context, orgID uuid.UUID) (*OrgStats, error) {
	var org models.MediaOrganization
	if err := s.db.WithContext(ctx).First(&org, orgID).Error; err != nil {
		return nil, err
	}

	var members int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("organization_id = ?", orgID).
		Count(&members).Error; err != nil {
		return nil, err
	}

	return &OrgStats{
		Uploads:      org.UploadCount,
		Downloads:    org.DownloadCount,
		StorageUsed:  org.StorageUsed,
		StorageLimit: org.StorageLimit,
		TeamMembers:  members,
	}, nil
}
