// Package moderation orchestrates approve/reject decisions over pending
// organizations and draft/flagged content: it checks the caller's role
// policy, applies the lifecycle transition under optimistic concurrency,
// and notifies the affected users.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/lifecycle"
	"github.com/ntumia/mediahub/internal/policy"
	"gorm.io/gorm"
)

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("entity not found")
	ErrTransient         = errors.New("transient storage failure")
	ErrUnknownEntityType = errors.New("unknown entity type")
)

type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityContent      EntityType = "content"
)

// writeAttempts bounds the re-read loop under version conflicts.
const writeAttempts = 2

type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

func NewService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{db: db, notifier: notifier, logger: logger}
}

// PendingSnapshot is the review queue: organizations awaiting signup
// validation and content awaiting publication or flag review, both oldest
// first so reviewers work in submission order.
type PendingSnapshot struct {
	Organizations []models.MediaOrganization `json:"organizations"`
	Content       []models.Content           `json:"content"`
}

func (s *Service) ListPending(ctx context.Context) (*PendingSnapshot, error) {
	var orgs []models.MediaOrganization
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.OrgStatusPending).
		Order("created_at ASC").
		Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("%w: listing pending organizations: %v", ErrTransient, err)
	}

	var content []models.Content
	if err := s.db.WithContext(ctx).
		Where("status IN ?", []models.ContentStatus{models.ContentStatusDraft, models.ContentStatusFlagged}).
		Order("created_at ASC").
		Find(&content).Error; err != nil {
		return nil, fmt.Errorf("%w: listing pending content: %v", ErrTransient, err)
	}

	return &PendingSnapshot{Organizations: orgs, Content: content}, nil
}

// Approve applies the approve transition to the entity on behalf of actor.
func (s *Service) Approve(ctx context.Context, actor *models.User, entityType EntityType, id uuid.UUID) error {
	return s.decide(ctx, actor, entityType, id, lifecycle.ActionApprove)
}

// Reject applies the reject transition to the entity on behalf of actor.
func (s *Service) Reject(ctx context.Context, actor *models.User, entityType EntityType, id uuid.UUID) error {
	return s.decide(ctx, actor, entityType, id, lifecycle.ActionReject)
}

func (s *Service) decide(ctx context.Context, actor *models.User, entityType EntityType, id uuid.UUID, action lifecycle.Action) error {
	perms := policy.For(policy.Role(actor.Role))

	switch entityType {
	case EntityOrganization:
		if !perms.CanModerate {
			return ErrPermissionDenied
		}
		return s.decideOrg(ctx, actor, id, action)
	case EntityContent:
		if !perms.CanManageContent {
			return ErrPermissionDenied
		}
		return s.decideContent(ctx, actor, id, action)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
}

// decideOrg re-reads and retries once on a version conflict so a decision
// racing another moderator degrades to the idempotent no-op branch instead
// of failing.
func (s *Service) decideOrg(ctx context.Context, actor *models.User, id uuid.UUID, action lifecycle.Action) error {
	for attempt := 0; attempt < writeAttempts; attempt++ {
		var org models.MediaOrganization
		if err := s.db.WithContext(ctx).First(&org, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: organization %s", ErrNotFound, id)
			}
			return fmt.Errorf("%w: loading organization: %v", ErrTransient, err)
		}

		next, changed, err := lifecycle.OrgNext(org.Status, action)
		if err != nil {
			return err
		}
		if !changed {
			// Replay of an already-applied decision.
			return nil
		}

		res := s.db.WithContext(ctx).
			Model(&models.MediaOrganization{}).
			Where("id = ? AND version = ?", org.ID, org.Version).
			Updates(map[string]interface{}{
				"status":  next,
				"version": org.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("%w: updating organization status: %v", ErrTransient, res.Error)
		}
		if res.RowsAffected == 1 {
			s.logger.Info("organization moderated",
				"org_id", org.ID,
				"action", action,
				"from", org.Status,
				"to", next,
				"actor", actor.ID,
			)
			s.notifyOrg(ctx, org, action)
			return nil
		}
		// Lost the version race; loop re-reads the new state.
	}
	return fmt.Errorf("%w: organization %s version conflict", ErrTransient, id)
}

func (s *Service) decideContent(ctx context.Context, actor *models.User, id uuid.UUID, action lifecycle.Action) error {
	for attempt := 0; attempt < writeAttempts; attempt++ {
		var content models.Content
		if err := s.db.WithContext(ctx).First(&content, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: content %s", ErrNotFound, id)
			}
			return fmt.Errorf("%w: loading content: %v", ErrTransient, err)
		}

		next, changed, err := lifecycle.ContentNext(content.Status, action)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		res := s.db.WithContext(ctx).
			Model(&models.Content{}).
			Where("id = ? AND version = ?", content.ID, content.Version).
			Updates(map[string]interface{}{
				"status":  next,
				"version": content.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("%w: updating content status: %v", ErrTransient, res.Error)
		}
		if res.RowsAffected == 1 {
			s.logger.Info("content moderated",
				"content_id", content.ID,
				"action", action,
				"from", content.Status,
				"to", next,
				"actor", actor.ID,
			)
			s.notifyContent(ctx, content, action)
			return nil
		}
	}
	return fmt.Errorf("%w: content %s version conflict", ErrTransient, id)
}

func (s *Service) notifyOrg(ctx context.Context, org models.MediaOrganization, action lifecycle.Action) {
	var members []models.User
	if err := s.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", org.ID, models.UserStatusActive).
		Find(&members).Error; err != nil {
		s.logger.Warn("loading members for notification failed", "org_id", org.ID, "error", err)
		return
	}

	title, message := orgDecisionMessage(org.Name, action)
	for _, m := range members {
		s.notifier.Notify(ctx, m.ID, models.NotificationTypeApproval, title, message)
	}
}

func (s *Service) notifyContent(ctx context.Context, content models.Content, action lifecycle.Action) {
	title, message := contentDecisionMessage(content.Title, action)
	s.notifier.Notify(ctx, content.UploaderID, models.NotificationTypeApproval, title, message)
}

func orgDecisionMessage(name string, action lifecycle.Action) (string, string) {
	if action == lifecycle.ActionApprove {
		return "Organization approved", fmt.Sprintf("%s has been approved and is now active.", name)
	}
	return "Organization rejected", fmt.Sprintf("The registration of %s has been rejected.", name)
}

func contentDecisionMessage(title string, action lifecycle.Action) (string, string) {
	if action == lifecycle.ActionApprove {
		return "Content published", fmt.Sprintf("%q has been approved and published.", title)
	}
	return "Content archived", fmt.Sprintf("%q has been rejected and archived.", title)
}
