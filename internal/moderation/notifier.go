package moderation

import (
	"context"

	"github.com/google/uuid"
	"github.com/ntumia/mediahub/internal/database/models"
)

// Notifier delivers a fire-and-forget message to a user. Delivery failures
// are the notifier's problem; moderation decisions never roll back on them.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uuid.UUID, models.NotificationType, string, string) {}
