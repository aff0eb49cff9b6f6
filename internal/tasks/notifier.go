package tasks

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ntumia/mediahub/internal/database/models"
)

// QueueNotifier enqueues notifications for asynchronous delivery by the
// worker. Enqueue failures are logged and dropped.
type QueueNotifier struct {
	client *asynq.Client
	logger *slog.Logger
}

func NewQueueNotifier(client *asynq.Client, logger *slog.Logger) *QueueNotifier {
	return &QueueNotifier{client: client, logger: logger}
}

func (n *QueueNotifier) Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string) {
	task, err := NewNotificationDispatchTask(NotificationDispatchPayload{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		n.logger.Error("failed to build notification task", "user_id", userID, "error", err)
		return
	}

	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		n.logger.Error("failed to enqueue notification", "user_id", userID, "error", err)
	}
}
