package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ntumia/mediahub/internal/database/models"
)

// Task type names
const (
	TypeNotificationDispatch = "notification:dispatch"
	TypeStatsRollup          = "stats:rollup"
)

// NotificationDispatchPayload contains the data for a notification dispatch task
type NotificationDispatchPayload struct {
	UserID  uuid.UUID               `json:"user_id"`
	Kind    models.NotificationType `json:"kind"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
}

func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationDispatch, data, asynq.Queue("notifications"), asynq.MaxRetry(5)), nil
}

// StatsRollupPayload is empty - the rollup recomputes platform-wide figures
type StatsRollupPayload struct{}

func NewStatsRollupTask() *asynq.Task {
	return asynq.NewTask(TypeStatsRollup, nil, asynq.Queue("low"))
}
