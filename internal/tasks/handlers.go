package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/ntumia/mediahub/internal/notify"
	"github.com/ntumia/mediahub/internal/stats"
)

type Handler struct {
	db            *gorm.DB
	logger        *slog.Logger
	notifyService *notify.Service
	statsService  *stats.Service
}

func NewHandler(db *gorm.DB, logger *slog.Logger, statsService *stats.Service) *Handler {
	return &Handler{
		db:            db,
		logger:        logger,
		notifyService: notify.NewService(db),
		statsService:  statsService,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeNotificationDispatch, h.HandleNotificationDispatch)
	mux.HandleFunc(TypeStatsRollup, h.HandleStatsRollup)
}

func (h *Handler) HandleNotificationDispatch(ctx context.Context, t *asynq.Task) error {
	var payload NotificationDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if _, err := h.notifyService.Create(ctx, payload.UserID, payload.Kind, payload.Title, payload.Message); err != nil {
		h.logger.Error("notification dispatch failed", "user_id", payload.UserID, "error", err)
		return err
	}

	h.logger.Info("notification delivered", "user_id", payload.UserID, "kind", payload.Kind)
	return nil
}

func (h *Handler) HandleStatsRollup(ctx context.Context, t *asynq.Task) error {
	h.logger.Info("starting stats rollup")

	if _, err := h.statsService.Refresh(ctx); err != nil {
		h.logger.Error("stats rollup failed", "error", err)
		return err
	}

	h.logger.Info("stats rollup completed")
	return nil
}
