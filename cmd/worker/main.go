package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/ntumia/mediahub/internal/database"
	"github.com/ntumia/mediahub/internal/stats"
	"github.com/ntumia/mediahub/internal/tasks"
	"github.com/ntumia/mediahub/pkg/config"
	"github.com/ntumia/mediahub/pkg/queue"
	"github.com/ntumia/mediahub/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting mediahub worker")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})

	statsService := stats.NewService(db, redisClient, cfg.Stats.CacheTTL(), logger)

	srv := queue.NewServer(&cfg.Redis, 10)

	handler := tasks.NewHandler(db, logger, statsService)

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Scheduled stats rollup
	asynqClient := queue.NewClient(&cfg.Redis)
	scheduler := cron.New()
	if err := util.ValidateCronExpr(cfg.Stats.RollupCron); err != nil {
		logger.Error("invalid rollup schedule", "cron", cfg.Stats.RollupCron, "error", err)
		os.Exit(1)
	}
	_, err = scheduler.AddFunc(cfg.Stats.RollupCron, func() {
		if _, err := asynqClient.Enqueue(tasks.NewStatsRollupTask()); err != nil {
			logger.Error("failed to enqueue stats rollup", "error", err)
		}
	})
	if err != nil {
		logger.Error("failed to schedule stats rollup", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	if next, err := util.NextCronTime(cfg.Stats.RollupCron, time.Now()); err == nil {
		logger.Info("stats rollup scheduled", "cron", cfg.Stats.RollupCron, "next", next)
	}

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		scheduler.Stop()
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	asynqClient.Close()
	redisClient.Close()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
