package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ntumia/mediahub/internal/api"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database"
	"github.com/ntumia/mediahub/internal/storage"
	"github.com/ntumia/mediahub/pkg/config"
	"github.com/ntumia/mediahub/pkg/crypto"
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

	logger.Info("starting mediahub server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Redis backs the stats cache and the notification queue; the server
	// stays up without it.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())

	sealer, err := crypto.NewSealer(cfg.Invite.Key)
	if err != nil {
		logger.Error("failed to create invite sealer", "error", err)
		os.Exit(1)
	}
	if cfg.Invite.Key == "" {
		logger.Warn("INVITE_KEY not set, using generated key - outstanding invites will not survive a restart")
	}

	authService := auth.NewService(db, jwtService, sealer, cfg.Invite.Expiry())

	signer, err := storage.NewS3Signer(context.Background(), &cfg.Storage)
	if err != nil {
		logger.Error("failed to create object signer", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		DB:            db,
		Redis:         redisClient,
		Logger:        logger,
		JWTService:    jwtService,
		AuthService:   authService,
		Signer:        signer,
		AsynqClient:   asynqClient,
		StatsCacheTTL: cfg.Stats.CacheTTL(),
		URLExpirySecs: cfg.Storage.URLExpiryMins * 60,
		RateLimitReqs: cfg.RateLimit.Requests,
		RateLimitSecs: cfg.RateLimit.WindowSeconds,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
