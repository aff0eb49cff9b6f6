package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ntumia/mediahub/internal/api/handlers"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/moderation"
	"github.com/ntumia/mediahub/internal/notify"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/internal/stats"
	"github.com/ntumia/mediahub/internal/storage"
	"github.com/ntumia/mediahub/internal/tasks"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Signer         storage.ObjectSigner
	AsynqClient    *asynq.Client
	StatsCacheTTL  time.Duration
	URLExpirySecs  int
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services built here; decisions enqueue notifications for the worker.
	var notifier moderation.Notifier = moderation.NopNotifier{}
	if cfg.AsynqClient != nil {
		notifier = tasks.NewQueueNotifier(cfg.AsynqClient, cfg.Logger)
	}
	moderationService := moderation.NewService(cfg.DB, notifier, cfg.Logger)
	notifyService := notify.NewService(cfg.DB)
	statsService := stats.NewService(cfg.DB, cfg.Redis, cfg.StatsCacheTTL, cfg.Logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	gateHandler := handlers.NewGateHandler()
	orgHandler := handlers.NewOrganizationHandler(cfg.DB, cfg.AuthService)
	contentHandler := handlers.NewContentHandler(cfg.DB, cfg.Signer, cfg.URLExpirySecs)
	moderationHandler := handlers.NewModerationHandler(moderationService, cfg.AuthService)
	userHandler := handlers.NewUserHandler(cfg.DB)
	notificationHandler := handlers.NewNotificationHandler(notifyService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/accept-invite", authHandler.AcceptInvite)

		// Route admission works with or without a session
		r.With(middleware.OptionalAuth(cfg.JWTService)).Get("/gate", gateHandler.Decide)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, user)
			})

			// Content exchange
			r.Route("/content", func(r chi.Router) {
				r.With(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanRead })).
					Get("/", contentHandler.List)
				r.Get("/mine", contentHandler.Mine)
				r.With(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanUpload })).
					Post("/", contentHandler.Create)
				r.Get("/{id}", contentHandler.Get)
				r.With(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanModerate })).
					Post("/{id}/flag", contentHandler.Flag)
				r.Post("/{id}/archive", contentHandler.Archive)
				r.With(middleware.RateLimitByUser(30, 60)).
					With(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanRead })).
					Post("/{id}/download", contentHandler.Download)
			})

			// Organizations
			r.Route("/organizations", func(r chi.Router) {
				r.With(middleware.RequireRole(policy.RoleAdmin, policy.RoleModerator)).
					Get("/", orgHandler.List)
				r.Get("/{id}", orgHandler.Get)
				r.Get("/{id}/members", orgHandler.Members)
				r.Post("/{id}/invites", orgHandler.Invite)
				r.With(middleware.RequireRole(policy.RoleAdmin)).Group(func(r chi.Router) {
					r.Post("/{id}/suspend", orgHandler.Suspend)
					r.Post("/{id}/reinstate", orgHandler.Reinstate)
					r.Post("/{id}/reactivate", orgHandler.Reactivate)
				})
			})

			// Review queue
			r.Route("/moderation", func(r chi.Router) {
				r.Use(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanModerate }))
				r.Get("/pending", moderationHandler.Pending)
				r.Post("/{type}/{id}/approve", moderationHandler.Approve)
				r.Post("/{type}/{id}/reject", moderationHandler.Reject)
			})

			// User administration
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(policy.RoleAdmin))
				r.Get("/", userHandler.List)
				r.Put("/{id}/role", userHandler.ChangeRole)
				r.Post("/{id}/activate", userHandler.Activate)
				r.Post("/{id}/deactivate", userHandler.Deactivate)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{id}/read", notificationHandler.MarkRead)
				r.Post("/read-all", notificationHandler.MarkAllRead)
			})

			// Stats
			r.Route("/stats", func(r chi.Router) {
				r.With(middleware.RequireRole(policy.RoleAdmin)).Get("/platform", statsHandler.Platform)
				r.Get("/organization", statsHandler.Organization)
			})
		})
	})

	return &Router{r}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
