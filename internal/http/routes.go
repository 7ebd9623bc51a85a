package http

import (
	"time"

	"rps_api/internal/classifier"
	"rps_api/internal/config"
	"rps_api/internal/http/handlers"
	"rps_api/internal/http/middleware"
	"rps_api/internal/repository"
	"rps_api/internal/service"
	"rps_api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services and handlers onto the router.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, blobs storage.BlobStore,
	classify *classifier.Client, cfg *config.Config, version string) {

	userRepo := repository.NewUserRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	moveRepo := repository.NewMoveRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)

	statsSvc := service.NewStatsService(statsRepo)
	matchSvc := service.NewMatchService(matchRepo, userRepo, statsSvc)
	gestureSvc := service.NewGestureService(matchSvc, matchRepo, moveRepo, blobs, classify, cfg.MaxImageSize)
	authSvc := service.NewAuthService(userRepo, tokenRepo, matchSvc, gestureSvc)

	h := handlers.NewHandler(authSvc, matchSvc, gestureSvc, userRepo, statsRepo)
	healthHandler := handlers.NewHealthHandler(db, classify, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	apiRateLimit, apiRateWindow := 60, time.Minute
	authRateLimit, authRateWindow := 5, time.Minute

	// without Redis the fixed-window limiter runs in process memory
	ipRateLimit := middleware.RedisRateLimit
	if cfg.RedisAddr == "" {
		ipRateLimit = middleware.SimpleRateLimit
	}

	v1 := r.Group("/api/v1")
	v1.Use(ipRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	authRL := ipRateLimit(authRateLimit, authRateWindow)
	v1.POST("/auth/register", authRL, h.Register)
	v1.POST("/auth/login", authRL, h.Login)
	v1.POST("/auth/refresh", authRL, h.Refresh)
	v1.POST("/auth/logout", middleware.JWT(), h.Logout)

	// User profile
	v1.GET("/me", middleware.JWT(), h.Me)
	v1.PUT("/me", middleware.JWT(), h.UpdateMe)
	v1.DELETE("/me", middleware.JWT(), h.DeleteAccount)
	v1.GET("/me/stats", middleware.JWT(), h.MyStats)
	v1.GET("/users", middleware.JWT(), h.SearchUsers)
	v1.GET("/users/:id", middleware.JWT(), h.GetUser)

	// Matches
	v1.POST("/matches", middleware.JWT(), h.CreateMatch)
	v1.GET("/matches", middleware.JWT(), h.ListMatches)
	v1.GET("/matches/:id", middleware.JWT(), h.GetMatch)
	v1.POST("/matches/:id/respond", middleware.JWT(), h.RespondToMatch)

	// Gesture submission (per user, not per IP)
	submitRL := middleware.SubmitRateLimit(cfg.SubmitRateLimit, cfg.SubmitRateWindow)
	v1.POST("/matches/:id/moves", middleware.JWT(), submitRL, h.SubmitGesture)
	v1.GET("/moves/:id/image", middleware.JWT(), h.GetMoveImage)
	v1.PUT("/moves/:id/feedback", middleware.JWT(), h.ReportPrediction)

	// Leaderboard
	v1.GET("/leaderboard", h.Leaderboard)
}
