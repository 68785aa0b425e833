package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopPulse/app/echo-server/router"
	"shopPulse/business/activity"
	"shopPulse/business/similarity"
	"shopPulse/business/trending"
	"shopPulse/internal/middleware"
	"shopPulse/internal/repository/catalog"
	psqlRepo "shopPulse/internal/repository/postgres"
	redisRepo "shopPulse/internal/repository/redis"
	"shopPulse/internal/rest"
	"shopPulse/internal/scheduler"
	"shopPulse/pkg/config"
	"shopPulse/pkg/database"
	redisdb "shopPulse/pkg/database/redis"
	"shopPulse/pkg/logger"
	"shopPulse/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting ShopPulse Personalization API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	logger.Info("Redis connected successfully")

	// Init repo
	cache := redisRepo.NewCache(redisClient)
	activityRepo := psqlRepo.NewActivityRepository(db)
	trendingRepo := psqlRepo.NewTrendingRepository(db)
	similarityRepo := psqlRepo.NewSimilarityRepository(db)
	feedbackRepo := psqlRepo.NewFeedbackRepository(db)
	catalogRepo := catalog.NewCatalogRepository(catalog.CatalogConfig{
		BaseURL: cfg.Catalog.BaseURL,
		APIKey:  cfg.Catalog.APIKey,
		Timeout: cfg.Catalog.Timeout,
	})

	// Init service
	activityService := activity.NewActivityService(activityRepo, cache, catalogRepo)
	trendingService := trending.NewTrendingService(trendingRepo, activityRepo, catalogRepo, cache, trending.DefaultConfig())
	similarityService := similarity.NewSimilarityService(
		similarityRepo, feedbackRepo, catalogRepo, cache, similarity.NoopFeedbackProcessor{}, similarity.DefaultConfig(),
	)

	// Init handler
	activityHandler := rest.NewActivityHandler(activityService)
	trendingHandler := rest.NewTrendingHandler(trendingService)
	recommendationHandler := rest.NewRecommendationHandler(similarityService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Setup routes
	authRequired := middleware.TenantAuth(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	api := e.Group("/api/v1")
	router.SetupActivityRoutes(api, activityHandler, authRequired, adminOnly)
	router.SetupTrendingRoutes(api, trendingHandler, authRequired, adminOnly)
	router.SetupRecommendationRoutes(api, recommendationHandler, authRequired, adminOnly)

	// Background scheduler
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()

	var sched *scheduler.TrendingScheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewTrendingScheduler(
			activityRepo,
			trendingService,
			activityService,
			trendingRepo,
			similarityRepo,
			scheduler.Config{
				Interval:      cfg.Scheduler.TrendingInterval,
				RetentionDays: cfg.Scheduler.ActivityRetentionDays,
			},
		)
		sched.Start(schedCtx)
	}

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	schedCancel()
	if sched != nil {
		sched.Wait()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
