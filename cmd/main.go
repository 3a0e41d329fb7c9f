package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Youskoofx/chrono24/internal/cache"
	"github.com/Youskoofx/chrono24/internal/handler"
	mid "github.com/Youskoofx/chrono24/internal/middleware"
	"github.com/Youskoofx/chrono24/internal/notify"
	"github.com/Youskoofx/chrono24/internal/scheduler"
	"github.com/Youskoofx/chrono24/internal/service"
	"github.com/Youskoofx/chrono24/pkg/config"
	"github.com/Youskoofx/chrono24/pkg/database"
	"github.com/Youskoofx/chrono24/pkg/jwtutil"
	"github.com/Youskoofx/chrono24/pkg/logger"
	"github.com/Youskoofx/chrono24/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting chronopneus",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Open the database (PostgreSQL, or the local SQLite fallback)
	db, err := database.Open(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if appConfig.DB.UsePostgres() {
		log.Info("Database connection established", zap.String("host", appConfig.DB.Host))
	} else {
		log.Info("Using local SQLite database", zap.String("path", appConfig.DB.SQLitePath))
	}

	// Wire services
	hub := notify.NewHub()
	cacheClient := cache.New(appConfig, log)
	historyService := service.NewHistoryService(db, log)
	tireService := service.NewTireService(db, historyService, hub, cacheClient, appConfig.Cache.TTL, log)

	// Start the low-stock sweep
	sched := scheduler.New(appConfig, tireService, log)
	if err := sched.Start(); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(db)
	tireHandler := handler.NewTireHandler(tireService)
	historyHandler := handler.NewHistoryHandler(historyService)
	eventsHandler := handler.NewEventsHandler(hub)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Change event stream (SSE)
	e.GET("/events", eventsHandler.Stream)

	// Auth routes
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/api/auth/me", authHandler.Me, mid.AuthMiddleware)

	// Tire API routes
	tireAPI := e.Group("/api/tires", mid.AuthMiddleware)
	tireAPI.GET("", tireHandler.List)
	tireAPI.GET("/stats", tireHandler.Stats)
	tireAPI.GET("/low-stock", tireHandler.LowStock)
	tireAPI.GET("/:id", tireHandler.Get)
	tireAPI.POST("", tireHandler.Create)
	tireAPI.PUT("/:id", tireHandler.Update)
	tireAPI.DELETE("/:id", tireHandler.Delete)

	// History API routes
	historyAPI := e.Group("/api/history", mid.AuthMiddleware)
	historyAPI.GET("", historyHandler.List)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
