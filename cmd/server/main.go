package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/handlers"
	"github.com/henryympark/pronto2-sub002/internal/middleware"
	"github.com/henryympark/pronto2-sub002/internal/services"
	"github.com/henryympark/pronto2-sub002/pkg/envelope"
	"github.com/henryympark/pronto2-sub002/pkg/jwt"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Pronto booking backend")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	env, err := envelope.NewFromEncoded(cfg.Staging.EncryptionKey)
	if err != nil {
		logger.Fatalf("Failed to initialize encryption envelope: %v", err)
	}

	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Repositories
	stagingRepo := database.NewStagingRepository(db)
	reservationRepo := database.NewReservationRepository(db)
	rateLimitRepo := database.NewRateLimitRepository(db)

	// Services
	stagingService := services.NewStagingService(stagingRepo, env, cfg.Staging, logger)
	rateLimitService := services.NewRateLimitService(rateLimitRepo, cfg.RateLimit)
	availabilityService, err := services.NewAvailabilityService(reservationRepo, cfg.Availability, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize availability service: %v", err)
	}
	pricingService := services.NewPricingService(cfg.Discount)

	cleanupService := services.NewStagingCleanupService(
		stagingRepo, rateLimitRepo, cfg.Staging.CleanupInterval, logger)
	cleanupService.Start()
	logger.Info("Staging cleanup sweeper started")

	// Handlers
	stagingHandler := handlers.NewStagingHandler(stagingService, rateLimitService, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, logger)
	blockedTimeHandler := handlers.NewBlockedTimeHandler(reservationRepo, logger)
	pricingHandler := handlers.NewPricingHandler(pricingService)
	healthHandler := handlers.NewHealthHandler(db)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		staging := v1.Group("/staging")
		{
			staging.POST("", stagingHandler.Stage)
			staging.POST("/restore", stagingHandler.Restore)
			staging.GET("/status", stagingHandler.Status)
			staging.DELETE("", stagingHandler.Discard)
		}

		servicesGroup := v1.Group("/services")
		{
			servicesGroup.GET("/:id/availability", availabilityHandler.GetAvailability)
			servicesGroup.GET("/:id/blocked-times", blockedTimeHandler.List)
			servicesGroup.POST("/:id/blocked-times",
				middleware.AuthMiddleware(jwtService, logger),
				middleware.RequireRole(middleware.RoleAdmin),
				blockedTimeHandler.Create)
		}

		v1.POST("/pricing/quote", pricingHandler.Quote)

		v1.DELETE("/blocked-times/:id",
			middleware.AuthMiddleware(jwtService, logger),
			middleware.RequireRole(middleware.RoleAdmin),
			blockedTimeHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cleanupService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
