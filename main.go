package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kitchen-backend/config"
	"kitchen-backend/database"
	"kitchen-backend/daywindow"
	"kitchen-backend/firebase"
	"kitchen-backend/logger"
	"kitchen-backend/middleware"
	"kitchen-backend/routes"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("Environment validation failed: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	// Sentry error tracking
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.SentryEnvironment,
		}); err != nil {
			zlog.Error("sentry init failed", zap.Error(err))
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	resolver, err := daywindow.NewResolverForZone(cfg.Timezone, nil)
	if err != nil {
		zlog.Fatal("invalid APP_TIMEZONE", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// Initialize database
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	// Create default restaurant if not exists
	seed := database.SeedOptions{
		OwnerEmail:     cfg.OwnerEmail,
		OwnerPassword:  cfg.OwnerPassword,
		RestaurantName: cfg.RestaurantName,
	}
	if err := database.CreateDefaultRestaurant(db, seed, zlog); err != nil {
		zlog.Warn("could not create default restaurant", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Photo storage; without Firebase the upload endpoints answer 503.
	app, err := firebase.Init(ctx, cfg.FirebaseCredentials, zlog)
	if err != nil {
		zlog.Warn("Firebase unavailable, photo uploads disabled", zap.Error(err))
	}
	storageClient := firebase.NewStorageClient(app, cfg.StorageBucket, zlog)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute, zlog)
	go loginLimiter.Run(ctx, 5*time.Minute, 15*time.Minute)

	// Setup Gin router
	r := gin.New()
	r.Use(logger.GinLogger(zlog), gin.Recovery())
	if sentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		zlog.Warn("no CORS origins configured, defaulting to http://localhost:3000")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RestaurantHeader, "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Setup routes
	err = routes.SetupRoutes(r, db, routes.Options{
		Resolver:        resolver,
		Storage:         storageClient,
		LoginLimiter:    loginLimiter,
		RefreshOnRepeat: cfg.CompletionRefreshOnRepeat,
		Log:             zlog,
	})
	if err != nil {
		zlog.Fatal("failed to set up routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("timezone", cfg.Timezone))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	zlog.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	// Close database connection
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			zlog.Error("error closing database connection", zap.Error(err))
		} else {
			zlog.Info("database connection closed")
		}
	}

	zlog.Info("server exited gracefully")
}
