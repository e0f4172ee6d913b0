// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/api"
	"github.com/andresuchdata/purchasing/backend-go/internal/cache"
	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/notify"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/purchasing/backend-go/internal/service"
	"github.com/andresuchdata/purchasing/backend-go/internal/storage"
	"github.com/andresuchdata/purchasing/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	candidates, err := cache.NewCandidateCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Candidate cache unavailable, continuing without it")
		candidates = cache.NewNoopCandidateCache()
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Log.Warn().Err(err).Str("timezone", cfg.App.Timezone).Msg("Unknown timezone, using UTC")
		location = time.UTC
	}

	hub := notify.NewHub()
	notificationService := service.NewNotificationService(postgres.NewNotificationRepository(db), hub)
	opts := []service.Option{
		service.WithNotifications(notificationService),
		service.WithLocation(location),
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize export archive")
		}
		opts = append(opts, service.WithArchive(archive))
	}

	// Initialize services
	orderService := service.NewOrderService(postgres.NewOrderRepository(db), candidates, opts...)
	itemStatsService := service.NewItemStatsService(postgres.NewSalesRepository(db), location, time.Now)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		OrderService:        orderService,
		NotificationService: notificationService,
		ItemStatsService:    itemStatsService,
		Hub:                 hub,
	}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
