package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/courtline/club-scheduler/config"
	"github.com/courtline/club-scheduler/db"
	"github.com/courtline/club-scheduler/handlers"
	"github.com/courtline/club-scheduler/repositories"
	api "github.com/courtline/club-scheduler/routes"
	"github.com/courtline/club-scheduler/services"
	"github.com/courtline/club-scheduler/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Standings archival is optional; without R2 credentials the service
	// simply skips the export.
	var archiveService services.ArchiveService
	if cfg.ArchiveEnabled() {
		uploader, uploaderErr := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if uploaderErr != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", uploaderErr))
			os.Exit(1)
		}
		archiveService = services.NewArchiveService(uploader)
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("standings archival disabled, R2 settings not provided")
	}

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	playerService := services.NewPlayerService(playerRepo, rosterRepo, eventRepo)
	eventService := services.NewEventService(eventRepo, rosterRepo, matchRepo)
	schedulingService := services.NewSchedulingService(
		dbConn, // For transaction management
		eventRepo,
		rosterRepo,
		matchRepo,
		archiveService,
		logger,
	)
	logger.Info("services initialized")

	router := api.InitRoutes(cfg, api.Handlers{
		Player:     handlers.NewPlayerHandler(playerService),
		Event:      handlers.NewEventHandler(eventService),
		Scheduling: handlers.NewSchedulingHandler(schedulingService),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
