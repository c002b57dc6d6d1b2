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

	"github.com/compete-app/compete-backend/config"
	"github.com/compete-app/compete-backend/db"
	"github.com/compete-app/compete-backend/geocoding"
	"github.com/compete-app/compete-backend/handlers"
	"github.com/compete-app/compete-backend/middleware"
	"github.com/compete-app/compete-backend/notifications"
	"github.com/compete-app/compete-backend/repositories"
	"github.com/compete-app/compete-backend/routes"
	"github.com/compete-app/compete-backend/services"
	"github.com/compete-app/compete-backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database connection established")

	// Flyer storage is optional; without it uploads are rejected but the
	// rest of the API works.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize flyer storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("flyer storage initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("flyer storage not configured, uploads disabled")
	}

	var geocoder *geocoding.Client
	if cfg.GeoapifyAPIKey != "" {
		geocoder = geocoding.NewClient(cfg.GeoapifyAPIKey)
	} else {
		logger.Warn("geocoding not configured, zip resolution limited to local data")
	}

	hub := notifications.NewHub(logger)
	go hub.Run()

	// Repositories.
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	venueRepo := repositories.NewPostgresVenueRepository(database)
	zipRepo := repositories.NewPostgresZipCodeRepository(database)
	likeRepo := repositories.NewPostgresLikeRepository(database)
	alertRepo := repositories.NewPostgresAlertRepository(database)
	supportRepo := repositories.NewPostgresSupportRepository(database)
	userRepo := repositories.NewPostgresUserRepository(database)

	// Services.
	var resolverGeocoder services.Geocoder
	if geocoder != nil {
		resolverGeocoder = geocoder
	}
	locations := services.NewLocationResolver(zipRepo, venueRepo, resolverGeocoder, logger)

	var mailer services.Mailer
	if m := services.NewSMTPMailer(cfg.SMTPHost, fmt.Sprintf("%d", cfg.SMTPPort), cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, logger); m != nil {
		mailer = m
	} else {
		logger.Warn("SMTP not configured, support reply email disabled")
	}

	tournamentService := services.NewTournamentService(tournamentRepo, likeRepo, locations, uploader, hub, logger)
	venueService := services.NewVenueService(venueRepo, locations)
	alertService := services.NewAlertService(alertRepo)
	supportService := services.NewSupportService(supportRepo, userRepo, mailer, hub, logger)
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	adminService := services.NewAdminService(tournamentRepo, userRepo, supportRepo, likeRepo)
	newsService := services.NewNewsService(cfg.NewsFeedURLs, logger)

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)

	router := routes.New(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService, likeRepo),
		Venue:      handlers.NewVenueHandler(venueService),
		Alert:      handlers.NewAlertHandler(alertService),
		Support:    handlers.NewSupportHandler(supportService),
		Admin:      handlers.NewAdminHandler(adminService),
		News:       handlers.NewNewsHandler(newsService),
		Location:   handlers.NewLocationHandler(geocoder, locations),
		WebSocket:  handlers.NewWebSocketHandler(hub, logger),
	}, auth, cfg.CORSAllowedOrigins)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic archival of tournaments whose date has passed.
	go func() {
		ticker := time.NewTicker(cfg.ArchiveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(rootCtx, time.Minute)
				if err := tournamentService.ArchiveExpired(ctx); err != nil {
					logger.Error("archival sweep failed", slog.Any("error", err))
				}
				cancel()
			}
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.Int("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
