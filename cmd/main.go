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

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/juangiadev/fulbo/config"
	"github.com/juangiadev/fulbo/db"
	"github.com/juangiadev/fulbo/handlers"
	"github.com/juangiadev/fulbo/repositories"
	api "github.com/juangiadev/fulbo/routes"
	"github.com/juangiadev/fulbo/services"
	"github.com/juangiadev/fulbo/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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
		}
	}()
	logger.Info("database connection established")

	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	clock := clockwork.NewRealClock()

	var managementClient services.ManagementClient
	if cfg.ManagementConfigured() {
		managementClient, err = services.NewAuth0ManagementClient(services.Auth0ManagementConfig{
			Domain:       cfg.Auth0Domain,
			ClientID:     cfg.Auth0ClientID,
			ClientSecret: cfg.Auth0ClientSecret,
			Audience:     cfg.Auth0Audience,
		}, nil, clock)
		if err != nil {
			logger.Error("failed to initialize Auth0 management client", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Auth0 management client initialized")
	} else {
		logger.Info("Auth0 management credentials not set, profile enrichment disabled")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerTeamRepo := repositories.NewPostgresPlayerTeamRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	joinRequestRepo := repositories.NewPostgresJoinRequestRepository(dbConn)
	logger.Info("repositories initialized")

	txManager := services.NewSQLTxManager(dbConn)

	userService := services.NewUserService(userRepo, managementClient, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		playerRepo,
		matchRepo,
		userRepo,
		inviteRepo,
		joinRequestRepo,
		txManager,
		cloudflareUploader,
		clock,
	)
	playerService := services.NewPlayerService(playerRepo, userRepo, txManager, clock)
	matchService := services.NewMatchService(matchRepo, teamRepo, playerRepo, playerTeamRepo, txManager)
	teamService := services.NewTeamService(teamRepo, matchRepo, playerRepo)
	playerTeamService := services.NewPlayerTeamService(playerTeamRepo, teamRepo, matchRepo, playerRepo)
	standingService := services.NewStandingService(tournamentRepo, playerRepo, matchRepo, teamRepo, playerTeamRepo)
	logger.Info("services initialized")

	userHandler := handlers.NewUserHandler(userService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, standingService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	matchHandler := handlers.NewMatchHandler(matchService)
	teamHandler := handlers.NewTeamHandler(teamService)
	playerTeamHandler := handlers.NewPlayerTeamHandler(playerTeamService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		userHandler,
		tournamentHandler,
		playerHandler,
		matchHandler,
		teamHandler,
		playerTeamHandler,
	)
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
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
