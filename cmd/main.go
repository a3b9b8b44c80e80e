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
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/Toleubekov/auction-system/auction"
	"github.com/Toleubekov/auction-system/config"
	"github.com/Toleubekov/auction-system/db"
	"github.com/Toleubekov/auction-system/handlers"
	"github.com/Toleubekov/auction-system/middleware"
	"github.com/Toleubekov/auction-system/repositories"
	api "github.com/Toleubekov/auction-system/routes"
	"github.com/Toleubekov/auction-system/services"
	"github.com/Toleubekov/auction-system/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
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

	// Инициализация загрузчика файлов (Cloudflare R2)
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

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	trophyRepo := repositories.NewPostgresTrophyRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	auctionRepo := repositories.NewPostgresAuctionRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	competitionService := services.NewCompetitionService(competitionRepo, trophyRepo, standingRepo, cloudflareUploader)
	playerService := services.NewPlayerService(playerRepo, competitionRepo, cloudflareUploader)
	trophyService := services.NewTrophyService(trophyRepo, competitionRepo)
	standingService := services.NewStandingService(standingRepo, competitionRepo)
	auctionService := services.NewAuctionService(auctionRepo, playerRepo, competitionRepo, cfg.AuctionDefaultBudget)
	logger.Info("services initialized")

	// Движок живых торгов: менеджер комнат и шлюз подключений
	roomManager := auction.NewManager(auctionRepo, auctionRepo, logger)
	defer roomManager.Shutdown()
	verifier := services.NewAuctionCredentialVerifier(cfg.JWTSecretKey)
	gateway := auction.NewGateway(verifier, roomManager)
	logger.Info("auction room manager started")

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService, standingService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	trophyHandler := handlers.NewTrophyHandler(trophyService)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	auctionWSHandler := handlers.NewAuctionWSHandler(gateway, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		userHandler,
		competitionHandler,
		playerHandler,
		trophyHandler,
		auctionHandler,
		auctionWSHandler,
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
