package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/resqnet/resq-go-api/internal/config"
	"github.com/resqnet/resq-go-api/internal/database"
	"github.com/resqnet/resq-go-api/internal/handler"
	"github.com/resqnet/resq-go-api/internal/middleware"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/repository"
	"github.com/resqnet/resq-go-api/internal/router"
	"github.com/resqnet/resq-go-api/internal/service"
	"github.com/resqnet/resq-go-api/pkg/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Admin{}, &models.Supervisor{}, &models.SupervisorLog{}, &models.Alert{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	provider, err := identity.NewJWTProvider(identity.Config{Secret: cfg.IdentitySecret}, logger)
	if err != nil {
		log.Fatalf("failed to create identity provider: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	adminRepo := repository.NewAdminRepository(db)
	supervisorRepo := repository.NewSupervisorRepository(db)
	logRepo := repository.NewSupervisorLogRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	authService := service.NewAuthService(adminRepo, supervisorRepo, redisClient, cfg.StatusCacheTTL, logger)
	onboardingService := service.NewOnboardingService(supervisorRepo, adminRepo, validate, authService, logger)
	logService := service.NewSupervisorLogService(logRepo, validate, logger)
	alertService := service.NewAlertService(alertRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)

	serviceCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	alertService.Start(serviceCtx)

	authHandler := handler.NewAuthHandler(authService, logService, logger)
	supervisorHandler := handler.NewSupervisorHandler(onboardingService, logger)
	adminHandler := handler.NewAdminHandler(onboardingService, logger)
	logHandler := handler.NewLogHandler(logService, logger)
	alertHandler := handler.NewAlertHandler(alertService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		SupervisorHandler: supervisorHandler,
		AdminHandler:      adminHandler,
		LogHandler:        logHandler,
		AlertHandler:      alertHandler,
		AuthMiddleware:    middleware.Authenticate(provider, authService, cfg.IdentityTimeout),
		PublicRateLimiter: middleware.RateLimit("public", cfg.PublicRateLimit, cfg.PublicRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
