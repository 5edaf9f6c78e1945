package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nomadic-camps/booking-service/internal/application"
	"github.com/nomadic-camps/booking-service/internal/auth"
	"github.com/nomadic-camps/booking-service/internal/config"
	"github.com/nomadic-camps/booking-service/internal/database"
	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
	bookingEvents "github.com/nomadic-camps/booking-service/internal/events"
	"github.com/nomadic-camps/booking-service/internal/handler"
	"github.com/nomadic-camps/booking-service/internal/logger"
	"github.com/nomadic-camps/booking-service/internal/middleware"
	"github.com/nomadic-camps/booking-service/internal/notify"
	"github.com/nomadic-camps/booking-service/internal/payment"
	"github.com/nomadic-camps/booking-service/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "booking-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting booking-service",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.SettingsModel{},
			&repository.DateLocationLockModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager for the admin API
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	// Initialize Kafka producer
	kafkaProducer := bookingEvents.NewProducer(cfg.KafkaBrokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	lockRepo := repository.NewGormLockRepository(db)
	settingsRepo := repository.NewGormSettingsRepository(db)

	// Initialize pricing engine
	pricingEngine := bookingDomain.NewStandardPricingEngine()

	// Initialize payment provider and notifier
	stripeProvider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.PaymentCurrency, cfg.PublicBaseURL)
	notifier := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AdminEmail)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		lockRepo,
		settingsRepo,
		pricingEngine,
		stripeProvider,
		notifier,
		kafkaProducer,
		log,
	)
	settingsService := application.NewSettingsService(settingsRepo, log)
	statsService := application.NewStatsService(bookingRepo, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaBrokers,
		"booking-service",
		func(ctx context.Context, sessionID string) error {
			_, err := bookingService.MarkPaidBySession(ctx, sessionID)
			return err
		},
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, settingsService)
	adminHandler := handler.NewAdminHandler(bookingService, settingsService, statsService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := handler.NewHealthHandler(db, "booking-service")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down booking-service...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("booking-service stopped")
}
