package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/config"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/handlers"
	"github.com/staybook/hotel-booking-backend/internal/middleware"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/services"
	"github.com/staybook/hotel-booking-backend/pkg/jwt"
	"github.com/staybook/hotel-booking-backend/pkg/mail"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_time": buildTime,
	}).Info("Starting hotel booking backend")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Postgres: bookings, audit log, rate limits
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations applied")

	// MongoDB: user accounts
	mongoDB, mongoClient, err := database.ConnectMongo(cfg.Mongo, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.WithError(err).Warn("Failed to disconnect MongoDB")
		}
	}()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	if err := database.EnsureIndexes(indexCtx, mongoDB, models.UserSchema()); err != nil {
		cancelIndex()
		logger.Fatalf("Failed to create user indexes: %v", err)
	}
	cancelIndex()

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	mailer := newMailGateway(cfg.Mail, logger)
	rateLimitService := services.NewRateLimitService(db, cfg.RateLimit)
	auditService := services.NewAuditService(db, cfg.Security.EnableAuditLog)
	userRepository := database.NewUserRepository(mongoDB)
	bookingRepository := database.NewBookingRepository(db)

	accountService := services.NewAccountService(
		userRepository,
		jwtService,
		mailer,
		rateLimitService,
		auditService,
		services.AccountConfig{
			CodeLength:          cfg.Verification.CodeLength,
			MaxCodeAttempts:     cfg.Verification.MaxAttempts,
			BcryptCost:          cfg.Security.BcryptCost,
			SelfAssignableRoles: cfg.Security.SelfAssignableRoles,
		},
		logger,
	)
	bookingService := services.NewBookingService(
		bookingRepository,
		rateLimitService,
		auditService,
		mailer,
		cfg.Rooms.Inventory,
		logger,
	)

	cronService := services.NewCronService(rateLimitService, auditService, cfg.Maintenance.AuditRetention, logger)
	if err := cronService.Start(cfg.Maintenance.CleanupSchedule); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, logger)
	adminHandler := handlers.NewAdminHandler(accountService, bookingService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !slices.Contains(cfg.CORS.AllowedOrigins, "*"),
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", handlers.HealthHandler(version, map[string]handlers.HealthCheck{
		"postgres": func(context.Context) error { return db.Ping() },
		"mongo": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
	}))

	handlers.RegisterRoutes(
		router.Group("/api"),
		authHandler,
		adminHandler,
		bookingHandler,
		middleware.AuthMiddleware(jwtService, logger),
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// newMailGateway picks the Brevo gateway in production mail mode and the log gateway otherwise
func newMailGateway(cfg config.MailConfig, logger *logrus.Logger) mail.Gateway {
	if cfg.Mode == "production" {
		logger.Info("Mail gateway: Brevo")
		return mail.NewBrevoGateway(mail.BrevoConfig{
			APIURL:    cfg.APIURL,
			APIKey:    cfg.APIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		})
	}

	logger.Info("Mail gateway: log (dev mode)")
	return mail.NewLogGateway(logger)
}
