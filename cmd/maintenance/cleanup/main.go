package main

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/config"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/services"
)

func main() {
	var (
		dbURLFlag     string
		retentionDays int
		truncate      bool
		confirm       bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&retentionDays, "audit-retention-days", 90, "delete audit logs older than this many days (0 keeps all)")
	flag.BoolVar(&truncate, "truncate", false, "empty the bookings, audit_logs and request_rate_limits tables instead")
	flag.BoolVar(&confirm, "yes", false, "confirm -truncate")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Secrets stay out of the command line when a .env is present
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if truncate {
		if !confirm {
			logger.Fatal("-truncate deletes every booking; pass -yes to confirm")
		}
		if _, err := db.Exec(`TRUNCATE TABLE bookings, audit_logs, request_rate_limits RESTART IDENTITY CASCADE`); err != nil {
			logger.WithError(err).Fatal("Failed to truncate tables")
		}
		logger.Info("Tables truncated")
		return
	}

	rateLimitCfg := config.RateLimitConfig{
		CodeEmailWindow: time.Duration(getEnvAsInt("RATE_LIMIT_CODE_EMAIL_WINDOW_MINUTES", 10)) * time.Minute,
		CodeIPWindow:    time.Duration(getEnvAsInt("RATE_LIMIT_CODE_IP_WINDOW_MINUTES", 60)) * time.Minute,
		BookingIPWindow: time.Duration(getEnvAsInt("RATE_LIMIT_BOOKING_IP_WINDOW_MINUTES", 60)) * time.Minute,
	}

	cron := services.NewCronService(
		services.NewRateLimitService(db, rateLimitCfg),
		services.NewAuditService(db, true),
		time.Duration(retentionDays)*24*time.Hour,
		logger,
	)

	if _, err := cron.RunCleanupNow(); err != nil {
		logger.WithError(err).Fatal("Cleanup failed")
	}
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
