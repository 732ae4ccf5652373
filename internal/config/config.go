package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// MongoDB configuration (user accounts)
	Mongo MongoConfig

	// PostgreSQL configuration (bookings, audit log, rate limits)
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Verification code configuration
	Verification VerificationConfig

	// Mail gateway configuration
	Mail MailConfig

	// Room inventory configuration
	Rooms RoomsConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Scheduled cleanup configuration
	Maintenance MaintenanceConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// MongoConfig holds document database configuration
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// VerificationConfig holds account verification code configuration
type VerificationConfig struct {
	CodeLength  int
	MaxAttempts int // wrong codes accepted before a resend is required
}

// MailConfig holds mail gateway configuration
type MailConfig struct {
	Mode      string // "dev" logs mails, "production" sends them through Brevo
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
}

// RoomsConfig holds the number of bookable rooms per room type
type RoomsConfig struct {
	Inventory map[string]int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	CodeRequestsPerEmail int
	CodeEmailWindow      time.Duration
	CodeRequestsPerIP    int
	CodeIPWindow         time.Duration
	BookingsPerIP        int
	BookingIPWindow      time.Duration
	LookupsPerIP         int
	LookupIPWindow       time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost          int
	SelfAssignableRoles []string
	EnableAuditLog      bool
}

// MaintenanceConfig holds the scheduled cleanup settings
type MaintenanceConfig struct {
	CleanupSchedule string // six-field cron expression, seconds first
	AuditRetention  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	inventory, err := parseInventory(getEnv("ROOM_INVENTORY", "Standard:10,Deluxe:6,Suite:2"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", ""),
			Database:       getEnv("MONGO_DATABASE", "hotel"),
			ConnectTimeout: time.Duration(getEnvAsInt("MONGO_CONNECT_TIMEOUT", 15)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		Verification: VerificationConfig{
			CodeLength:  getEnvAsInt("VERIFICATION_CODE_LENGTH", 6),
			MaxAttempts: getEnvAsInt("VERIFICATION_MAX_ATTEMPTS", 5),
		},
		Mail: MailConfig{
			Mode:      getEnv("MAIL_MODE", "dev"),
			APIURL:    getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email"),
			APIKey:    getEnv("BREVO_API_KEY", ""),
			FromEmail: getEnv("MAIL_FROM_EMAIL", ""),
			FromName:  getEnv("MAIL_FROM_NAME", "Hotel Reservations"),
		},
		Rooms: RoomsConfig{
			Inventory: inventory,
		},
		RateLimit: RateLimitConfig{
			CodeRequestsPerEmail: getEnvAsInt("RATE_LIMIT_CODE_PER_EMAIL", 3),
			CodeEmailWindow:      time.Duration(getEnvAsInt("RATE_LIMIT_CODE_EMAIL_WINDOW_MINUTES", 10)) * time.Minute,
			CodeRequestsPerIP:    getEnvAsInt("RATE_LIMIT_CODE_PER_IP", 10),
			CodeIPWindow:         time.Duration(getEnvAsInt("RATE_LIMIT_CODE_IP_WINDOW_MINUTES", 60)) * time.Minute,
			BookingsPerIP:        getEnvAsInt("RATE_LIMIT_BOOKINGS_PER_IP", 10),
			BookingIPWindow:      time.Duration(getEnvAsInt("RATE_LIMIT_BOOKING_IP_WINDOW_MINUTES", 60)) * time.Minute,
			LookupsPerIP:         getEnvAsInt("RATE_LIMIT_LOOKUPS_PER_IP", 30),
			LookupIPWindow:       time.Duration(getEnvAsInt("RATE_LIMIT_LOOKUP_IP_WINDOW_MINUTES", 60)) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:          getEnvAsInt("BCRYPT_COST", 12),
			SelfAssignableRoles: getEnvAsSlice("SELF_ASSIGNABLE_ROLES", []string{"user"}),
			EnableAuditLog:      getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		Maintenance: MaintenanceConfig{
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
			AuditRetention:  time.Duration(getEnvAsInt("AUDIT_RETENTION_DAYS", 90)) * 24 * time.Hour,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Verification.CodeLength < 4 || c.Verification.CodeLength > 10 {
		return fmt.Errorf("VERIFICATION_CODE_LENGTH must be between 4 and 10")
	}

	if c.Verification.MaxAttempts < 1 {
		return fmt.Errorf("VERIFICATION_MAX_ATTEMPTS must be at least 1")
	}

	switch c.Mail.Mode {
	case "dev":
	case "production":
		if c.Mail.APIKey == "" {
			return fmt.Errorf("BREVO_API_KEY is required in production mail mode")
		}
		if c.Mail.FromEmail == "" {
			return fmt.Errorf("MAIL_FROM_EMAIL is required in production mail mode")
		}
	default:
		return fmt.Errorf("invalid mail mode: %s (must be 'dev' or 'production')", c.Mail.Mode)
	}

	return nil
}

// parseInventory reads "Standard:10,Deluxe:6" into a room type → count map
func parseInventory(raw string) (map[string]int, error) {
	inventory := make(map[string]int)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, count, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid ROOM_INVENTORY entry %q (expected type:count)", entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid room count in ROOM_INVENTORY entry %q", entry)
		}
		inventory[strings.TrimSpace(name)] = n
	}
	return inventory, nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
