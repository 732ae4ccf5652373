package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/staybook/hotel-booking-backend/internal/config"
	"github.com/staybook/hotel-booking-backend/internal/database"
)

// Rate limited actions
const (
	ActionVerificationCode = "verification_code"
	ActionBooking          = "booking"
	ActionBookingLookup    = "booking_lookup"
)

// RateLimitService limits verification code mails and bookings per caller
type RateLimitService struct {
	db  database.DB
	cfg config.RateLimitConfig
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:  db,
		cfg: cfg,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckCodeRequest checks if an email or IP has requested too many verification codes
func (s *RateLimitService) CheckCodeRequest(email, ip string) error {
	if email != "" {
		err := s.check(email, "email", ActionVerificationCode, s.cfg.CodeRequestsPerEmail, s.cfg.CodeEmailWindow,
			"Too many verification code requests for this email")
		if err != nil {
			return err
		}
	}

	if ip != "" {
		return s.check(ip, "ip", ActionVerificationCode, s.cfg.CodeRequestsPerIP, s.cfg.CodeIPWindow,
			"Too many verification code requests from this IP address")
	}

	return nil
}

// RecordCodeRequest records a verification code mail for rate limiting
func (s *RateLimitService) RecordCodeRequest(email, ip string) error {
	if email != "" {
		if err := s.recordRequest(email, "email", ActionVerificationCode); err != nil {
			return fmt.Errorf("failed to record email request: %w", err)
		}
	}

	if ip != "" {
		if err := s.recordRequest(ip, "ip", ActionVerificationCode); err != nil {
			return fmt.Errorf("failed to record IP request: %w", err)
		}
	}

	return nil
}

// CheckBooking checks if an IP has submitted too many bookings
func (s *RateLimitService) CheckBooking(ip string) error {
	if ip == "" {
		return nil
	}
	return s.check(ip, "ip", ActionBooking, s.cfg.BookingsPerIP, s.cfg.BookingIPWindow,
		"Too many bookings from this IP address")
}

// RecordBooking records a booking submission for rate limiting
func (s *RateLimitService) RecordBooking(ip string) error {
	if ip == "" {
		return nil
	}
	if err := s.recordRequest(ip, "ip", ActionBooking); err != nil {
		return fmt.Errorf("failed to record booking request: %w", err)
	}
	return nil
}

// CheckBookingLookup checks if an IP has looked up too many booking references
func (s *RateLimitService) CheckBookingLookup(ip string) error {
	if ip == "" {
		return nil
	}
	return s.check(ip, "ip", ActionBookingLookup, s.cfg.LookupsPerIP, s.cfg.LookupIPWindow,
		"Too many booking lookups from this IP address")
}

// RecordBookingLookup records a booking lookup for rate limiting
func (s *RateLimitService) RecordBookingLookup(ip string) error {
	if ip == "" {
		return nil
	}
	if err := s.recordRequest(ip, "ip", ActionBookingLookup); err != nil {
		return fmt.Errorf("failed to record booking lookup: %w", err)
	}
	return nil
}

func (s *RateLimitService) check(identifier, identifierType, action string, max int, window time.Duration, message string) error {
	count, lastRequest, err := s.getRequestCount(identifier, identifierType, action, window)
	if err != nil {
		return fmt.Errorf("failed to check %s rate limit: %w", identifierType, err)
	}

	if count >= max {
		retryAfter := lastRequest.Add(window)
		return &RateLimitError{
			Message:    fmt.Sprintf("%s. Please try again after %s", message, retryAfter.Format("15:04:05")),
			RetryAfter: retryAfter,
			Type:       identifierType,
		}
	}

	return nil
}

// getRequestCount gets the number of requests within the time window
func (s *RateLimitService) getRequestCount(identifier, identifierType, action string, window time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Add(-window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM request_rate_limits
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND action = $3
		  AND created_at > $4
	`

	var count int
	var lastRequest time.Time

	err := s.db.QueryRow(query, identifier, identifierType, action, windowStart).Scan(&count, &lastRequest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, err
	}

	return count, lastRequest, nil
}

// recordRequest inserts a rate limit record
func (s *RateLimitService) recordRequest(identifier, identifierType, action string) error {
	query := `
		INSERT INTO request_rate_limits (identifier, identifier_type, action, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	_, err := s.db.Exec(query, identifier, identifierType, action)
	return err
}

// CleanupExpiredRateLimits removes records older than the longest window
func (s *RateLimitService) CleanupExpiredRateLimits() (int64, error) {
	maxWindow := s.cfg.CodeIPWindow
	for _, w := range []time.Duration{s.cfg.CodeEmailWindow, s.cfg.BookingIPWindow, s.cfg.LookupIPWindow} {
		if w > maxWindow {
			maxWindow = w
		}
	}

	cutoffTime := time.Now().Add(-maxWindow)

	result, err := s.db.Exec(`DELETE FROM request_rate_limits WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
