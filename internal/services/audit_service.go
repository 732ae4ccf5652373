package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/utils"
)

// RequestMeta carries the caller details recorded with security events
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditService handles audit logging for account and booking events
type AuditService struct {
	db      database.DB
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service accepts
// every event and writes nothing.
func NewAuditService(db database.DB, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		enabled: enabled,
	}
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	UserID     *string // nil before the caller is known
	Action     string  // e.g. "sign_up", "sign_in_failed", "booking_created"
	EntityType string  // "user", "token", "booking", "rate_limit"
	EntityID   *string
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogSignUp logs a new account registration
func (s *AuditService) LogSignUp(userID, email string, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "sign_up",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details:    map[string]interface{}{"email": email},
	})
}

// LogVerification logs a verification code attempt
func (s *AuditService) LogVerification(email string, success bool, failureReason string, meta RequestMeta) error {
	details := map[string]interface{}{
		"email":   email,
		"success": success,
	}
	if !success && failureReason != "" {
		details["failure_reason"] = failureReason
	}

	action := "verify_code_failed"
	if success {
		action = "verify_code_success"
	}

	return s.logEvent(AuditEvent{
		Action:     action,
		EntityType: "user",
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details:    details,
	})
}

// LogSignIn logs a sign-in attempt. userID is nil when the account was not found.
func (s *AuditService) LogSignIn(userID *string, identifier string, success bool, failureReason string, meta RequestMeta) error {
	details := map[string]interface{}{
		"identifier": identifier,
		"success":    success,
	}
	if !success && failureReason != "" {
		details["failure_reason"] = failureReason
	}

	action := "sign_in_failed"
	if success {
		action = "sign_in"
	}

	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		EntityID:   userID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details:    details,
	})
}

// LogTokenRefresh logs a refresh token usage event
func (s *AuditService) LogTokenRefresh(userID string, success bool, meta RequestMeta) error {
	action := "token_refresh_success"
	if !success {
		action = "token_refresh_failed"
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "token",
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details:    map[string]interface{}{"success": success},
	})
}

// LogRoleChange logs an administrator changing an account role
func (s *AuditService) LogRoleChange(actorID, targetID, role string, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		UserID:     &actorID,
		Action:     "role_change",
		EntityType: "user",
		EntityID:   &targetID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details:    map[string]interface{}{"role": role},
	})
}

// LogBooking logs a stored booking
func (s *AuditService) LogBooking(bookingID, reference, roomType string, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		Action:     "booking_created",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details: map[string]interface{}{
			"reference": reference,
			"room_type": roomType,
		},
	})
}

// LogBookingCancelled logs an admin cancelling a booking
func (s *AuditService) LogBookingCancelled(actorID, bookingID, reference string, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		Action:     "booking_cancelled",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details: map[string]interface{}{
			"reference": reference,
			"actor_id":  actorID,
		},
	})
}

// LogRateLimitViolation logs a rate limit violation event
func (s *AuditService) LogRateLimitViolation(identifier, action, limitType string, retryAfter time.Time, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		Action:     "rate_limit_violation",
		EntityType: "rate_limit",
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Details: map[string]interface{}{
			"identifier":  identifier,
			"action":      action,
			"limit_type":  limitType,
			"retry_after": retryAfter,
		},
	})
}

// logEvent writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	if !s.enabled {
		return nil
	}

	if event.Details == nil {
		event.Details = make(map[string]interface{})
	}
	event.Details["device_info"] = utils.ParseUserAgent(event.UserAgent)

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		string(details),
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	result, err := s.db.Exec(`DELETE FROM audit_logs WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
