package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/utils"
	"github.com/staybook/hotel-booking-backend/pkg/mail"
	"github.com/staybook/hotel-booking-backend/pkg/validator"
)

// Messages returned to the booking form
const (
	MessageBookingSubmitted = "Booking is submitted. You will receive an email shortly after payment is made."
	MessageRoomUnavailable  = "Room unavailable"
	MessageMoreGuests       = "For more guests please fill another form"
	MessageStayOrder        = "Check-out date must be after check-in date"
	MessageInvalidAmount    = "amount must be a non-negative number"
)

// RejectionError is an application-level refusal shown to the guest as is
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

var (
	// ErrRoomUnavailable indicates no room of the requested type is free for the stay
	ErrRoomUnavailable = &RejectionError{Message: MessageRoomUnavailable}

	// ErrMoreGuests indicates the "more guests" choice, which this form cannot book
	ErrMoreGuests = &RejectionError{Message: MessageMoreGuests}

	// ErrStayOrder indicates a check-out on or before check-in
	ErrStayOrder = &RejectionError{Message: MessageStayOrder}
)

// BookingService validates, prices against inventory and stores room bookings
type BookingService struct {
	bookings  *database.BookingRepository
	rateLimit *RateLimitService
	audit     *AuditService
	mailer    mail.Gateway
	phone     *validator.PhoneValidator
	inventory map[string]int
	logger    logrus.FieldLogger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings *database.BookingRepository,
	rateLimit *RateLimitService,
	audit *AuditService,
	mailer mail.Gateway,
	inventory map[string]int,
	logger logrus.FieldLogger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		rateLimit: rateLimit,
		audit:     audit,
		mailer:    mailer,
		phone:     validator.NewPhoneValidator(),
		inventory: inventory,
		logger:    logger,
	}
}

// Book stores a booking for the request. Guest-facing refusals are returned
// as *RejectionError, throttling as *RateLimitError.
func (s *BookingService) Book(ctx context.Context, req models.BookRoomRequest, meta RequestMeta) (*models.Booking, error) {
	if err := s.rateLimit.CheckBooking(meta.IP); err != nil {
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			if auditErr := s.audit.LogRateLimitViolation(meta.IP, ActionBooking, rateLimitErr.Type, rateLimitErr.RetryAfter, meta); auditErr != nil {
				s.logger.WithError(auditErr).Warn("Failed to audit rate limit violation")
			}
		}
		return nil, err
	}

	booking, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}

	inventory, ok := s.inventory[booking.RoomType]
	if !ok {
		return nil, ErrRoomUnavailable
	}

	taken, err := s.bookings.CountOverlapping(booking.RoomType, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return nil, err
	}
	if taken >= inventory {
		return nil, ErrRoomUnavailable
	}

	reference, err := utils.GenerateBookingReference()
	if err != nil {
		return nil, err
	}
	booking.Reference = reference

	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}

	if err := s.rateLimit.RecordBooking(meta.IP); err != nil {
		s.logger.WithError(err).Warn("Failed to record booking request")
	}

	s.sendConfirmation(ctx, booking)

	if err := s.audit.LogBooking(booking.ID, booking.Reference, booking.RoomType, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit booking")
	}

	s.logger.WithFields(logrus.Fields{
		"reference": booking.Reference,
		"room_type": booking.RoomType,
		"nights":    booking.Nights(),
	}).Info("Booking stored")

	return booking, nil
}

func (s *BookingService) buildBooking(req models.BookRoomRequest) (*models.Booking, error) {
	// The length rule applies to digits, not separators
	req.Phone = s.phone.Sanitize(req.Phone)
	if errs := validator.Struct(req); len(errs) > 0 {
		return nil, &RejectionError{Message: errs[0].Message}
	}

	if req.NumberOfGuests == models.GuestsMore {
		return nil, ErrMoreGuests
	}
	guests, err := strconv.Atoi(req.NumberOfGuests)
	if err != nil {
		return nil, &RejectionError{Message: "numberofguests must be one of 1 2 3"}
	}

	phone, err := s.phone.Validate(req.Phone)
	if err != nil {
		return nil, &RejectionError{Message: err.Error()}
	}

	amount, err := strconv.ParseFloat(req.Amount, 64)
	if err != nil || amount < 0 {
		return nil, &RejectionError{Message: MessageInvalidAmount}
	}

	if !req.CheckOut.After(*req.CheckIn) {
		return nil, ErrStayOrder
	}

	booking := &models.Booking{
		RoomType:       req.RoomType,
		Amount:         amount,
		GuestName:      req.Name,
		Address:        req.Address,
		Email:          req.Email,
		Phone:          phone,
		CheckIn:        req.CheckIn.UTC(),
		CheckOut:       req.CheckOut.UTC(),
		NumberOfGuests: guests,
		BookingStatus:  models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	if requests := strings.TrimSpace(req.Requests); requests != "" {
		booking.SpecialRequests = &requests
	}

	return booking, nil
}

// sendConfirmation mails the booking summary; failures are logged only
func (s *BookingService) sendConfirmation(ctx context.Context, b *models.Booking) {
	msg, err := mail.BookingMessage(b.Email, mail.BookingData{
		Name:      b.GuestName,
		Reference: b.Reference,
		RoomType:  b.RoomType,
		CheckIn:   b.CheckIn.Format("2006-01-02"),
		CheckOut:  b.CheckOut.Format("2006-01-02"),
		Guests:    b.NumberOfGuests,
		Amount:    strconv.FormatFloat(b.Amount, 'f', 2, 64),
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"reference": b.Reference,
			"gateway":   s.mailer.GetName(),
		}).WithError(err).Error("Failed to send booking confirmation")
	}
}

// GetByReference returns a stored booking for a public lookup. Lookups are
// rate limited per IP, found or not.
func (s *BookingService) GetByReference(reference string, meta RequestMeta) (*models.Booking, error) {
	if err := s.rateLimit.CheckBookingLookup(meta.IP); err != nil {
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			if auditErr := s.audit.LogRateLimitViolation(meta.IP, ActionBookingLookup, rateLimitErr.Type, rateLimitErr.RetryAfter, meta); auditErr != nil {
				s.logger.WithError(auditErr).Warn("Failed to audit rate limit violation")
			}
		}
		return nil, err
	}

	if err := s.rateLimit.RecordBookingLookup(meta.IP); err != nil {
		s.logger.WithError(err).Warn("Failed to record booking lookup")
	}

	return s.bookings.GetByReference(normalizeReference(reference))
}

// Cancel cancels a booking on behalf of an admin
func (s *BookingService) Cancel(ctx context.Context, actorID, reference string, meta RequestMeta) (*models.Booking, error) {
	booking, err := s.bookings.GetByReference(normalizeReference(reference))
	if err != nil {
		return nil, err
	}

	if err := booking.Cancel(); err != nil {
		return nil, err
	}

	if err := s.bookings.UpdateStatus(booking); err != nil {
		return nil, err
	}

	if err := s.audit.LogBookingCancelled(actorID, booking.ID, booking.Reference, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit booking cancellation")
	}

	s.logger.WithFields(logrus.Fields{
		"reference": booking.Reference,
		"actor_id":  actorID,
	}).Info("Booking cancelled")

	return booking, nil
}

func normalizeReference(reference string) string {
	return strings.ToUpper(strings.TrimSpace(reference))
}

// ListRecent returns the newest bookings for the admin view
func (s *BookingService) ListRecent(limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	bookings, err := s.bookings.ListRecent(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
