package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/services"
)

// MessageBookingFailed is shown for any failure that is not the guest's to fix
const MessageBookingFailed = "Booking is unsuccessful"

// BookingManager is the booking behaviour the handlers need
type BookingManager interface {
	Book(ctx context.Context, req models.BookRoomRequest, meta services.RequestMeta) (*models.Booking, error)
	GetByReference(reference string, meta services.RequestMeta) (*models.Booking, error)
	Cancel(ctx context.Context, actorID, reference string, meta services.RequestMeta) (*models.Booking, error)
	ListRecent(limit, offset int) ([]models.Booking, error)
}

// BookingHandler serves the public booking form endpoints
type BookingHandler struct {
	bookings BookingManager
	logger   logrus.FieldLogger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingManager, logger logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// BookRoom handles POST /api/book-room.
// Refusals the guest can act on are replied with 200 and success=false.
func (h *BookingHandler) BookRoom(c *gin.Context) {
	var req models.BookRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.BookRoomResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	booking, err := h.bookings.Book(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		var rejection *services.RejectionError
		var rateLimitErr *services.RateLimitError

		switch {
		case errors.As(err, &rejection):
			c.JSON(http.StatusOK, models.BookRoomResponse{Success: false, Message: rejection.Message})
		case errors.As(err, &rateLimitErr):
			c.JSON(http.StatusTooManyRequests, models.BookRoomResponse{Success: false, Message: rateLimitErr.Message})
		default:
			h.logger.WithError(err).WithField("room_type", req.RoomType).Error("Failed to book room")
			c.JSON(http.StatusInternalServerError, models.BookRoomResponse{Success: false, Message: MessageBookingFailed})
		}
		return
	}

	c.JSON(http.StatusCreated, models.BookRoomResponse{
		Success:          true,
		Message:          services.MessageBookingSubmitted,
		BookingReference: booking.Reference,
	})
}

// GetBooking handles GET /api/book-room/:reference.
// Only the public summary is returned; guest contact details stay admin-only.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookings.GetByReference(c.Param("reference"), requestMeta(c))
	var rateLimitErr *services.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.JSON(http.StatusTooManyRequests, rateLimitResponse(rateLimitErr))
		return
	}
	if errors.Is(err, database.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
			Code:    "BOOKING_NOT_FOUND",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load booking",
		})
		return
	}

	c.JSON(http.StatusOK, booking.Summary())
}
