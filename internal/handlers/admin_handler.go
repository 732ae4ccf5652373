package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/middleware"
	"github.com/staybook/hotel-booking-backend/internal/models"
)

// AdminHandler handles admin-only operations
type AdminHandler struct {
	accounts AccountManager
	bookings BookingManager
	logger   logrus.FieldLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accounts AccountManager, bookings BookingManager, logger logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		bookings: bookings,
		logger:   logger,
	}
}

// ChangeRoleRequest represents the body of a role change
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRole handles PUT /api/admin/users/:id/role
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	actor, _ := middleware.GetUserContext(c)

	user, err := h.accounts.ChangeRole(c.Request.Context(), actor.UserID, c.Param("id"), req.Role, requestMeta(c))
	if err != nil {
		writeAccountError(c, h.logger, err, "Failed to change role")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated",
		"user":    user,
	})
}

// ListBookings handles GET /api/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.bookings.ListRecent(limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
		"offset":   offset,
	})
}

// CancelBooking handles POST /api/admin/bookings/:reference/cancel
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	actor, _ := middleware.GetUserContext(c)

	booking, err := h.bookings.Cancel(c.Request.Context(), actor.UserID, c.Param("reference"), requestMeta(c))
	switch {
	case errors.Is(err, database.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
			Code:    "BOOKING_NOT_FOUND",
		})
		return
	case errors.Is(err, models.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_cancelled",
			Message: err.Error(),
			Code:    "ALREADY_CANCELLED",
		})
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to cancel booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to cancel booking",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
		"booking": booking,
	})
}
