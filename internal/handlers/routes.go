package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/staybook/hotel-booking-backend/internal/middleware"
	"github.com/staybook/hotel-booking-backend/internal/models"
)

// RegisterRoutes mounts the public, authenticated and admin routes under api
func RegisterRoutes(api *gin.RouterGroup, authHandler *AuthHandler, adminHandler *AdminHandler, bookingHandler *BookingHandler, authMiddleware gin.HandlerFunc) {
	// Booking form (public)
	api.POST("/book-room", bookingHandler.BookRoom)
	api.GET("/book-room/:reference", bookingHandler.GetBooking)

	// Accounts (public)
	api.POST("/sign-up", authHandler.SignUp)
	api.POST("/verify-code", authHandler.VerifyCode)
	api.POST("/resend-code", authHandler.ResendCode)
	api.POST("/sign-in", authHandler.SignIn)
	api.POST("/refresh-token", authHandler.RefreshToken)

	user := api.Group("/user", authMiddleware)
	{
		user.GET("/profile", authHandler.GetProfile)
	}

	admin := api.Group("/admin", authMiddleware, middleware.RequireRole(models.RoleAdmin))
	{
		admin.PUT("/users/:id/role", adminHandler.ChangeRole)
		admin.GET("/bookings", adminHandler.ListBookings)
		admin.POST("/bookings/:reference/cancel", adminHandler.CancelBooking)
	}
}
