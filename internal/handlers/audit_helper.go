package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/staybook/hotel-booking-backend/internal/services"
	"github.com/staybook/hotel-booking-backend/internal/utils"
)

// requestMeta collects the client details recorded with audit events
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IP:        utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func rateLimitResponse(err *services.RateLimitError) gin.H {
	return gin.H{
		"error":       "rate_limit_exceeded",
		"message":     err.Message,
		"retry_after": err.RetryAfter,
		"type":        err.Type,
	}
}
