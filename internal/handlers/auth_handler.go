package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/middleware"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/services"
	"github.com/staybook/hotel-booking-backend/pkg/validator"
)

// AccountManager is the account behaviour the auth and admin handlers need
type AccountManager interface {
	Register(ctx context.Context, in validator.SignInInput, meta services.RequestMeta) (*models.User, error)
	Verify(ctx context.Context, email, code string, meta services.RequestMeta) error
	ResendCode(ctx context.Context, email string, meta services.RequestMeta) error
	SignIn(ctx context.Context, identifier, password string, meta services.RequestMeta) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta services.RequestMeta) (*services.TokenPair, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	ChangeRole(ctx context.Context, actorID, userID, role string, meta services.RequestMeta) (*models.User, error)
}

// AuthHandler handles account-related HTTP requests
type AuthHandler struct {
	accounts AccountManager
	logger   logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountManager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// VerifyCodeRequest represents the request to verify an account
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// ResendCodeRequest represents the request for a fresh verification code
type ResendCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

// SignInRequest represents the sign-in credentials. Either username or email identifies the account.
type SignInRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SignInResponse is returned after a successful sign-in
type SignInResponse struct {
	User *models.User `json:"user"`
	services.TokenPair
}

// ValidationErrorResponse lists every failing field
type ValidationErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Errors  []validator.FieldError `json:"errors"`
}

// SignUp handles POST /api/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req validator.SignInInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		h.writeError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. A verification code has been sent to your email.",
		"user":    user,
	})
}

// VerifyCode handles POST /api/verify-code
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.accounts.Verify(c.Request.Context(), strings.TrimSpace(req.Email), req.Code, requestMeta(c)); err != nil {
		h.writeError(c, err, "Failed to verify account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account verified"})
}

// ResendCode handles POST /api/resend-code
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.accounts.ResendCode(c.Request.Context(), strings.TrimSpace(req.Email), requestMeta(c)); err != nil {
		h.writeError(c, err, "Failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "A new verification code has been sent to your email"})
}

// SignIn handles POST /api/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "username or email is required",
		})
		return
	}

	user, tokens, err := h.accounts.SignIn(c.Request.Context(), identifier, req.Password, requestMeta(c))
	if err != nil {
		h.writeError(c, err, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, SignInResponse{User: user, TokenPair: *tokens})
}

// RefreshToken handles POST /api/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	tokens, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		h.writeError(c, err, "Failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// GetProfile handles GET /api/user/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	user, err := h.accounts.Profile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		h.writeError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// writeError maps account errors onto HTTP replies
func (h *AuthHandler) writeError(c *gin.Context, err error, fallback string) {
	writeAccountError(c, h.logger, err, fallback)
}

func writeAccountError(c *gin.Context, logger logrus.FieldLogger, err error, fallback string) {
	var validationErr *services.ValidationError
	var rateLimitErr *services.RateLimitError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Error(),
			Errors:  validationErr.Errors,
		})
	case errors.As(err, &rateLimitErr):
		c.JSON(http.StatusTooManyRequests, rateLimitResponse(rateLimitErr))
	case errors.Is(err, database.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email_taken", Message: "Email must be unique", Code: "EMAIL_TAKEN"})
	case errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "User not found", Code: "USER_NOT_FOUND"})
	case errors.Is(err, services.ErrAlreadyVerified):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already_verified", Message: err.Error(), Code: "ALREADY_VERIFIED"})
	case errors.Is(err, services.ErrMaxAttemptsExceeded):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too_many_attempts", Message: err.Error(), Code: "MAX_ATTEMPTS_EXCEEDED"})
	case errors.Is(err, services.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_code", Message: err.Error(), Code: "INVALID_CODE"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_credentials", Message: err.Error(), Code: "INVALID_CREDENTIALS"})
	case errors.Is(err, services.ErrNotVerified):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not_verified", Message: "Please verify your account first", Code: "NOT_VERIFIED"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_token", Message: err.Error(), Code: "INVALID_REFRESH_TOKEN"})
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error(), Code: "INVALID_ROLE"})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: fallback,
		})
	}
}
