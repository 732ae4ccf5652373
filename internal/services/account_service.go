package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/utils"
	"github.com/staybook/hotel-booking-backend/pkg/jwt"
	"github.com/staybook/hotel-booking-backend/pkg/mail"
	"github.com/staybook/hotel-booking-backend/pkg/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCode indicates the verification code does not match
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrAlreadyVerified indicates the account has already been verified
	ErrAlreadyVerified = errors.New("account already verified")

	// ErrInvalidCredentials indicates an unknown account or a wrong password
	ErrInvalidCredentials = errors.New("invalid username, email or password")

	// ErrNotVerified indicates the account exists but has not been verified
	ErrNotVerified = errors.New("account not verified")

	// ErrInvalidToken indicates a refresh token that cannot be used
	ErrInvalidToken = errors.New("invalid or expired refresh token")

	// ErrInvalidRole indicates an empty role
	ErrInvalidRole = errors.New("role is required")

	// ErrMaxAttemptsExceeded indicates too many wrong codes for the current code
	ErrMaxAttemptsExceeded = errors.New("maximum verification attempts exceeded, request a new code")
)

// DefaultMaxCodeAttempts is used when AccountConfig.MaxCodeAttempts is not set
const DefaultMaxCodeAttempts = 5

// ValidationError carries every field failure of a rejected input
type ValidationError struct {
	Errors []validator.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return e.Errors[0].Message
}

// UserStore is the account persistence used by AccountService
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	SetCode(ctx context.Context, id primitive.ObjectID, code string) error
	IncrementCodeAttempts(ctx context.Context, id primitive.ObjectID) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
}

// AccountConfig holds the account policy knobs
type AccountConfig struct {
	CodeLength          int
	MaxCodeAttempts     int
	BcryptCost          int
	SelfAssignableRoles []string
}

// TokenPair is the credential set returned on sign-in and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AccountService handles registration, verification and sign-in
type AccountService struct {
	users     UserStore
	jwt       *jwt.Service
	mailer    mail.Gateway
	rateLimit *RateLimitService
	audit     *AuditService
	cfg       AccountConfig
	logger    logrus.FieldLogger
}

// NewAccountService creates a new account service
func NewAccountService(
	users UserStore,
	jwtService *jwt.Service,
	mailer mail.Gateway,
	rateLimit *RateLimitService,
	audit *AuditService,
	cfg AccountConfig,
	logger logrus.FieldLogger,
) *AccountService {
	if cfg.MaxCodeAttempts <= 0 {
		cfg.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	return &AccountService{
		users:     users,
		jwt:       jwtService,
		mailer:    mailer,
		rateLimit: rateLimit,
		audit:     audit,
		cfg:       cfg,
		logger:    logger,
	}
}

// Register validates the candidate, stores an unverified account and mails its code
func (s *AccountService) Register(ctx context.Context, in validator.SignInInput, meta RequestMeta) (*models.User, error) {
	result := validator.ValidateSignIn(in)
	if !result.Valid() {
		return nil, &ValidationError{Errors: result.Errors}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := utils.GenerateNumericCode(s.cfg.CodeLength)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Code:     code,
		Role:     s.assignableRole(in.Role),
	}

	if err := s.users.Create(ctx, user); err != nil {
		var schemaErr *models.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaValidationError(schemaErr)
		}
		return nil, err
	}

	s.sendCode(ctx, user)

	if err := s.audit.LogSignUp(user.ID.Hex(), user.Email, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit sign up")
	}

	return user, nil
}

// assignableRole returns the requested role when self-assignment allows it.
// An empty result lets the User schema default apply.
func (s *AccountService) assignableRole(requested *string) string {
	if requested == nil {
		return ""
	}
	role := strings.TrimSpace(*requested)
	if slices.Contains(s.cfg.SelfAssignableRoles, role) {
		return role
	}
	return ""
}

// Verify marks the account verified when the code matches. Every wrong code
// counts against the current code; once MaxCodeAttempts is reached only a
// resend unlocks verification.
func (s *AccountService) Verify(ctx context.Context, email, code string, meta RequestMeta) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.auditVerification(email, false, "user_not_found", meta)
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if user.CodeAttempts >= s.cfg.MaxCodeAttempts {
		s.auditVerification(email, false, "max_attempts_exceeded", meta)
		return ErrMaxAttemptsExceeded
	}

	if subtle.ConstantTimeCompare([]byte(user.Code), []byte(strings.TrimSpace(code))) != 1 {
		if err := s.users.IncrementCodeAttempts(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to record verification attempt: %w", err)
		}
		s.auditVerification(email, false, "invalid_code", meta)
		return ErrInvalidCode
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to verify account: %w", err)
	}

	s.auditVerification(email, true, "", meta)
	return nil
}

func (s *AccountService) auditVerification(email string, success bool, reason string, meta RequestMeta) {
	if err := s.audit.LogVerification(email, success, reason, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit verification")
	}
}

// ResendCode issues and mails a fresh code for an unverified account
func (s *AccountService) ResendCode(ctx context.Context, email string, meta RequestMeta) error {
	if err := s.rateLimit.CheckCodeRequest(email, meta.IP); err != nil {
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			if auditErr := s.audit.LogRateLimitViolation(email, ActionVerificationCode, rateLimitErr.Type, rateLimitErr.RetryAfter, meta); auditErr != nil {
				s.logger.WithError(auditErr).Warn("Failed to audit rate limit violation")
			}
		}
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := utils.GenerateNumericCode(s.cfg.CodeLength)
	if err != nil {
		return err
	}

	if err := s.users.SetCode(ctx, user.ID, code); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	user.Code = code

	if err := s.rateLimit.RecordCodeRequest(email, meta.IP); err != nil {
		s.logger.WithError(err).Warn("Failed to record verification code request")
	}

	s.sendCode(ctx, user)
	return nil
}

// sendCode mails the verification code. Delivery failures are logged only;
// the caller can ask for the code again.
func (s *AccountService) sendCode(ctx context.Context, user *models.User) {
	msg, err := mail.VerificationMessage(user.Email, mail.VerificationData{Username: user.Username, Code: user.Code})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"email":   user.Email,
			"gateway": s.mailer.GetName(),
		}).WithError(err).Error("Failed to send verification code")
	}
}

// SignIn checks credentials and issues a token pair.
// identifier is either the username or the email.
func (s *AccountService) SignIn(ctx context.Context, identifier, password string, meta RequestMeta) (*models.User, *TokenPair, error) {
	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, database.ErrUserNotFound) {
		s.auditSignIn(nil, identifier, false, "user_not_found", meta)
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	userID := user.ID.Hex()
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.auditSignIn(&userID, identifier, false, "invalid_password", meta)
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		s.auditSignIn(&userID, identifier, false, "not_verified", meta)
		return nil, nil, ErrNotVerified
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.auditSignIn(&userID, identifier, true, "", meta)
	return user, tokens, nil
}

func (s *AccountService) auditSignIn(userID *string, identifier string, success bool, reason string, meta RequestMeta) {
	if err := s.audit.LogSignIn(userID, identifier, success, reason, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit sign in")
	}
}

// Refresh exchanges a refresh token for a new token pair
func (s *AccountService) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, database.ErrUserNotFound) {
		s.auditRefresh(claims.UserID, false, meta)
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.auditRefresh(claims.UserID, true, meta)
	return tokens, nil
}

func (s *AccountService) auditRefresh(userID string, success bool, meta RequestMeta) {
	if err := s.audit.LogTokenRefresh(userID, success, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit token refresh")
	}
}

func (s *AccountService) issueTokens(user *models.User) (*TokenPair, error) {
	userID := user.ID.Hex()

	accessToken, err := s.jwt.GenerateAccessToken(userID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(userID, user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.AccessTokenExpiry().Seconds()),
	}, nil
}

// Profile returns the account behind an access token
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ChangeRole sets a new role on an account
func (s *AccountService) ChangeRole(ctx context.Context, actorID, userID, role string, meta RequestMeta) (*models.User, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, ErrInvalidRole
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role

	if err := s.audit.LogRoleChange(actorID, userID, role, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to audit role change")
	}

	return user, nil
}

func schemaValidationError(err *models.SchemaError) *ValidationError {
	fields := make([]validator.FieldError, 0, len(err.Errors))
	for _, fe := range err.Errors {
		fields = append(fields, validator.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return &ValidationError{Errors: fields}
}
