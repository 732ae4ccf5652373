package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/staybook/hotel-booking-backend/internal/middleware"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/services"
	"github.com/staybook/hotel-booking-backend/pkg/jwt"
	"github.com/staybook/hotel-booking-backend/pkg/validator"
	"github.com/stretchr/testify/require"
)

const (
	testUserID   = "652f1c2e9b1d4a3f5e6d7c8b"
	testUsername = "ashim_g"
)

// fakeAccounts returns canned results and records the last call
type fakeAccounts struct {
	user   *models.User
	tokens *services.TokenPair
	err    error

	lastInput      validator.SignInInput
	lastIdentifier string
	lastEmail      string
	lastCode       string
	lastUserID     string
	lastActorID    string
	lastRole       string
	lastMeta       services.RequestMeta
}

func (f *fakeAccounts) Register(_ context.Context, in validator.SignInInput, meta services.RequestMeta) (*models.User, error) {
	f.lastInput, f.lastMeta = in, meta
	return f.user, f.err
}

func (f *fakeAccounts) Verify(_ context.Context, email, code string, meta services.RequestMeta) error {
	f.lastEmail, f.lastCode, f.lastMeta = email, code, meta
	return f.err
}

func (f *fakeAccounts) ResendCode(_ context.Context, email string, meta services.RequestMeta) error {
	f.lastEmail, f.lastMeta = email, meta
	return f.err
}

func (f *fakeAccounts) SignIn(_ context.Context, identifier, _ string, meta services.RequestMeta) (*models.User, *services.TokenPair, error) {
	f.lastIdentifier, f.lastMeta = identifier, meta
	return f.user, f.tokens, f.err
}

func (f *fakeAccounts) Refresh(_ context.Context, _ string, meta services.RequestMeta) (*services.TokenPair, error) {
	f.lastMeta = meta
	return f.tokens, f.err
}

func (f *fakeAccounts) Profile(_ context.Context, userID string) (*models.User, error) {
	f.lastUserID = userID
	return f.user, f.err
}

func (f *fakeAccounts) ChangeRole(_ context.Context, actorID, userID, role string, meta services.RequestMeta) (*models.User, error) {
	f.lastActorID, f.lastUserID, f.lastRole, f.lastMeta = actorID, userID, role, meta
	return f.user, f.err
}

// fakeBookings returns canned booking results
type fakeBookings struct {
	booking   *models.Booking
	list      []models.Booking
	err       error
	calls     int
	lastReq   models.BookRoomRequest
	lastRef   string
	lastActor string
	lastPage  [2]int
}

func (f *fakeBookings) Book(_ context.Context, req models.BookRoomRequest, _ services.RequestMeta) (*models.Booking, error) {
	f.calls++
	f.lastReq = req
	return f.booking, f.err
}

func (f *fakeBookings) GetByReference(reference string, _ services.RequestMeta) (*models.Booking, error) {
	f.lastRef = reference
	return f.booking, f.err
}

func (f *fakeBookings) Cancel(_ context.Context, actorID, reference string, _ services.RequestMeta) (*models.Booking, error) {
	f.lastActor, f.lastRef = actorID, reference
	return f.booking, f.err
}

func (f *fakeBookings) ListRecent(limit, offset int) ([]models.Booking, error) {
	f.lastPage = [2]int{limit, offset}
	return f.list, f.err
}

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func newTestJWT() *jwt.Service {
	return jwt.NewService("handler-access-secret", "handler-refresh-secret", time.Hour, 24*time.Hour)
}

func setupRouter(accounts *fakeAccounts, bookings *fakeBookings) (*gin.Engine, *jwt.Service) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := newTestLogger()
	jwtService := newTestJWT()

	RegisterRoutes(
		router.Group("/api"),
		NewAuthHandler(accounts, logger),
		NewAdminHandler(accounts, bookings, logger),
		NewBookingHandler(bookings, logger),
		middleware.AuthMiddleware(jwtService, logger),
	)
	return router, jwtService
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func tokenFor(t *testing.T, jwtService *jwt.Service, role string) string {
	t.Helper()
	token, err := jwtService.GenerateAccessToken(testUserID, testUsername, role)
	require.NoError(t, err)
	return token
}
