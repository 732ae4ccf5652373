package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/staybook/hotel-booking-backend/internal/config"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/pkg/mail"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func testRateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		CodeRequestsPerEmail: 3,
		CodeEmailWindow:      10 * time.Minute,
		CodeRequestsPerIP:    10,
		CodeIPWindow:         time.Hour,
		BookingsPerIP:        10,
		BookingIPWindow:      time.Hour,
		LookupsPerIP:         30,
		LookupIPWindow:       time.Hour,
	}
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// countRows returns a rate limit count result
func countRows(count int, last time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count", "max"}).AddRow(count, last)
}

// recordingMailer keeps every message it is asked to send
type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) GetName() string {
	return "recording"
}

// fakeUserStore is an in-memory UserStore honouring the User schema and
// the unique email index
type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	doc, err := models.UserSchema().Prepare(user)
	if err != nil {
		return err
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return database.ErrEmailTaken
		}
	}

	user.ID = primitive.NewObjectID()
	user.Role = doc["role"].(string)
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrUserNotFound
	}
	if u, ok := f.users[objID]; ok {
		found := *u
		return &found, nil
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			found := *u
			return &found, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUserStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	u.IsVerified = true
	return nil
}

func (f *fakeUserStore) SetCode(ctx context.Context, id primitive.ObjectID, code string) error {
	u, ok := f.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	u.Code = code
	u.CodeAttempts = 0
	return nil
}

func (f *fakeUserStore) IncrementCodeAttempts(ctx context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	u.CodeAttempts++
	return nil
}

func (f *fakeUserStore) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	u, ok := f.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	u.Role = role
	return nil
}
