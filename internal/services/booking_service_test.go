package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCheckIn  = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	testCheckOut = time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	testMeta     = RequestMeta{IP: "198.51.100.7", UserAgent: "Unknown"}
)

type bookingFixture struct {
	service *BookingService
	mailer  *recordingMailer
	mock    sqlmock.Sqlmock
}

func setupBookingTest(t *testing.T) *bookingFixture {
	db, mock := setupTestDB(t)
	logger, _ := newTestLogger()
	mailer := &recordingMailer{}

	service := NewBookingService(
		database.NewBookingRepository(db),
		NewRateLimitService(db, testRateLimitConfig()),
		NewAuditService(db, false),
		mailer,
		map[string]int{"Deluxe": 2, "Suite": 1},
		logger,
	)
	return &bookingFixture{service: service, mailer: mailer, mock: mock}
}

func validBookingRequest() models.BookRoomRequest {
	checkIn, checkOut := testCheckIn, testCheckOut
	return models.BookRoomRequest{
		RoomType:       "Deluxe",
		Amount:         "240",
		Name:           "Ashim",
		Address:        "12 Lake Road",
		Email:          "ashim@gmail.com",
		Phone:          "986-445-2384",
		CheckIn:        &checkIn,
		CheckOut:       &checkOut,
		Requests:       "  Late arrival ",
		NumberOfGuests: "2",
	}
}

func (f *bookingFixture) expectRateLimitOK() {
	f.mock.ExpectQuery("SELECT COUNT(.+) FROM request_rate_limits").
		WithArgs(testMeta.IP, "ip", ActionBooking, sqlmock.AnyArg()).
		WillReturnRows(countRows(0, time.Now()))
}

func (f *bookingFixture) expectOverlap(roomType string, count int) {
	f.mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM bookings`).
		WithArgs(roomType, testCheckIn, testCheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestBook_Success(t *testing.T) {
	f := setupBookingTest(t)
	now := time.Now()

	f.expectRateLimitOK()
	f.expectOverlap("Deluxe", 1)
	f.mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Deluxe", 240.0, "Ashim", "12 Lake Road",
			"ashim@gmail.com", "9864452384", testCheckIn, testCheckOut, "Late arrival",
			2, models.BookingStatusPending, models.PaymentStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	f.mock.ExpectExec("INSERT INTO request_rate_limits").
		WithArgs(testMeta.IP, "ip", ActionBooking).
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking, err := f.service.Book(context.Background(), validBookingRequest(), testMeta)
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	assert.Regexp(t, `^BK-[A-Z2-9]{8}$`, booking.Reference)
	assert.Equal(t, 2, booking.Nights())
	require.NotNil(t, booking.SpecialRequests)
	assert.Equal(t, "Late arrival", *booking.SpecialRequests)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ashim@gmail.com", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Subject, booking.Reference)
}

func TestBook_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.BookRoomRequest)
		message string
	}{
		{"Name too long", func(r *models.BookRoomRequest) { r.Name = "Sixteen chars!!!" }, "name must be at most 15 characters"},
		{"Missing address", func(r *models.BookRoomRequest) { r.Address = "" }, "address is required"},
		{"Bad email", func(r *models.BookRoomRequest) { r.Email = "ashim" }, "enter a valid email"},
		{"Missing check-in", func(r *models.BookRoomRequest) { r.CheckIn = nil }, "checkin is required"},
		{"More guests", func(r *models.BookRoomRequest) { r.NumberOfGuests = models.GuestsMore }, MessageMoreGuests},
		{"Phone letters", func(r *models.BookRoomRequest) { r.Phone = "98644abc" }, "phone number can only contain digits"},
		{"Phone too many digits", func(r *models.BookRoomRequest) { r.Phone = "986-445-23841" }, "phone must be at most 10 characters"},
		{"Phone too few digits", func(r *models.BookRoomRequest) { r.Phone = "98-64" }, "phone number must be between 7 and 10 digits"},
		{"Negative amount", func(r *models.BookRoomRequest) { r.Amount = "-5" }, MessageInvalidAmount},
		{"Checkout before checkin", func(r *models.BookRoomRequest) {
			r.CheckIn, r.CheckOut = r.CheckOut, r.CheckIn
		}, MessageStayOrder},
		{"Same day stay", func(r *models.BookRoomRequest) { r.CheckOut = r.CheckIn }, MessageStayOrder},
		{"Unknown room type", func(r *models.BookRoomRequest) { r.RoomType = "Penthouse" }, MessageRoomUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupBookingTest(t)
			f.expectRateLimitOK()

			req := validBookingRequest()
			tc.mutate(&req)

			_, err := f.service.Book(context.Background(), req, testMeta)

			var rejection *RejectionError
			require.True(t, errors.As(err, &rejection), "got %v", err)
			assert.Equal(t, tc.message, rejection.Message)
			assert.NoError(t, f.mock.ExpectationsWereMet())
			assert.Empty(t, f.mailer.sent)
		})
	}
}

func TestBuildBooking_PhoneFormats(t *testing.T) {
	f := setupBookingTest(t)

	for _, phone := range []string{"9864452384", "986-445-2384", "986 445 2384", "(986) 445.2384"} {
		t.Run(phone, func(t *testing.T) {
			req := validBookingRequest()
			req.Phone = phone

			booking, err := f.service.buildBooking(req)
			require.NoError(t, err)
			assert.Equal(t, "9864452384", booking.Phone)
		})
	}
}

func TestBook_RoomUnavailable(t *testing.T) {
	f := setupBookingTest(t)
	f.expectRateLimitOK()
	f.expectOverlap("Deluxe", 2)

	_, err := f.service.Book(context.Background(), validBookingRequest(), testMeta)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBook_RateLimited(t *testing.T) {
	f := setupBookingTest(t)
	f.mock.ExpectQuery("SELECT COUNT(.+) FROM request_rate_limits").
		WillReturnRows(countRows(10, time.Now()))

	_, err := f.service.Book(context.Background(), validBookingRequest(), testMeta)

	var rateLimitErr *RateLimitError
	assert.True(t, errors.As(err, &rateLimitErr))
}

func TestBook_DatabaseError(t *testing.T) {
	f := setupBookingTest(t)
	f.expectRateLimitOK()
	f.mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM bookings`).WillReturnError(errors.New("connection refused"))

	_, err := f.service.Book(context.Background(), validBookingRequest(), testMeta)
	require.Error(t, err)

	var rejection *RejectionError
	assert.False(t, errors.As(err, &rejection))
}

func TestBook_MailFailureIsNotFatal(t *testing.T) {
	f := setupBookingTest(t)
	f.mailer.err = errors.New("brevo down")
	now := time.Now()

	f.expectRateLimitOK()
	f.expectOverlap("Deluxe", 0)
	f.mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	f.mock.ExpectExec("INSERT INTO request_rate_limits").
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking, err := f.service.Book(context.Background(), validBookingRequest(), testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, booking.Reference)
}

func (f *bookingFixture) expectFetch(reference string, status models.BookingStatus) {
	now := time.Now()
	f.mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE booking_reference = \$1`).
		WithArgs(reference).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_reference", "room_type", "amount", "guest_name", "address", "email", "phone",
			"check_in", "check_out", "special_requests", "number_of_guests",
			"booking_status", "payment_status", "created_at", "updated_at",
		}).AddRow(
			"b3c1a7e2-5d4f-4c8e-9a1b-2f3e4d5c6b7a", reference, "Deluxe", 240.0, "Ashim", "12 Lake Road", "ashim@gmail.com", "9864452384",
			testCheckIn, testCheckOut, nil, 2,
			string(status), "pending", now, now,
		))
}

func TestGetByReference(t *testing.T) {
	t.Run("Records Lookup", func(t *testing.T) {
		f := setupBookingTest(t)

		f.mock.ExpectQuery("SELECT COUNT(.+) FROM request_rate_limits").
			WithArgs(testMeta.IP, "ip", ActionBookingLookup, sqlmock.AnyArg()).
			WillReturnRows(countRows(0, time.Now()))
		f.mock.ExpectExec("INSERT INTO request_rate_limits").
			WithArgs(testMeta.IP, "ip", ActionBookingLookup).
			WillReturnResult(sqlmock.NewResult(1, 1))
		f.expectFetch("BK-ABCD2345", models.BookingStatusPending)

		booking, err := f.service.GetByReference("  bk-abcd2345 ", testMeta)
		require.NoError(t, err)
		assert.Equal(t, "BK-ABCD2345", booking.Reference)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Rate Limited", func(t *testing.T) {
		f := setupBookingTest(t)

		f.mock.ExpectQuery("SELECT COUNT(.+) FROM request_rate_limits").
			WithArgs(testMeta.IP, "ip", ActionBookingLookup, sqlmock.AnyArg()).
			WillReturnRows(countRows(30, time.Now()))

		_, err := f.service.GetByReference("BK-ABCD2345", testMeta)
		var rateLimitErr *RateLimitError
		assert.True(t, errors.As(err, &rateLimitErr))
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestCancel(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupBookingTest(t)
		updated := time.Now()

		f.expectFetch("BK-ABCD2345", models.BookingStatusPending)
		f.mock.ExpectQuery("UPDATE bookings").
			WithArgs("b3c1a7e2-5d4f-4c8e-9a1b-2f3e4d5c6b7a", models.BookingStatusCancelled, models.PaymentStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

		booking, err := f.service.Cancel(context.Background(), "652f1c2e9b1d4a3f5e6d7c8b", "bk-abcd2345", testMeta)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, booking.BookingStatus)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		f := setupBookingTest(t)
		f.expectFetch("BK-ABCD2345", models.BookingStatusCancelled)

		_, err := f.service.Cancel(context.Background(), "652f1c2e9b1d4a3f5e6d7c8b", "BK-ABCD2345", testMeta)
		assert.ErrorIs(t, err, models.ErrAlreadyCancelled)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Unknown Reference", func(t *testing.T) {
		f := setupBookingTest(t)
		f.mock.ExpectQuery("SELECT (.+) FROM bookings").WillReturnError(sql.ErrNoRows)

		_, err := f.service.Cancel(context.Background(), "652f1c2e9b1d4a3f5e6d7c8b", "BK-NOPE0000", testMeta)
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
	})
}

func TestListRecent_ClampsLimit(t *testing.T) {
	f := setupBookingTest(t)

	f.mock.ExpectQuery("SELECT (.+) FROM bookings ORDER BY created_at DESC").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	bookings, err := f.service.ListRecent(500, -3)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
