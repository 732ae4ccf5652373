package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/staybook/hotel-booking-backend/internal/database"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/staybook/hotel-booking-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingBody() map[string]string {
	return map[string]string{
		"roomtype":       "Deluxe",
		"amount":         "240",
		"name":           "Ashim",
		"address":        "12 Lake Road",
		"email":          "ashim@gmail.com",
		"phone":          "9864452384",
		"checkin":        "2026-11-01T00:00:00Z",
		"checkout":       "2026-11-03T00:00:00Z",
		"requests":       "Late arrival",
		"numberofguests": "2",
	}
}

func TestBookRoom_Success(t *testing.T) {
	bookings := &fakeBookings{booking: &models.Booking{Reference: "BK-ABCD2345"}}
	router, _ := setupRouter(&fakeAccounts{}, bookings)

	w := doJSON(t, router, http.MethodPost, "/api/book-room", bookingBody(), "")

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, services.MessageBookingSubmitted, body["message"])
	assert.Equal(t, "BK-ABCD2345", body["booking_reference"])

	require.Equal(t, 1, bookings.calls)
	assert.Equal(t, "Deluxe", bookings.lastReq.RoomType)
	assert.Equal(t, "Late arrival", bookings.lastReq.Requests)
	require.NotNil(t, bookings.lastReq.CheckIn)
	assert.True(t, bookings.lastReq.CheckIn.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBookRoom_Rejected(t *testing.T) {
	router, _ := setupRouter(&fakeAccounts{}, &fakeBookings{err: services.ErrRoomUnavailable})

	w := doJSON(t, router, http.MethodPost, "/api/book-room", bookingBody(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Room unavailable"}`, w.Body.String())
}

func TestBookRoom_RateLimited(t *testing.T) {
	router, _ := setupRouter(&fakeAccounts{}, &fakeBookings{err: &services.RateLimitError{
		Message:    "Too many booking requests",
		RetryAfter: time.Now().Add(time.Hour),
		Type:       "ip",
	}})

	w := doJSON(t, router, http.MethodPost, "/api/book-room", bookingBody(), "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestBookRoom_InternalError(t *testing.T) {
	router, _ := setupRouter(&fakeAccounts{}, &fakeBookings{err: errors.New("connection refused")})

	w := doJSON(t, router, http.MethodPost, "/api/book-room", bookingBody(), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Booking is unsuccessful"}`, w.Body.String())
}

func TestBookRoom_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"Not JSON", "{"},
		{"Bad date", map[string]string{"checkin": "01/11/2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &fakeBookings{}
			router, _ := setupRouter(&fakeAccounts{}, bookings)

			w := doJSON(t, router, http.MethodPost, "/api/book-room", tt.body, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Invalid request body"}`, w.Body.String())
			assert.Zero(t, bookings.calls)
		})
	}
}

func TestGetBooking(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		bookings := &fakeBookings{booking: &models.Booking{
			Reference: "BK-ABCD2345",
			RoomType:  "Suite",
			GuestName: "Ashim",
			Address:   "12 Lake Road",
			Email:     "ashim@gmail.com",
			Phone:     "9864452384",
		}}
		router, _ := setupRouter(&fakeAccounts{}, bookings)

		w := doJSON(t, router, http.MethodGet, "/api/book-room/bk-abcd2345", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bk-abcd2345", bookings.lastRef)
		body := decode(t, w)
		assert.Equal(t, "Suite", body["room_type"])
		assert.Equal(t, "BK-ABCD2345", body["booking_reference"])
		for _, field := range []string{"name", "address", "email", "phone"} {
			assert.NotContains(t, body, field)
		}
	})

	t.Run("Rate limited", func(t *testing.T) {
		router, _ := setupRouter(&fakeAccounts{}, &fakeBookings{err: &services.RateLimitError{Message: "Too many booking lookups", Type: "ip"}})

		w := doJSON(t, router, http.MethodGet, "/api/book-room/BK-ABCD2345", nil, "")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "rate_limit_exceeded", decode(t, w)["error"])
	})

	t.Run("Not found", func(t *testing.T) {
		router, _ := setupRouter(&fakeAccounts{}, &fakeBookings{err: database.ErrBookingNotFound})

		w := doJSON(t, router, http.MethodGet, "/api/book-room/BK-NOPE0000", nil, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "BOOKING_NOT_FOUND", decode(t, w)["code"])
	})

	t.Run("Failure", func(t *testing.T) {
		router, _ := setupRouter(&fakeAccounts{}, &fakeBookings{err: errors.New("timeout")})

		w := doJSON(t, router, http.MethodGet, "/api/book-room/BK-ABCD2345", nil, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
