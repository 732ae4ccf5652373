package bookingform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BookRoom(t *testing.T) {
	var received models.BookRoomRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, BookRoomPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","booking_reference":"BK-ABCD2345"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", server.Client())
	resp, err := client.BookRoom(context.Background(), completeState().Payload())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "BK-ABCD2345", resp.BookingReference)
	assert.Equal(t, "Deluxe", received.RoomType)
	assert.Equal(t, "240", received.Amount)
	require.NotNil(t, received.CheckIn)
	assert.True(t, received.CheckIn.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func TestClient_ApplicationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Room unavailable"}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, nil).BookRoom(context.Background(), completeState().Payload())

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Room unavailable", resp.Message)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errText string
	}{
		{"Server error", http.StatusInternalServerError, `{"success":false,"message":"Booking is unsuccessful"}`, "status 500"},
		{"Rate limited", http.StatusTooManyRequests, `{"success":false}`, "status 429"},
		{"Not JSON", http.StatusOK, `<html>`, "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, server.Client()).BookRoom(context.Background(), completeState().Payload())
			assert.ErrorContains(t, err, tt.errText)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).BookRoom(context.Background(), completeState().Payload())
	assert.ErrorContains(t, err, "failed to send booking request")
}
