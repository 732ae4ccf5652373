package bookingform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/staybook/hotel-booking-backend/internal/models"
)

// BookRoomPath is the booking endpoint relative to the API base URL
const BookRoomPath = "/api/book-room"

// BookingAPI creates bookings
type BookingAPI interface {
	BookRoom(ctx context.Context, req models.BookRoomRequest) (*models.BookRoomResponse, error)
}

// Client calls the booking API over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a booking API client. A nil httpClient uses http.DefaultClient;
// requests are bounded only by the caller's context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BookRoom posts one booking request. Any non-2xx status or undecodable body is an error.
func (c *Client) BookRoom(ctx context.Context, payload models.BookRoomRequest) (*models.BookRoomResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+BookRoomPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send booking request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("booking API error: status %d", resp.StatusCode)
	}

	var result models.BookRoomResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode booking response: %w", err)
	}

	return &result, nil
}
