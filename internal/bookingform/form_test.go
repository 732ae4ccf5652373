package bookingform

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/staybook/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI answers with a fixed response, optionally holding each call until released
type stubAPI struct {
	mu       sync.Mutex
	calls    int
	payloads []models.BookRoomRequest
	resp     *models.BookRoomResponse
	err      error
	entered  chan struct{}
	release  chan struct{}
}

func (s *stubAPI) BookRoom(ctx context.Context, req models.BookRoomRequest) (*models.BookRoomResponse, error) {
	s.mu.Lock()
	s.calls++
	s.payloads = append(s.payloads, req)
	s.mu.Unlock()

	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	return s.resp, s.err
}

func (s *stubAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSubmit_Success(t *testing.T) {
	api := &stubAPI{resp: &models.BookRoomResponse{Success: true}}
	form := NewForm(completeState(), api)

	n, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Notification{
		Title:       "Success",
		Description: "Booking is submitted. You will receive an email shortly after payment is made.",
		Variant:     VariantSuccess,
	}, n)
	assert.False(t, n.Destructive())
	assert.Equal(t, StatusSucceeded, form.State().Status)
	assert.Equal(t, 1, api.callCount())
}

func TestSubmit_Rejected(t *testing.T) {
	api := &stubAPI{resp: &models.BookRoomResponse{Success: false, Message: "Room unavailable"}}
	form := NewForm(completeState(), api)

	n, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.True(t, n.Destructive())
	assert.Equal(t, "Fail", n.Title)
	assert.Contains(t, n.Description, "Room unavailable")
	assert.Equal(t, StatusFailed, form.State().Status)
}

func TestSubmit_RejectedWithoutMessage(t *testing.T) {
	form := NewForm(completeState(), &stubAPI{resp: &models.BookRoomResponse{}})

	n, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Booking is unsuccessful", n.Description)
}

func TestSubmit_TransportError(t *testing.T) {
	form := NewForm(completeState(), &stubAPI{err: errors.New("connection refused")})

	n, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ErrorNotification(), n)
	assert.True(t, form.State().SubmitEnabled())
}

func TestSubmit_ConstraintsBlockRequest(t *testing.T) {
	api := &stubAPI{resp: &models.BookRoomResponse{Success: true}}
	form := NewForm(New("Deluxe", "240"), api)

	_, err := form.Submit(context.Background())

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.NotEmpty(t, constraintErr.Errors)
	assert.Zero(t, api.callCount())
	assert.Equal(t, StatusIdle, form.State().Status)
}

func TestSubmit_SingleFlight(t *testing.T) {
	api := &stubAPI{
		resp:    &models.BookRoomResponse{Success: true},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	form := NewForm(completeState(), api)

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-api.entered
	state := form.State()
	assert.False(t, state.SubmitEnabled())
	assert.Equal(t, "Booking ...", state.SubmitLabel())

	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// Inputs stay editable while the request is pending
	form.Dispatch(FieldChanged{Field: FieldRequests, Value: "Late arrival"})

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.callCount())
	assert.Empty(t, api.payloads[0].Requests)

	// Manual resubmission after completion sends a new request
	api.entered = nil
	_, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, api.callCount())
	assert.Equal(t, "Late arrival", api.payloads[1].Requests)
}

func TestDispatch_IgnoresSubmissionTransitions(t *testing.T) {
	form := NewForm(completeState(), &stubAPI{})

	form.Dispatch(SubmitStarted{})
	form.Dispatch(SubmitRejected{Message: "forged"})

	state := form.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Nil(t, state.Notification)
}
