package bookingform

import (
	"context"
	"errors"
	"sync"
)

// ErrSubmissionInFlight is returned when Submit is called while a request is pending
var ErrSubmissionInFlight = errors.New("a booking submission is already in flight")

// Form owns one form's state and submits it at most once at a time
type Form struct {
	mu    sync.Mutex
	state State
	api   BookingAPI
}

// NewForm creates a form around an initial state
func NewForm(initial State, api BookingAPI) *Form {
	return &Form{
		state: initial,
		api:   api,
	}
}

// State returns a snapshot of the current state
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Dispatch applies an input transition. Submission transitions are owned by Submit.
func (f *Form) Dispatch(a Action) {
	switch a.(type) {
	case SubmitStarted, SubmitSucceeded, SubmitRejected, SubmitErrored:
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Reduce(f.state, a)
}

// Submit checks the input constraints, sends one booking request and returns
// the notification to show. It returns *ConstraintError without sending when
// an input is invalid, and ErrSubmissionInFlight while a request is pending.
func (f *Form) Submit(ctx context.Context) (Notification, error) {
	f.mu.Lock()
	if f.state.Status == StatusSubmitting {
		f.mu.Unlock()
		return Notification{}, ErrSubmissionInFlight
	}
	if errs := f.state.Validate(); len(errs) > 0 {
		f.mu.Unlock()
		return Notification{}, &ConstraintError{Errors: errs}
	}
	f.state = Reduce(f.state, SubmitStarted{})
	payload := f.state.Payload()
	f.mu.Unlock()

	resp, err := f.api.BookRoom(ctx, payload)

	var outcome Action
	switch {
	case err != nil || resp == nil:
		outcome = SubmitErrored{}
	case resp.Success:
		outcome = SubmitSucceeded{}
	default:
		outcome = SubmitRejected{Message: resp.Message}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Reduce(f.state, outcome)
	return *f.state.Notification, nil
}
