package bookingform

import "time"

// Action is a state transition of the form
type Action interface {
	apply(s State) State
}

// FieldChanged sets a free-text field
type FieldChanged struct {
	Field Field
	Value string
}

// DateChanged sets or clears a stay date
type DateChanged struct {
	Field DateField
	Date  *time.Time
}

// GuestsSelected picks one of GuestChoices
type GuestsSelected struct {
	Value string
}

// SubmitStarted marks a request as in flight
type SubmitStarted struct{}

// SubmitSucceeded records a booking the server accepted
type SubmitSucceeded struct{}

// SubmitRejected records an application-level refusal with the server's message
type SubmitRejected struct {
	Message string
}

// SubmitErrored records a transport or protocol failure
type SubmitErrored struct{}

// Reduce returns the state after applying a. s is not modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a FieldChanged) apply(s State) State {
	switch a.Field {
	case FieldName:
		s.Name = a.Value
	case FieldAddress:
		s.Address = a.Value
	case FieldEmail:
		s.Email = a.Value
	case FieldPhone:
		s.Phone = a.Value
	case FieldRequests:
		s.Requests = a.Value
	}
	return s
}

func (a DateChanged) apply(s State) State {
	var date *time.Time
	if a.Date != nil {
		d := *a.Date
		date = &d
	}

	switch a.Field {
	case FieldCheckIn:
		s.CheckIn = date
	case FieldCheckOut:
		s.CheckOut = date
	}
	return s
}

func (a GuestsSelected) apply(s State) State {
	if ValidGuests(a.Value) {
		s.NumberOfGuests = a.Value
	}
	return s
}

func (SubmitStarted) apply(s State) State {
	s.Status = StatusSubmitting
	s.Notification = nil
	return s
}

func (SubmitSucceeded) apply(s State) State {
	s.Status = StatusSucceeded
	n := SuccessNotification()
	s.Notification = &n
	return s
}

func (a SubmitRejected) apply(s State) State {
	s.Status = StatusFailed
	n := RejectedNotification(a.Message)
	s.Notification = &n
	return s
}

func (SubmitErrored) apply(s State) State {
	s.Status = StatusFailed
	n := ErrorNotification()
	s.Notification = &n
	return s
}
