// Package bookingform models the public room booking form: its field state,
// the transitions that change it and the single-flight submission to the
// booking API.
package bookingform

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/staybook/hotel-booking-backend/internal/models"
)

// Field names a free-text input of the form
type Field string

const (
	FieldName     Field = "name"
	FieldAddress  Field = "address"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldRequests Field = "requests"
)

// DateField names one of the two stay dates
type DateField string

const (
	FieldCheckIn  DateField = "checkin"
	FieldCheckOut DateField = "checkout"
)

// Status is the submission lifecycle of the form
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// GuestChoices are the options of the number-of-guests select, in display order
var GuestChoices = []string{models.GuestsOne, models.GuestsTwo, models.GuestsThree, models.GuestsMore}

// ValidGuests reports whether v is one of GuestChoices
func ValidGuests(v string) bool {
	return slices.Contains(GuestChoices, v)
}

// State is everything the form shows. RoomType and Price come from the page
// URL and are never edited.
type State struct {
	RoomType string
	Price    string

	Name           string
	Address        string
	Email          string
	Phone          string
	CheckIn        *time.Time
	CheckOut       *time.Time
	Requests       string
	NumberOfGuests string

	Status       Status
	Notification *Notification
}

// New returns an idle form for a room type and price
func New(roomType, price string) State {
	return State{
		RoomType:       roomType,
		Price:          price,
		NumberOfGuests: models.GuestsOne,
	}
}

// FromURL builds an idle form from a page URL carrying roomtype and price query parameters
func FromURL(rawURL string) (State, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return State{}, fmt.Errorf("invalid page URL: %w", err)
	}
	q := u.Query()
	return New(q.Get("roomtype"), q.Get("price")), nil
}

// SubmitEnabled reports whether the submit control accepts a click
func (s State) SubmitEnabled() bool {
	return s.Status != StatusSubmitting
}

// Loading reports whether the submit control shows its loading affordance
func (s State) Loading() bool {
	return s.Status == StatusSubmitting
}

// SubmitLabel is the text of the submit control
func (s State) SubmitLabel() string {
	if s.Status == StatusSubmitting {
		return "Booking ..."
	}
	return "Book Now"
}

// Payload packages the current fields and page context as the API request body
func (s State) Payload() models.BookRoomRequest {
	return models.BookRoomRequest{
		RoomType:       s.RoomType,
		Amount:         s.Price,
		Name:           s.Name,
		Address:        s.Address,
		Email:          s.Email,
		Phone:          s.Phone,
		CheckIn:        s.CheckIn,
		CheckOut:       s.CheckOut,
		Requests:       s.Requests,
		NumberOfGuests: s.NumberOfGuests,
	}
}

// DateLayout is the calendar date format accepted for check-in and check-out
const DateLayout = "2006-01-02"

// ParseDate reads a calendar date as UTC midnight. An empty string is no date.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return &t, nil
}
