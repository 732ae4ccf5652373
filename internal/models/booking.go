package models

import (
	"errors"
	"time"
)

// PaymentStatus represents the payment status of a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Guest choices offered by the booking form. GuestsMore is the
// "For more guests please fill another form" option.
const (
	GuestsOne   = "1"
	GuestsTwo   = "2"
	GuestsThree = "3"
	GuestsMore  = "4"
)

// Booking represents a stored room reservation
type Booking struct {
	ID              string        `json:"id" db:"id"`
	Reference       string        `json:"booking_reference" db:"booking_reference"`
	RoomType        string        `json:"room_type" db:"room_type"`
	Amount          float64       `json:"amount" db:"amount"`
	GuestName       string        `json:"name" db:"guest_name"`
	Address         string        `json:"address" db:"address"`
	Email           string        `json:"email" db:"email"`
	Phone           string        `json:"phone" db:"phone"`
	CheckIn         time.Time     `json:"checkin" db:"check_in"`
	CheckOut        time.Time     `json:"checkout" db:"check_out"`
	SpecialRequests *string       `json:"requests,omitempty" db:"special_requests"`
	NumberOfGuests  int           `json:"number_of_guests" db:"number_of_guests"`
	BookingStatus   BookingStatus `json:"booking_status" db:"booking_status"`
	PaymentStatus   PaymentStatus `json:"payment_status" db:"payment_status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// BookRoomRequest is the body of POST /api/book-room
type BookRoomRequest struct {
	RoomType       string     `json:"roomtype" validate:"required"`
	Amount         string     `json:"amount" validate:"required,numeric"`
	Name           string     `json:"name" validate:"required,max=15"`
	Address        string     `json:"address" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	Phone          string     `json:"phone" validate:"required,max=10"`
	CheckIn        *time.Time `json:"checkin" validate:"required"`
	CheckOut       *time.Time `json:"checkout" validate:"required"`
	Requests       string     `json:"requests"`
	NumberOfGuests string     `json:"numberofguests" validate:"required,oneof=1 2 3 4"`
}

// BookRoomResponse is the reply to POST /api/book-room
type BookRoomResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	BookingReference string `json:"booking_reference,omitempty"`
}

// Nights returns the number of nights between check-in and check-out
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// ErrAlreadyCancelled is returned when cancelling a cancelled booking
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// Cancel cancels the booking
func (b *Booking) Cancel() error {
	if b.BookingStatus == BookingStatusCancelled {
		return ErrAlreadyCancelled
	}

	b.BookingStatus = BookingStatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// BookingSummary is the public view of a booking, without guest contact details
type BookingSummary struct {
	Reference      string        `json:"booking_reference"`
	RoomType       string        `json:"room_type"`
	CheckIn        time.Time     `json:"checkin"`
	CheckOut       time.Time     `json:"checkout"`
	Nights         int           `json:"nights"`
	NumberOfGuests int           `json:"number_of_guests"`
	BookingStatus  BookingStatus `json:"booking_status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

// Summary returns the public view of the booking
func (b *Booking) Summary() BookingSummary {
	return BookingSummary{
		Reference:      b.Reference,
		RoomType:       b.RoomType,
		CheckIn:        b.CheckIn,
		CheckOut:       b.CheckOut,
		Nights:         b.Nights(),
		NumberOfGuests: b.NumberOfGuests,
		BookingStatus:  b.BookingStatus,
		PaymentStatus:  b.PaymentStatus,
	}
}
