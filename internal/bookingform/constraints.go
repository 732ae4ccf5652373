package bookingform

import (
	"time"

	"github.com/staybook/hotel-booking-backend/pkg/validator"
)

// ConstraintError lists the inputs that block submission
type ConstraintError struct {
	Errors []validator.FieldError
}

func (e *ConstraintError) Error() string {
	if len(e.Errors) == 0 {
		return "form is incomplete"
	}
	return e.Errors[0].Message
}

// nativeInputs mirrors the required and maxLength markers of the form inputs
type nativeInputs struct {
	Name           string     `json:"name" validate:"required,max=15"`
	Address        string     `json:"address" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	Phone          string     `json:"phone" validate:"required,max=10"`
	CheckIn        *time.Time `json:"checkin" validate:"required"`
	CheckOut       *time.Time `json:"checkout" validate:"required"`
	NumberOfGuests string     `json:"numberofguests" validate:"required"`
}

// Validate runs the input-level constraints. Date order is not checked here.
func (s State) Validate() []validator.FieldError {
	return validator.Struct(nativeInputs{
		Name:           s.Name,
		Address:        s.Address,
		Email:          s.Email,
		Phone:          s.Phone,
		CheckIn:        s.CheckIn,
		CheckOut:       s.CheckOut,
		NumberOfGuests: s.NumberOfGuests,
	})
}
