package validator

import (
	"errors"
	"regexp"
	"strings"
)

const (
	// MinPhoneDigits is the shortest accepted contact number
	MinPhoneDigits = 7

	// MaxPhoneDigits matches the booking form's phone field length
	MaxPhoneDigits = 10
)

var (
	// ErrInvalidLength indicates phone number length is outside the accepted range
	ErrInvalidLength = errors.New("phone number must be between 7 and 10 digits")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles guest contact number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a guest phone number.
// Accepts format: 9864452384 or 986 445 2384 or 986-445-2384
// Returns sanitized phone number (digits only) and error if invalid.
// The digit count, not the raw length, is checked.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) < MinPhoneDigits || len(sanitized) > MaxPhoneDigits {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize removes spaces, dashes, dots and parentheses
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return replacer.Replace(phone)
}
