package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staybook/hotel-booking-backend/internal/models"
)

// ErrBookingNotFound is returned when no booking matches the lookup
var ErrBookingNotFound = errors.New("booking not found")

const bookingColumns = `
	id, booking_reference, room_type, amount, guest_name, address, email, phone,
	check_in, check_out, special_requests, number_of_guests,
	booking_status, payment_status, created_at, updated_at`

// BookingRepository handles database operations for bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, booking_reference, room_type, amount, guest_name, address,
			email, phone, check_in, check_out, special_requests,
			number_of_guests, booking_status, payment_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING created_at, updated_at
	`

	// Generate ID if not provided
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.Reference, booking.RoomType, booking.Amount, booking.GuestName, booking.Address,
		booking.Email, booking.Phone, booking.CheckIn, booking.CheckOut, booking.SpecialRequests,
		booking.NumberOfGuests, booking.BookingStatus, booking.PaymentStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByReference retrieves a booking by booking reference
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = $1
	`

	return r.scanBooking(r.db.QueryRow(query, reference))
}

// UpdateStatus stores the booking and payment status of an existing booking
// and refreshes its UpdatedAt
func (r *BookingRepository) UpdateStatus(booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET booking_status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query, booking.ID, booking.BookingStatus, booking.PaymentStatus).Scan(&booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	return nil
}

// CountOverlapping counts non-cancelled bookings of a room type whose stay
// intersects [checkIn, checkOut)
func (r *BookingRepository) CountOverlapping(roomType string, checkIn, checkOut time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE room_type = $1
		  AND booking_status != 'cancelled'
		  AND check_in < $3
		  AND check_out > $2
	`

	var count int
	if err := r.db.QueryRow(query, roomType, checkIn, checkOut).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}

	return count, nil
}

// ListRecent retrieves the newest bookings first
func (r *BookingRepository) ListRecent(limit, offset int) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) scanBooking(row *sql.Row) (*models.Booking, error) {
	booking, err := scanBookingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingRow(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Reference, &b.RoomType, &b.Amount, &b.GuestName, &b.Address, &b.Email, &b.Phone,
		&b.CheckIn, &b.CheckOut, &b.SpecialRequests, &b.NumberOfGuests,
		&b.BookingStatus, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
