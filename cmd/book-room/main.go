package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/bookingform"
)

func main() {
	var (
		apiURL   string
		page     string
		name     string
		address  string
		email    string
		phone    string
		checkIn  string
		checkOut string
		requests string
		guests   string
	)
	flag.StringVar(&apiURL, "api", envOr("BOOKING_API_URL", "http://localhost:8080"), "booking API base URL")
	flag.StringVar(&page, "page", "", "booking page URL carrying roomtype and price query parameters")
	flag.StringVar(&name, "name", "", "guest name")
	flag.StringVar(&address, "address", "", "guest address")
	flag.StringVar(&email, "email", "", "guest email")
	flag.StringVar(&phone, "phone", "", "guest phone number")
	flag.StringVar(&checkIn, "checkin", "", "check-in date (YYYY-MM-DD)")
	flag.StringVar(&checkOut, "checkout", "", "check-out date (YYYY-MM-DD)")
	flag.StringVar(&requests, "requests", "", "special requests")
	flag.StringVar(&guests, "guests", "1", "number of guests: 1, 2, 3 or 4 for more guests")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	if !bookingform.ValidGuests(guests) {
		fmt.Fprintf(os.Stderr, "guests: must be one of %s\n", strings.Join(bookingform.GuestChoices, ", "))
		os.Exit(2)
	}

	state, err := bookingform.FromURL(page)
	if err != nil {
		logger.WithError(err).Fatal("Invalid -page")
	}

	in, err := bookingform.ParseDate(checkIn)
	if err != nil {
		logger.WithError(err).Fatal("Invalid -checkin")
	}
	out, err := bookingform.ParseDate(checkOut)
	if err != nil {
		logger.WithError(err).Fatal("Invalid -checkout")
	}

	form := bookingform.NewForm(state, bookingform.NewClient(apiURL, nil))
	for _, action := range []bookingform.Action{
		bookingform.FieldChanged{Field: bookingform.FieldName, Value: name},
		bookingform.FieldChanged{Field: bookingform.FieldAddress, Value: address},
		bookingform.FieldChanged{Field: bookingform.FieldEmail, Value: email},
		bookingform.FieldChanged{Field: bookingform.FieldPhone, Value: phone},
		bookingform.FieldChanged{Field: bookingform.FieldRequests, Value: requests},
		bookingform.DateChanged{Field: bookingform.FieldCheckIn, Date: in},
		bookingform.DateChanged{Field: bookingform.FieldCheckOut, Date: out},
		bookingform.GuestsSelected{Value: guests},
	} {
		form.Dispatch(action)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notification, err := form.Submit(ctx)
	var constraintErr *bookingform.ConstraintError
	if errors.As(err, &constraintErr) {
		for _, fe := range constraintErr.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", fe.Field, fe.Message)
		}
		os.Exit(2)
	}
	if err != nil {
		logger.WithError(err).Fatal("Submission failed")
	}

	fmt.Printf("%s: %s\n", notification.Title, notification.Description)
	if notification.Destructive() {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
