package bookingform

// Variant selects how a notification is styled
type Variant string

const (
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Notification texts
const (
	MessageSubmitted    = "Booking is submitted. You will receive an email shortly after payment is made."
	MessageUnsuccessful = "Booking is unsuccessful"
)

// Notification is the one message shown after a submission completes
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Destructive reports whether the notification signals a failed booking
func (n Notification) Destructive() bool {
	return n.Variant == VariantDestructive
}

// SuccessNotification confirms an accepted booking
func SuccessNotification() Notification {
	return Notification{Title: "Success", Description: MessageSubmitted, Variant: VariantSuccess}
}

// RejectedNotification shows the server's refusal message
func RejectedNotification(message string) Notification {
	if message == "" {
		message = MessageUnsuccessful
	}
	return Notification{Title: "Fail", Description: message, Variant: VariantDestructive}
}

// ErrorNotification reports a booking that could not be submitted
func ErrorNotification() Notification {
	return Notification{Title: "Error", Description: MessageUnsuccessful, Variant: VariantDestructive}
}
