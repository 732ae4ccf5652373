package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<p>Hi {{.Username}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>Enter it in the app to activate your account.</p>`))

var bookingTemplate = template.Must(template.New("booking").Parse(`<p>Dear {{.Name}},</p>
<p>We received your booking <strong>{{.Reference}}</strong> for a {{.RoomType}} room.</p>
<ul>
<li>Check-in: {{.CheckIn}}</li>
<li>Check-out: {{.CheckOut}}</li>
<li>Guests: {{.Guests}}</li>
<li>Amount: {{.Amount}}</li>
</ul>
<p>You will receive a confirmation once payment is made.</p>`))

// VerificationData fills the verification code mail
type VerificationData struct {
	Username string
	Code     string
}

// BookingData fills the booking received mail
type BookingData struct {
	Name      string
	Reference string
	RoomType  string
	CheckIn   string
	CheckOut  string
	Guests    int
	Amount    string
}

// VerificationMessage renders the account verification mail
func VerificationMessage(to string, data VerificationData) (Message, error) {
	html, err := render(verificationTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Your verification code", HTML: html}, nil
}

// BookingMessage renders the booking received mail
func BookingMessage(to string, data BookingData) (Message, error) {
	html, err := render(bookingTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: fmt.Sprintf("Booking %s received", data.Reference), HTML: html}, nil
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
