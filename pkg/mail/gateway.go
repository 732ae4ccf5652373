package mail

import (
	"context"
	"errors"
)

// ErrEmptyMessage indicates a message without recipient, subject or body
var ErrEmptyMessage = errors.New("recipient, subject and html body are required")

// Message is a single transactional email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Validate checks that the message can be delivered
func (m Message) Validate() error {
	if m.To == "" || m.Subject == "" || m.HTML == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Gateway sends transactional email
type Gateway interface {
	Send(ctx context.Context, msg Message) error
	GetName() string
}
