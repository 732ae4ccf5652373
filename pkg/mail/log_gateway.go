package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogGateway writes messages to the log instead of sending them (dev mode)
type LogGateway struct {
	logger logrus.FieldLogger
}

// NewLogGateway creates a gateway that only logs
func NewLogGateway(logger logrus.FieldLogger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Send logs the message
func (l *LogGateway) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	l.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	}).Info("📧 DEV MODE: email not sent")

	return nil
}

// GetName returns the gateway name
func (l *LogGateway) GetName() string {
	return "log"
}
