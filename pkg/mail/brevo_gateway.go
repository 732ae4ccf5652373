package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBrevoURL is the Brevo v3 transactional email endpoint
const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoConfig holds configuration for the Brevo mail gateway
type BrevoConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
}

// BrevoGateway implements Gateway via the Brevo (formerly Sendinblue) HTTP API
type BrevoGateway struct {
	apiURL    string
	apiKey    string
	fromEmail string
	fromName  string
	client    *http.Client
}

// NewBrevoGateway creates a new Brevo mail gateway client
func NewBrevoGateway(config BrevoConfig) *BrevoGateway {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = DefaultBrevoURL
	}

	return &BrevoGateway{
		apiURL:    apiURL,
		apiKey:    config.APIKey,
		fromEmail: config.FromEmail,
		fromName:  config.FromName,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sendEmailRequest represents the Brevo send email request structure
type sendEmailRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send delivers a message through Brevo
func (b *BrevoGateway) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(sendEmailRequest{
		Sender:      brevoContact{Email: b.fromEmail, Name: b.fromName},
		To:          []brevoContact{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
		}
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, errorBody)
	}

	return nil
}

// GetName returns the gateway name
func (b *BrevoGateway) GetName() string {
	return "brevo"
}
