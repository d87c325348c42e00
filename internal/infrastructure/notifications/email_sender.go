package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

// HTTPEmailSender posts messages to a transactional email API that accepts
// {from, to, subject, html, text, reply_to} with a bearer key.
type HTTPEmailSender struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

var _ providers.EmailSender = (*HTTPEmailSender)(nil)

// NewHTTPEmailSender creates an email sender
func NewHTTPEmailSender(apiURL, apiKey, from string) (*HTTPEmailSender, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("EMAIL_API_URL and EMAIL_API_KEY must be set")
	}
	return &HTTPEmailSender{
		apiURL:     apiURL,
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// SendEmail delivers msg
func (s *HTTPEmailSender) SendEmail(ctx context.Context, msg providers.EmailMessage) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	payload, err := json.Marshal(emailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// LogEmailSender writes emails to the log instead of sending them; used in
// development when no email API is configured.
type LogEmailSender struct{}

// SendEmail logs the message
func (LogEmailSender) SendEmail(ctx context.Context, msg providers.EmailMessage) error {
	log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("Email (not sent, no email API configured)")
	return nil
}
