package providers

import "context"

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers transactional email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// MessageSender delivers a short text message to a phone number.
type MessageSender interface {
	SendText(ctx context.Context, phone, body string) error
}
