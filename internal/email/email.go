// Package email sends order notifications. A Sender abstracts the
// transport; the notifier composes the messages the worker fans out after
// payment confirmation.
package email

import "context"

// Email represents an email message to be sent.
type Email struct {
	To       []string
	From     string
	Subject  string
	TextBody string
}

// Sender defines the interface for sending emails.
// Implementations can use SMTP, Postmark, Resend, SES, etc.
type Sender interface {
	// Send sends an email message.
	// Returns the message ID from the email provider, if available.
	Send(ctx context.Context, email *Email) (string, error)
}
