// Package billing abstracts the payment gateway behind a Provider
// interface so checkout and webhook handling never touch the SDK directly.
package billing

import (
	"context"
	"time"
)

// Provider defines the interface for payment processing.
type Provider interface {
	// CreatePreference creates a hosted payment page for an order and
	// returns the redirect URL. Line items carry the billable quantity and
	// the charged unit price; the gateway rejects zero-price items.
	CreatePreference(ctx context.Context, params PreferenceParams) (*Preference, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic
	// and returns the payment confirmation it carries.
	VerifyWebhookSignature(payload []byte, signature string) (*PaymentNotification, error)
}

// LineItem is one billable line of a payment preference.
type LineItem struct {
	Title     string
	Quantity  int32
	UnitPrice int64
	Currency  string
}

// PreferenceParams holds the input for CreatePreference. ExternalReference
// is the order ID; it comes back in the webhook so the confirmation can be
// matched to the order.
type PreferenceParams struct {
	ExternalReference string
	CustomerEmail     string
	Items             []LineItem
	SuccessURL        string
	CancelURL         string
}

// Preference is a created payment page.
type Preference struct {
	ID        string
	URL       string
	CreatedAt time.Time
}

// PaymentNotification is the verified content of a gateway webhook.
type PaymentNotification struct {
	PaymentID         string
	ExternalReference string
	Paid              bool
}
