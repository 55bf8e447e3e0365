package billing

import "errors"

var (
	// ErrInvalidAPIKey is returned when the gateway API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrInvalidWebhookSignature is returned when webhook signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrEmptyPreference is returned when a preference is created with no line items.
	ErrEmptyPreference = errors.New("billing: preference requires at least one line item")

	// ErrZeroPriceItem is returned when a line item carries a non-positive
	// unit price. The gateway rejects these; the pricing layer is supposed
	// to make this unreachable.
	ErrZeroPriceItem = errors.New("billing: line item unit price must be positive")
)
