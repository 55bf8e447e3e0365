package billing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using Stripe Checkout Sessions as the
// hosted payment page.
type StripeProvider struct {
	webhookSecret string
}

// Compile-time check that StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe-backed billing provider.
func NewStripeProvider(apiKey, webhookSecret string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	stripe.Key = apiKey
	return &StripeProvider{webhookSecret: webhookSecret}, nil
}

// CreatePreference creates a Checkout Session with one price-data line item
// per billable order line.
func (s *StripeProvider) CreatePreference(ctx context.Context, params PreferenceParams) (*Preference, error) {
	if len(params.Items) == 0 {
		return nil, ErrEmptyPreference
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(params.Items))
	for i, item := range params.Items {
		if item.UnitPrice <= 0 {
			return nil, ErrZeroPriceItem
		}
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(item.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Title),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		}
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		ClientReferenceID: stripe.String(params.ExternalReference),
		CustomerEmail:     stripe.String(params.CustomerEmail),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, err
	}

	return &Preference{
		ID:        sess.ID,
		URL:       sess.URL,
		CreatedAt: time.Unix(sess.Created, 0),
	}, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header and extracts
// the payment confirmation from checkout.session.completed events.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) (*PaymentNotification, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, ErrInvalidWebhookSignature
	}

	if event.Type != "checkout.session.completed" {
		return &PaymentNotification{}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, err
	}

	n := &PaymentNotification{
		ExternalReference: sess.ClientReferenceID,
		Paid:              sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if sess.PaymentIntent != nil {
		n.PaymentID = sess.PaymentIntent.ID
	}
	return n, nil
}
