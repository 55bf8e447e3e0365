package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing. Simulates successful
// payment flows without calling the gateway.
type MockProvider struct {
	// CreatePreferenceFunc allows customizing preference creation behavior
	CreatePreferenceFunc func(ctx context.Context, params PreferenceParams) (*Preference, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string) (*PaymentNotification, error)

	// Preferences stores created preferences keyed by ID
	Preferences map[string]*Preference

	// LastParams records the params of the most recent CreatePreference call
	LastParams *PreferenceParams

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// Compile-time check that MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Preferences: make(map[string]*Preference),
		CallLog:     []string{},
	}
}

// CreatePreference creates a mock payment preference.
func (m *MockProvider) CreatePreference(ctx context.Context, params PreferenceParams) (*Preference, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreatePreference(%s, %d items)", params.ExternalReference, len(params.Items)))
	m.LastParams = &params

	if m.CreatePreferenceFunc != nil {
		return m.CreatePreferenceFunc(ctx, params)
	}

	if len(params.Items) == 0 {
		return nil, ErrEmptyPreference
	}
	for _, item := range params.Items {
		if item.UnitPrice <= 0 {
			return nil, ErrZeroPriceItem
		}
	}

	pref := &Preference{
		ID:        "pref_" + uuid.New().String(),
		URL:       "https://pay.example.test/" + params.ExternalReference,
		CreatedAt: time.Now(),
	}
	m.Preferences[pref.ID] = pref
	return pref, nil
}

// VerifyWebhookSignature verifies a mock webhook.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string) (*PaymentNotification, error) {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature)
	}
	if signature == "" {
		return nil, ErrInvalidWebhookSignature
	}
	return &PaymentNotification{Paid: true}, nil
}
