package email

import (
	"context"
	"fmt"
	"sync"
)

// MockSender records sent emails for tests.
type MockSender struct {
	mu sync.Mutex

	// SendFunc allows customizing send behavior
	SendFunc func(ctx context.Context, email *Email) (string, error)

	// Sent stores every email passed to Send
	Sent []*Email
}

// Compile-time check that MockSender implements Sender.
var _ Sender = (*MockSender)(nil)

// NewMockSender creates a recording sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the email and returns a synthetic message ID.
func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	m.Sent = append(m.Sent, email)
	return fmt.Sprintf("mock-%d", len(m.Sent)), nil
}
