// Package events publishes order lifecycle events over NATS. The HTTP
// process publishes; the notification worker subscribes. Payloads carry
// only identifiers and the few fields workers need without a DB round trip
// for logging; workers reload the order for anything authoritative.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated = "order.created"
	SubjectOrderPaid    = "order.paid"
)

// OrderEvent is the payload published on order subjects.
type OrderEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	BuyerEmail string    `json:"buyer_email"`
	BuyerName  string    `json:"buyer_name"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes order events to NATS.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher wraps an established NATS connection.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// OrderCreated publishes an order.created event.
func (p *Publisher) OrderCreated(ctx context.Context, e OrderEvent) error {
	return p.publish(SubjectOrderCreated, e)
}

// OrderPaid publishes an order.paid event.
func (p *Publisher) OrderPaid(ctx context.Context, e OrderEvent) error {
	return p.publish(SubjectOrderPaid, e)
}

func (p *Publisher) publish(subject string, e OrderEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

// Connect dials NATS with sane reconnect settings for a long-lived service.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
