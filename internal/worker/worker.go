// Package worker consumes order events from NATS and fans out the email
// notifications off the request path.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/feriaverde/marketplace/internal/domain"
	"github.com/feriaverde/marketplace/internal/email"
	"github.com/feriaverde/marketplace/internal/events"
	"github.com/feriaverde/marketplace/internal/telemetry"
)

// Config holds worker configuration.
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// QueueGroup is the NATS queue group; workers in the same group share
	// the subscription so each event is handled once
	QueueGroup string

	// MaxConcurrency is the maximum number of events processed concurrently
	MaxConcurrency int

	// HandleTimeout bounds the processing of one event
	HandleTimeout time.Duration
}

// OrderStore is the read surface the worker needs to compose notifications.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	GetOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error)
	GetVendorsByIDs(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.Vendor, error)
}

// Worker subscribes to order.paid and emails the buyer and every vendor
// with lines on the order.
type Worker struct {
	config   Config
	store    OrderStore
	notifier *email.OrderNotifier
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

// NewWorker creates a notification worker.
func NewWorker(store OrderStore, notifier *email.OrderNotifier, metrics *telemetry.BusinessMetrics, config Config, logger zerolog.Logger) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.QueueGroup == "" {
		config.QueueGroup = "notifications"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 5
	}
	if config.HandleTimeout == 0 {
		config.HandleTimeout = 30 * time.Second
	}

	return &Worker{
		config:   config,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start subscribes and processes events until the context is cancelled.
func (w *Worker) Start(ctx context.Context, conn *nats.Conn) error {
	w.logger.Info().
		Str("worker_id", w.config.WorkerID).
		Str("queue_group", w.config.QueueGroup).
		Int("max_concurrency", w.config.MaxConcurrency).
		Msg("worker starting")

	msgs := make(chan *nats.Msg, 64)
	sub, err := conn.ChanQueueSubscribe(events.SubjectOrderPaid, w.config.QueueGroup, msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.SubjectOrderPaid, err)
	}
	defer sub.Unsubscribe()

	return w.run(ctx, msgs)
}

func (w *Worker) run(ctx context.Context, msgs <-chan *nats.Msg) error {
	sem := make(chan struct{}, w.config.MaxConcurrency)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("worker_id", w.config.WorkerID).Msg("worker shutting down")
			// Take every slot so in-flight handlers finish before we return.
			for i := 0; i < cap(sem); i++ {
				sem <- struct{}{}
			}
			return ctx.Err()

		case msg := <-msgs:
			sem <- struct{}{}
			go func() {
				defer func() { <-sem }()
				w.handle(ctx, msg)
			}()
		}
	}
}

// handle is detached from the shutdown signal so a cancelled context does
// not cut an email mid-send; HandleTimeout still bounds it.
func (w *Worker) handle(ctx context.Context, msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.HandleTimeout)
	defer cancel()

	var evt events.OrderEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		w.logger.Error().Err(err).Str("subject", msg.Subject).Msg("malformed event payload")
		return
	}

	if err := w.notifyOrderPaid(ctx, evt.OrderID); err != nil {
		w.logger.Error().Err(err).Stringer("order_id", evt.OrderID).Msg("notification failed")
		return
	}

	w.logger.Info().Stringer("order_id", evt.OrderID).Msg("notifications sent")
}

// notifyOrderPaid reloads the order and fans out one email to the buyer
// and one to each distinct vendor on the order.
func (w *Worker) notifyOrderPaid(ctx context.Context, orderID uuid.UUID) error {
	order, err := w.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	lines, err := w.store.GetOrderLines(ctx, orderID)
	if err != nil {
		return err
	}

	if err := w.notifier.NotifyCustomer(ctx, order, lines); err != nil {
		w.recordEmail("customer", err)
		return fmt.Errorf("notify customer: %w", err)
	}
	w.recordEmail("customer", nil)

	seen := make(map[uuid.UUID]bool)
	var vendorIDs []uuid.UUID
	for _, l := range lines {
		if !seen[l.VendorID] {
			seen[l.VendorID] = true
			vendorIDs = append(vendorIDs, l.VendorID)
		}
	}
	vendors, err := w.store.GetVendorsByIDs(ctx, vendorIDs)
	if err != nil {
		return err
	}

	for i := range vendors {
		if err := w.notifier.NotifyVendor(ctx, &vendors[i], order, lines); err != nil {
			w.recordEmail("vendor", err)
			return fmt.Errorf("notify vendor %s: %w", vendors[i].ID, err)
		}
		w.recordEmail("vendor", nil)
	}
	return nil
}

func (w *Worker) recordEmail(kind string, err error) {
	if w.metrics == nil {
		return
	}
	if err != nil {
		w.metrics.EmailFailed.WithLabelValues(kind).Inc()
		return
	}
	w.metrics.EmailSent.WithLabelValues(kind).Inc()
}
