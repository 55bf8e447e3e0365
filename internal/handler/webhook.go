package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/feriaverde/marketplace/internal/billing"
	"github.com/feriaverde/marketplace/internal/domain"
	"github.com/feriaverde/marketplace/internal/telemetry"
)

// maxWebhookBodyBytes bounds the webhook payload size.
const maxWebhookBodyBytes = 1 << 16

// WebhookHandler processes payment gateway webhook events.
type WebhookHandler struct {
	provider billing.Provider
	checkout domain.CheckoutService
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(provider billing.Provider, checkout domain.CheckoutService, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		provider: provider,
		checkout: checkout,
		metrics:  metrics,
		logger:   logger,
	}
}

func (h *WebhookHandler) countReceived(result string) {
	if h.metrics != nil {
		h.metrics.WebhookReceived.WithLabelValues(result).Inc()
	}
}

func (h *WebhookHandler) countFailed(reason string) {
	if h.metrics != nil {
		h.metrics.WebhookFailed.WithLabelValues(reason).Inc()
	}
}

// HandlePayment handles POST /webhooks/payment. The gateway retries on
// non-2xx, so only genuinely retryable failures return an error status:
// a malformed payload or bad signature is answered 4xx once and dropped.
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.countFailed("read_body")
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.HandlePayment", "Error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		h.countFailed("missing_signature")
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.HandlePayment", "Missing signature"))
		return
	}

	notification, err := h.provider.VerifyWebhookSignature(payload, signature)
	if err != nil {
		h.countFailed("bad_signature")
		h.logger.Warn().Err(err).Msg("webhook signature verification failed")
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.HandlePayment", "Invalid signature"))
		return
	}

	if !notification.Paid {
		// Event types we do not act on still get a 200 so the gateway
		// stops retrying them.
		h.countReceived("ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	orderID, err := uuid.Parse(notification.ExternalReference)
	if err != nil {
		h.countFailed("bad_reference")
		h.logger.Warn().Str("external_reference", notification.ExternalReference).Msg("webhook carried unparseable order reference")
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.HandlePayment", "Invalid order reference"))
		return
	}

	order, err := h.checkout.ConfirmPayment(ctx, orderID, notification.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			h.countFailed("unknown_order")
			ErrorResponse(w, r, err)
			return
		}
		h.countFailed("confirm")
		h.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("payment confirmation failed")
		ErrorResponse(w, r, err)
		return
	}

	h.countReceived("paid")
	h.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", notification.PaymentID).
		Int64("amount", order.Amount).
		Msg("order payment confirmed")

	w.WriteHeader(http.StatusOK)
}
