package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/billing"
	"github.com/feriaverde/marketplace/internal/domain"
	"github.com/feriaverde/marketplace/internal/events"
	"github.com/feriaverde/marketplace/internal/postgres"
	"github.com/feriaverde/marketplace/internal/pricing"
	"github.com/feriaverde/marketplace/internal/telemetry"
)

// EventPublisher is the slice of the events publisher checkout needs.
type EventPublisher interface {
	OrderCreated(ctx context.Context, e events.OrderEvent) error
	OrderPaid(ctx context.Context, e events.OrderEvent) error
}

// CheckoutConfig carries the gateway redirect targets and currency.
type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type checkoutService struct {
	store     postgres.Querier
	provider  billing.Provider
	publisher EventPublisher
	metrics   *telemetry.BusinessMetrics
	validate  *validator.Validate
	cfg       CheckoutConfig
}

// NewCheckoutService creates the checkout/materialization service.
// The publisher and metrics are optional; everything else is required.
func NewCheckoutService(store postgres.Querier, provider billing.Provider, publisher EventPublisher, metrics *telemetry.BusinessMetrics, cfg CheckoutConfig) (domain.CheckoutService, error) {
	const op = "checkout.new"

	if store == nil {
		return nil, domain.Invalid(op, "store is required")
	}
	if provider == nil {
		return nil, domain.Invalid(op, "billing provider is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "clp"
	}
	return &checkoutService{
		store:     store,
		provider:  provider,
		publisher: publisher,
		metrics:   metrics,
		validate:  validator.New(),
		cfg:       cfg,
	}, nil
}

// Checkout materializes the cart into an order. Everything runs in one
// transaction: pricing each line with the same functions the cart view
// uses, inserting the order and its frozen lines, and creating the payment
// preference. A gateway refusal rolls the whole thing back, so a failed
// checkout leaves no partial order and an untouched cart.
func (s *checkoutService) Checkout(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, now time.Time) (*domain.CheckoutResult, error) {
	const op = "checkout.checkout"

	if err := s.validate.Struct(buyer); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "invalid buyer details")
	}

	var result domain.CheckoutResult
	var offerKinds []domain.OfferKind
	err := s.store.ExecTx(ctx, func(q postgres.Querier) error {
		if _, err := q.GetCart(ctx, cartID); err != nil {
			return err
		}
		cartLines, err := q.GetCartLines(ctx, cartID)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(cartLines))
		for i, l := range cartLines {
			ids[i] = l.ProductID
		}
		products, err := q.GetProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}

		type pricedLine struct {
			product *domain.Product
			lp      pricing.LinePricing
		}
		var priced []pricedLine
		var total int64
		for _, l := range cartLines {
			product, ok := products[l.ProductID]
			if !ok {
				// Product left the catalog since it was added; the line is
				// dropped here exactly as the cart view drops it.
				continue
			}
			lp, err := pricing.PriceProduct(product, l.Quantity, now)
			if err != nil {
				return err
			}
			priced = append(priced, pricedLine{product: product, lp: lp})
			total += lp.LineTotal
		}
		if len(priced) == 0 {
			return domain.WrapError(domain.ErrCartEmpty, domain.EINVALID, op, "nothing to check out")
		}

		order, err := q.CreateOrder(ctx, cartID, buyer, total)
		if err != nil {
			return err
		}

		items := make([]billing.LineItem, 0, len(priced))
		lines := make([]domain.OrderLine, 0, len(priced))
		for _, pl := range priced {
			line, err := q.CreateOrderLine(ctx, domain.OrderLine{
				OrderID:            order.ID,
				ProductID:          pl.product.ID,
				VendorID:           pl.product.VendorID,
				ProductName:        pl.product.Name,
				UnitPrice:          pl.lp.UnitPrice,
				OriginalPrice:      pl.lp.OriginalPrice,
				DiscountPercentage: pl.lp.DiscountPercentage,
				Quantity:           pl.lp.BillableQuantity,
				LineTotal:          pl.lp.LineTotal,
			})
			if err != nil {
				return err
			}
			lines = append(lines, *line)
			offerKinds = append(offerKinds, pl.lp.OfferKind)
			items = append(items, billing.LineItem{
				Title:     pl.product.Name,
				Quantity:  pl.lp.BillableQuantity,
				UnitPrice: pl.lp.UnitPrice,
				Currency:  s.cfg.Currency,
			})
		}

		pref, err := s.provider.CreatePreference(ctx, billing.PreferenceParams{
			ExternalReference: order.ID.String(),
			CustomerEmail:     buyer.Email,
			Items:             items,
			SuccessURL:        s.cfg.SuccessURL,
			CancelURL:         s.cfg.CancelURL,
		})
		if err != nil {
			return domain.WrapError(err, domain.EPAYMENT, op, "payment gateway rejected the order")
		}

		result = domain.CheckoutResult{
			Order:      order,
			Lines:      lines,
			PaymentURL: pref.URL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordOrderCreated(&result, offerKinds)
	if s.publisher != nil {
		// Fan-out is best effort; the order itself is already committed.
		_ = s.publisher.OrderCreated(ctx, events.OrderEvent{
			OrderID:    result.Order.ID,
			BuyerEmail: result.Order.Email,
			BuyerName:  result.Order.Name,
			Amount:     result.Order.Amount,
		})
	}
	return &result, nil
}

// ConfirmPayment marks the order paid and clears its cart in one
// transaction, then publishes order.paid. A failed confirmation rolls the
// paid flag back, so the gateway retry repeats the whole thing; a repeat of
// a committed confirmation returns the order unchanged without publishing
// again.
func (s *checkoutService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.ExecTx(ctx, func(q postgres.Querier) error {
		o, err := q.MarkOrderPaid(ctx, orderID, paymentID)
		if err != nil {
			return err
		}
		// The buyer got what they paid for; the cart has served its purpose.
		if err := q.ClearCart(ctx, o.CartID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderAlreadyPaid) {
			return s.store.GetOrder(ctx, orderID)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersPaid.Inc()
	}
	if s.publisher != nil {
		_ = s.publisher.OrderPaid(ctx, events.OrderEvent{
			OrderID:    order.ID,
			BuyerEmail: order.Email,
			BuyerName:  order.Name,
			Amount:     order.Amount,
		})
	}
	return order, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, []domain.OrderLine, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.store.GetOrderLines(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}

func (s *checkoutService) recordOrderCreated(result *domain.CheckoutResult, offerKinds []domain.OfferKind) {
	if s.metrics == nil {
		return
	}
	s.metrics.OrdersCreated.Inc()
	s.metrics.OrderValue.Observe(float64(result.Order.Amount))
	for _, kind := range offerKinds {
		label := string(kind)
		if label == "" {
			label = "none"
		}
		s.metrics.OrderLinesByOffer.WithLabelValues(label).Inc()
	}
}
