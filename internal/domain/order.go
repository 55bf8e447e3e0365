package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// ORDER DOMAIN ERRORS
// =============================================================================

var (
	ErrOrderNotFound    = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrOrderAlreadyPaid = &Error{Code: ECONFLICT, Message: "Order already paid"}
)

// CheckoutService turns a cart into a persisted order plus a payment
// preference, and records payment confirmations.
type CheckoutService interface {
	// Checkout materializes the cart into an order with frozen order lines,
	// inside one transaction, and creates a payment preference from the
	// billable line items. The cart is left intact so a failed checkout can
	// be retried; it is cleared only when payment is confirmed.
	Checkout(ctx context.Context, cartID uuid.UUID, buyer BuyerDetails, now time.Time) (*CheckoutResult, error)

	// ConfirmPayment marks an order paid exactly once, clears the buyer's
	// cart and publishes the paid event for notification fan-out. Repeated
	// confirmations for the same order are idempotent.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentID string) (*Order, error)

	// GetOrder retrieves an order with its lines.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, []OrderLine, error)
}

// BuyerDetails is the checkout form input.
type BuyerDetails struct {
	Name    string `validate:"required,min=2,max=120"`
	Email   string `validate:"required,email"`
	Address string `validate:"required,min=5,max=300"`
	Phone   string `validate:"required,min=7,max=32"`
}

// Order is the persisted order header. Amount is the grand total charged,
// in minor currency units.
type Order struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	Name      string
	Email     string
	Address   string
	Phone     string
	Amount    int64
	Paid      bool
	PaymentID pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// OrderLine freezes the pricing verdict for one product at checkout time.
// UnitPrice is the charged price, OriginalPrice the list price at that
// moment, DiscountPercentage the applied percentage (50 recorded for
// two-for-one by convention, 0 when no discount), and Quantity the billable
// quantity. Later offer edits never touch these rows.
type OrderLine struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	ProductID          uuid.UUID
	VendorID           uuid.UUID
	ProductName        string
	UnitPrice          int64
	OriginalPrice      int64
	DiscountPercentage int32
	Quantity           int32
	LineTotal          int64
	CreatedAt          pgtype.Timestamptz
}

// CheckoutResult is what a successful checkout hands back to the handler:
// the persisted order, its frozen lines, and the gateway redirect URL.
type CheckoutResult struct {
	Order      *Order
	Lines      []OrderLine
	PaymentURL string
}
