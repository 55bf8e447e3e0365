package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrCartEmpty        = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// CartService provides business logic for shopping cart operations.
// Carts are keyed by an opaque session token carried in a cookie.
type CartService interface {
	// GetOrCreateCart retrieves the cart for a session token, creating a new
	// cart (and token) when none exists. Returns the cart and the token the
	// caller should set on the client.
	GetOrCreateCart(ctx context.Context, sessionToken string) (*Cart, string, error)

	// GetCart retrieves an existing cart by session token.
	GetCart(ctx context.Context, sessionToken string) (*Cart, error)

	// AddItem adds a product to the cart, incrementing the quantity when the
	// product is already present.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error

	// SetItemQuantity overrides the quantity of a cart line.
	// A quantity of zero or less removes the line.
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error

	// ClearCart removes all lines from a cart.
	ClearCart(ctx context.Context, cartID uuid.UUID) error

	// ProjectCart prices every cart line against the catalog as of now and
	// returns the priced view. Lines whose product has vanished from the
	// catalog are skipped, not errors. Nothing is persisted; the same
	// pricing functions back both this view and checkout.
	ProjectCart(ctx context.Context, cartID uuid.UUID, now time.Time) (*CartView, error)
}

// Cart is the persisted cart row. Lines live in their own table.
type Cart struct {
	ID           uuid.UUID
	SessionToken string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

// CartLine is a persisted cart line: a product reference and the quantity
// the buyer asked for. Prices are never stored here.
type CartLine struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// CartView is the priced projection of a cart at a point in time.
type CartView struct {
	CartID    uuid.UUID
	Lines     []CartLineView
	Total     int64
	ItemCount int32
}

// CartLineView is one priced line of the projection. UnitPrice is the
// charged price after offer resolution; OriginalPrice is the list price.
type CartLineView struct {
	ProductID        uuid.UUID
	VendorID         uuid.UUID
	ProductName      string
	Quantity         int32
	BillableQuantity int32
	UnitPrice        int64
	OriginalPrice    int64
	OfferKind        OfferKind
	LineTotal        int64
}
