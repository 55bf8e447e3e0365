package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
)

// Querier is the full query surface of the store. ExecTx hands the callback
// a Querier bound to the transaction, so the same methods run transactional
// or not depending on where they are called from.
type Querier interface {
	// Vendors
	CreateVendor(ctx context.Context, name, email, phone string) (*domain.Vendor, error)
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	GetVendorsByIDs(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.Vendor, error)

	// Products and offers
	CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	GetProductsByIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	UpsertOffer(ctx context.Context, params domain.UpsertOfferParams) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, productID uuid.UUID) error

	// Carts
	CreateCart(ctx context.Context, sessionToken string) (*domain.Cart, error)
	GetCartBySessionToken(ctx context.Context, sessionToken string) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	GetCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
	AddCartLine(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	SetCartLineQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error

	// Orders
	CreateOrder(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, amount int64) (*domain.Order, error)
	CreateOrderLine(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	GetOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error)
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*domain.Order, error)

	// Transactions
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// Compile-time check that Store implements Querier.
var _ Querier = (*Store)(nil)
