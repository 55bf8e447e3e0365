package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
)

// mockCartService implements domain.CartService with overridable funcs.
type mockCartService struct {
	GetOrCreateCartFunc func(ctx context.Context, sessionToken string) (*domain.Cart, string, error)
	GetCartFunc         func(ctx context.Context, sessionToken string) (*domain.Cart, error)
	AddItemFunc         func(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	SetItemQuantityFunc func(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	RemoveItemFunc      func(ctx context.Context, cartID, productID uuid.UUID) error
	ClearCartFunc       func(ctx context.Context, cartID uuid.UUID) error
	ProjectCartFunc     func(ctx context.Context, cartID uuid.UUID, now time.Time) (*domain.CartView, error)
}

var _ domain.CartService = (*mockCartService)(nil)

func (m *mockCartService) GetOrCreateCart(ctx context.Context, sessionToken string) (*domain.Cart, string, error) {
	return m.GetOrCreateCartFunc(ctx, sessionToken)
}

func (m *mockCartService) GetCart(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	return m.GetCartFunc(ctx, sessionToken)
}

func (m *mockCartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	return m.AddItemFunc(ctx, cartID, productID, quantity)
}

func (m *mockCartService) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	return m.SetItemQuantityFunc(ctx, cartID, productID, quantity)
}

func (m *mockCartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return m.RemoveItemFunc(ctx, cartID, productID)
}

func (m *mockCartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return m.ClearCartFunc(ctx, cartID)
}

func (m *mockCartService) ProjectCart(ctx context.Context, cartID uuid.UUID, now time.Time) (*domain.CartView, error) {
	return m.ProjectCartFunc(ctx, cartID, now)
}

// mockCheckoutService implements domain.CheckoutService with overridable funcs.
type mockCheckoutService struct {
	CheckoutFunc       func(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, now time.Time) (*domain.CheckoutResult, error)
	ConfirmPaymentFunc func(ctx context.Context, orderID uuid.UUID, paymentID string) (*domain.Order, error)
	GetOrderFunc       func(ctx context.Context, orderID uuid.UUID) (*domain.Order, []domain.OrderLine, error)
}

var _ domain.CheckoutService = (*mockCheckoutService)(nil)

func (m *mockCheckoutService) Checkout(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, now time.Time) (*domain.CheckoutResult, error) {
	return m.CheckoutFunc(ctx, cartID, buyer, now)
}

func (m *mockCheckoutService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentID string) (*domain.Order, error) {
	return m.ConfirmPaymentFunc(ctx, orderID, paymentID)
}

func (m *mockCheckoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, []domain.OrderLine, error) {
	return m.GetOrderFunc(ctx, orderID)
}
