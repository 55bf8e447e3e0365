package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
	"github.com/feriaverde/marketplace/internal/pricing"
	"github.com/feriaverde/marketplace/internal/telemetry"
)

// CartStore is the persistence surface the cart service needs.
// Implemented by *postgres.Store; mocked in tests.
type CartStore interface {
	CreateCart(ctx context.Context, sessionToken string) (*domain.Cart, error)
	GetCartBySessionToken(ctx context.Context, sessionToken string) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	GetCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
	AddCartLine(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	SetCartLineQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
}

type cartService struct {
	store   CartStore
	metrics *telemetry.BusinessMetrics
}

// NewCartService creates the session cart service. Metrics are optional.
func NewCartService(store CartStore, metrics *telemetry.BusinessMetrics) (domain.CartService, error) {
	if store == nil {
		return nil, domain.Invalid("cart.new", "store is required")
	}
	return &cartService{store: store, metrics: metrics}, nil
}

func (s *cartService) GetOrCreateCart(ctx context.Context, sessionToken string) (*domain.Cart, string, error) {
	const op = "cart.getOrCreate"

	if sessionToken != "" {
		cart, err := s.store.GetCartBySessionToken(ctx, sessionToken)
		if err == nil {
			return cart, sessionToken, nil
		}
		if !errors.Is(err, domain.ErrCartNotFound) {
			return nil, "", err
		}
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to generate session token")
	}
	cart, err := s.store.CreateCart(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if s.metrics != nil {
		s.metrics.CartCreated.Inc()
	}
	return cart, token, nil
}

func (s *cartService) GetCart(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	if sessionToken == "" {
		return nil, domain.WrapError(domain.ErrCartNotFound, domain.ENOTFOUND, "cart.get", "no session token")
	}
	return s.store.GetCartBySessionToken(ctx, sessionToken)
}

// AddItem verifies the product still exists in the catalog before touching
// the cart, then increments the line quantity (or inserts the line).
func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	const op = "cart.add"

	if quantity <= 0 {
		return domain.WrapError(domain.ErrInvalidQuantity, domain.EINVALID, op, "quantity must be positive")
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.store.AddCartLine(ctx, cartID, productID, quantity); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CartItemsAdd.Inc()
	}
	return nil
}

// SetItemQuantity overrides a line quantity; zero or less removes the line.
func (s *cartService) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	if quantity <= 0 {
		return s.store.DeleteCartLine(ctx, cartID, productID)
	}
	return s.store.SetCartLineQuantity(ctx, cartID, productID, quantity)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return s.store.DeleteCartLine(ctx, cartID, productID)
}

func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return s.store.ClearCart(ctx, cartID)
}

// ProjectCart prices every line against the catalog as of now. Lines whose
// product has been removed or deactivated are skipped. The projection is
// never persisted; checkout runs the same pricing again at its own instant.
func (s *cartService) ProjectCart(ctx context.Context, cartID uuid.UUID, now time.Time) (*domain.CartView, error) {
	lines, err := s.store.GetCartLines(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{CartID: cartID}
	if len(lines) == 0 {
		return view, nil
	}

	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		product, ok := products[l.ProductID]
		if !ok {
			continue
		}
		lp, err := pricing.PriceProduct(product, l.Quantity, now)
		if err != nil {
			return nil, err
		}
		view.Lines = append(view.Lines, domain.CartLineView{
			ProductID:        product.ID,
			VendorID:         product.VendorID,
			ProductName:      product.Name,
			Quantity:         l.Quantity,
			BillableQuantity: lp.BillableQuantity,
			UnitPrice:        lp.UnitPrice,
			OriginalPrice:    lp.OriginalPrice,
			OfferKind:        lp.OfferKind,
			LineTotal:        lp.LineTotal,
		})
		view.Total += lp.LineTotal
		view.ItemCount += l.Quantity
	}
	return view, nil
}

// generateSessionToken returns an opaque, unguessable cart session token.
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
