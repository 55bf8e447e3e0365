package service

import (
	"context"
	"maps"
	"sort"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
	"github.com/feriaverde/marketplace/internal/postgres"
)

// mockStore is an in-memory postgres.Querier. ExecTx snapshots the order
// tables and restores them on error, mimicking a rollback.
type mockStore struct {
	carts        map[uuid.UUID]*domain.Cart
	cartsByToken map[string]uuid.UUID
	cartLines    map[uuid.UUID]map[uuid.UUID]*domain.CartLine
	products     map[uuid.UUID]*domain.Product
	vendors      map[uuid.UUID]*domain.Vendor
	orders       map[uuid.UUID]*domain.Order
	orderLines   map[uuid.UUID][]domain.OrderLine

	// ClearCartFunc, when set, intercepts ClearCart.
	ClearCartFunc func(ctx context.Context, cartID uuid.UUID) error
}

var _ postgres.Querier = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		carts:        make(map[uuid.UUID]*domain.Cart),
		cartsByToken: make(map[string]uuid.UUID),
		cartLines:    make(map[uuid.UUID]map[uuid.UUID]*domain.CartLine),
		products:     make(map[uuid.UUID]*domain.Product),
		vendors:      make(map[uuid.UUID]*domain.Vendor),
		orders:       make(map[uuid.UUID]*domain.Order),
		orderLines:   make(map[uuid.UUID][]domain.OrderLine),
	}
}

// Vendors

func (m *mockStore) CreateVendor(ctx context.Context, name, email, phone string) (*domain.Vendor, error) {
	v := &domain.Vendor{ID: uuid.New(), Name: name, Email: email, IsActive: true}
	m.vendors[v.ID] = v
	return v, nil
}

func (m *mockStore) GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	v, ok := m.vendors[vendorID]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return v, nil
}

func (m *mockStore) GetVendorsByIDs(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.Vendor, error) {
	var out []domain.Vendor
	for _, id := range vendorIDs {
		if v, ok := m.vendors[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

// Products and offers

func (m *mockStore) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	p := &domain.Product{
		ID:        uuid.New(),
		VendorID:  params.VendorID,
		Name:      params.Name,
		ListPrice: params.ListPrice,
		IsActive:  true,
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockStore) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[productID]
	if !ok || !p.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (m *mockStore) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStore) GetProductsByIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := make(map[uuid.UUID]*domain.Product)
	for _, id := range productIDs {
		if p, ok := m.products[id]; ok && p.IsActive {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockStore) UpsertOffer(ctx context.Context, params domain.UpsertOfferParams) (*domain.Offer, error) {
	p, ok := m.products[params.ProductID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	o := &domain.Offer{
		ID:                 uuid.New(),
		ProductID:          params.ProductID,
		Kind:               params.Kind,
		DiscountPercentage: params.DiscountPercentage,
		FixedPrice:         params.FixedPrice,
		IsActive:           params.IsActive,
		StartsAt:           params.StartsAt,
		EndsAt:             params.EndsAt,
	}
	p.Offer = o
	return o, nil
}

func (m *mockStore) DeleteOffer(ctx context.Context, productID uuid.UUID) error {
	p, ok := m.products[productID]
	if !ok || p.Offer == nil {
		return domain.ErrOfferNotFound
	}
	p.Offer = nil
	return nil
}

// Carts

func (m *mockStore) CreateCart(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	c := &domain.Cart{ID: uuid.New(), SessionToken: sessionToken}
	m.carts[c.ID] = c
	m.cartsByToken[sessionToken] = c.ID
	m.cartLines[c.ID] = make(map[uuid.UUID]*domain.CartLine)
	return c, nil
}

func (m *mockStore) GetCartBySessionToken(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	id, ok := m.cartsByToken[sessionToken]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return m.carts[id], nil
}

func (m *mockStore) GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return c, nil
}

func (m *mockStore) GetCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	lines := m.cartLines[cartID]
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return out, nil
}

func (m *mockStore) AddCartLine(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	lines, ok := m.cartLines[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if l, ok := lines[productID]; ok {
		l.Quantity += quantity
		return nil
	}
	lines[productID] = &domain.CartLine{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: quantity}
	return nil
}

func (m *mockStore) SetCartLineQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	lines, ok := m.cartLines[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	l, ok := lines[productID]
	if !ok {
		return domain.ErrCartItemNotFound
	}
	l.Quantity = quantity
	return nil
}

func (m *mockStore) DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) error {
	lines, ok := m.cartLines[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if _, ok := lines[productID]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(lines, productID)
	return nil
}

func (m *mockStore) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, cartID)
	}
	if _, ok := m.cartLines[cartID]; !ok {
		return domain.ErrCartNotFound
	}
	m.cartLines[cartID] = make(map[uuid.UUID]*domain.CartLine)
	return nil
}

// Orders

func (m *mockStore) CreateOrder(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, amount int64) (*domain.Order, error) {
	o := &domain.Order{
		ID:      uuid.New(),
		CartID:  cartID,
		Name:    buyer.Name,
		Email:   buyer.Email,
		Address: buyer.Address,
		Phone:   buyer.Phone,
		Amount:  amount,
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockStore) CreateOrderLine(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error) {
	line.ID = uuid.New()
	m.orderLines[line.OrderID] = append(m.orderLines[line.OrderID], line)
	return &line, nil
}

func (m *mockStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockStore) GetOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	return m.orderLines[orderID], nil
}

func (m *mockStore) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*domain.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Paid {
		return nil, domain.ErrOrderAlreadyPaid
	}
	o.Paid = true
	o.PaymentID.String = paymentID
	o.PaymentID.Valid = true
	return o, nil
}

// ExecTx snapshots cart and order state and restores it when fn fails.
// Order rows are copied by value so in-place mutations roll back too.
func (m *mockStore) ExecTx(ctx context.Context, fn func(postgres.Querier) error) error {
	ordersBefore := make(map[uuid.UUID]*domain.Order, len(m.orders))
	for id, o := range m.orders {
		c := *o
		ordersBefore[id] = &c
	}
	orderLinesBefore := maps.Clone(m.orderLines)
	cartLinesBefore := make(map[uuid.UUID]map[uuid.UUID]*domain.CartLine, len(m.cartLines))
	for id, lines := range m.cartLines {
		cartLinesBefore[id] = maps.Clone(lines)
	}

	if err := fn(m); err != nil {
		m.orders = ordersBefore
		m.orderLines = orderLinesBefore
		m.cartLines = cartLinesBefore
		return err
	}
	return nil
}
