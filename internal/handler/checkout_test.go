package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaverde/marketplace/internal/domain"
)

func TestCheckout_ReturnsOrderAndPaymentURL(t *testing.T) {
	cartID := uuid.New()
	orderID := uuid.New()

	carts := &mockCartService{
		GetCartFunc: func(ctx context.Context, token string) (*domain.Cart, error) {
			assert.Equal(t, "session-abc", token)
			return &domain.Cart{ID: cartID, SessionToken: token}, nil
		},
	}

	var gotBuyer domain.BuyerDetails
	checkout := &mockCheckoutService{
		CheckoutFunc: func(ctx context.Context, gotCartID uuid.UUID, buyer domain.BuyerDetails, now time.Time) (*domain.CheckoutResult, error) {
			assert.Equal(t, cartID, gotCartID)
			gotBuyer = buyer
			return &domain.CheckoutResult{
				Order: &domain.Order{
					ID:     orderID,
					CartID: cartID,
					Name:   buyer.Name,
					Email:  buyer.Email,
					Amount: 15000,
				},
				Lines: []domain.OrderLine{{
					OrderID:     orderID,
					ProductName: "Cazuela de vacuno",
					UnitPrice:   5000,
					Quantity:    3,
					LineTotal:   15000,
				}},
				PaymentURL: "https://pay.example.test/" + orderID.String(),
			}, nil
		},
	}

	h := NewCheckoutHandler(carts, checkout)

	body := `{"name":"Violeta Parra","email":"violeta@example.test","address":"Av. Italia 1234, Santiago","phone":"+56911112222"}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "session-abc"})
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Violeta Parra", gotBuyer.Name)

	var resp struct {
		Order      orderResponse `json:"order"`
		PaymentURL string        `json:"payment_url"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, orderID, resp.Order.ID)
	assert.Equal(t, int64(15000), resp.Order.Amount)
	require.Len(t, resp.Order.Lines, 1)
	assert.Equal(t, "Cazuela de vacuno", resp.Order.Lines[0].ProductName)
	assert.Contains(t, resp.PaymentURL, orderID.String())
}

func TestCheckout_WithoutCartCookie(t *testing.T) {
	h := NewCheckoutHandler(&mockCartService{}, &mockCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	carts := &mockCartService{
		GetCartFunc: func(ctx context.Context, token string) (*domain.Cart, error) {
			return &domain.Cart{ID: uuid.New()}, nil
		},
	}
	checkout := &mockCheckoutService{
		CheckoutFunc: func(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, now time.Time) (*domain.CheckoutResult, error) {
			return nil, domain.ErrCartEmpty
		},
	}

	h := NewCheckoutHandler(carts, checkout)

	body := `{"name":"Violeta Parra","email":"violeta@example.test","address":"Av. Italia 1234, Santiago","phone":"+56911112222"}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "session-abc"})
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	orderID := uuid.New()

	checkout := &mockCheckoutService{
		GetOrderFunc: func(ctx context.Context, gotOrderID uuid.UUID) (*domain.Order, []domain.OrderLine, error) {
			require.Equal(t, orderID, gotOrderID)
			return &domain.Order{ID: orderID, Amount: 10600, Paid: true},
				[]domain.OrderLine{{OrderID: orderID, ProductName: "Humitas", Quantity: 2, UnitPrice: 5000, LineTotal: 10000}},
				nil
		},
	}

	h := NewCheckoutHandler(&mockCartService{}, checkout)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()

	h.GetOrder(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, orderID, resp.ID)
	assert.True(t, resp.Paid)
	require.Len(t, resp.Lines, 1)
}

func TestGetOrder_InvalidID(t *testing.T) {
	h := NewCheckoutHandler(&mockCartService{}, &mockCheckoutService{})

	req := httptest.NewRequest(http.MethodGet, "/orders/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()

	h.GetOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
