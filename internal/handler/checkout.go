package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CheckoutHandler serves checkout and order lookup endpoints.
type CheckoutHandler struct {
	carts    domain.CartService
	checkout domain.CheckoutService
	now      func() time.Time
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(carts domain.CartService, checkout domain.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, checkout: checkout, now: time.Now}
}

type orderLineResponse struct {
	ProductID          uuid.UUID `json:"product_id"`
	VendorID           uuid.UUID `json:"vendor_id"`
	ProductName        string    `json:"product_name"`
	UnitPrice          int64     `json:"unit_price"`
	OriginalPrice      int64     `json:"original_price"`
	DiscountPercentage int32     `json:"discount_percentage"`
	Quantity           int32     `json:"quantity"`
	LineTotal          int64     `json:"line_total"`
}

type orderResponse struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Address   string              `json:"address"`
	Phone     string              `json:"phone"`
	Amount    int64               `json:"amount"`
	Paid      bool                `json:"paid"`
	PaymentID string              `json:"payment_id,omitempty"`
	Lines     []orderLineResponse `json:"lines"`
}

func toOrderResponse(order *domain.Order, lines []domain.OrderLine) orderResponse {
	out := orderResponse{
		ID:        order.ID,
		Name:      order.Name,
		Email:     order.Email,
		Address:   order.Address,
		Phone:     order.Phone,
		Amount:    order.Amount,
		Paid:      order.Paid,
		PaymentID: order.PaymentID.String,
		Lines:     make([]orderLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, orderLineResponse{
			ProductID:          l.ProductID,
			VendorID:           l.VendorID,
			ProductName:        l.ProductName,
			UnitPrice:          l.UnitPrice,
			OriginalPrice:      l.OriginalPrice,
			DiscountPercentage: l.DiscountPercentage,
			Quantity:           l.Quantity,
			LineTotal:          l.LineTotal,
		})
	}
	return out
}

// Checkout handles POST /checkout. The cart comes from the session cookie;
// the buyer details come from the body. On success the client is handed the
// gateway redirect URL; the cart survives so a failed payment can retry.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := GetSessionTokenFromCookie(r)
	if token == "" {
		ErrorResponse(w, r, domain.ErrCartNotFound)
		return
	}

	cart, err := h.carts.GetCart(ctx, token)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	result, err := h.checkout.Checkout(ctx, cart.ID, domain.BuyerDetails{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		Phone:   req.Phone,
	}, h.now())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order := toOrderResponse(result.Order, result.Lines)
	respondJSON(w, http.StatusCreated, map[string]any{
		"order":       order,
		"payment_url": result.PaymentURL,
	})
}

// GetOrder handles GET /orders/{id}.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.GetOrder", "Invalid order ID"))
		return
	}

	order, lines, err := h.checkout.GetOrder(r.Context(), orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order, lines))
}
