package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CartCookieName carries the anonymous cart session token.
const CartCookieName = "feria_cart"

const cartCookieMaxAge = 30 * 24 * 60 * 60

// CartHandler serves the cart endpoints. Carts are anonymous, keyed by the
// session token in the cart cookie.
type CartHandler struct {
	carts  domain.CartService
	secure bool
	now    func() time.Time
}

// NewCartHandler creates a new cart handler. secure controls the cookie's
// Secure flag and should be true outside development.
func NewCartHandler(carts domain.CartService, secure bool) *CartHandler {
	return &CartHandler{carts: carts, secure: secure, now: time.Now}
}

// GetSessionTokenFromCookie retrieves the cart session token from the
// request. Returns empty string if the cookie is not present.
func GetSessionTokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(CartCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetSessionCookie sets the cart session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cartCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type cartLineResponse struct {
	ProductID        uuid.UUID        `json:"product_id"`
	VendorID         uuid.UUID        `json:"vendor_id"`
	ProductName      string           `json:"product_name"`
	Quantity         int32            `json:"quantity"`
	BillableQuantity int32            `json:"billable_quantity"`
	UnitPrice        int64            `json:"unit_price"`
	OriginalPrice    int64            `json:"original_price"`
	OfferKind        domain.OfferKind `json:"offer_kind,omitempty"`
	LineTotal        int64            `json:"line_total"`
}

type cartViewResponse struct {
	CartID    uuid.UUID          `json:"cart_id"`
	Lines     []cartLineResponse `json:"lines"`
	Total     int64              `json:"total"`
	ItemCount int32              `json:"item_count"`
}

func toCartViewResponse(view *domain.CartView) cartViewResponse {
	lines := make([]cartLineResponse, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, cartLineResponse{
			ProductID:        l.ProductID,
			VendorID:         l.VendorID,
			ProductName:      l.ProductName,
			Quantity:         l.Quantity,
			BillableQuantity: l.BillableQuantity,
			UnitPrice:        l.UnitPrice,
			OriginalPrice:    l.OriginalPrice,
			OfferKind:        l.OfferKind,
			LineTotal:        l.LineTotal,
		})
	}
	return cartViewResponse{
		CartID:    view.CartID,
		Lines:     lines,
		Total:     view.Total,
		ItemCount: view.ItemCount,
	}
}

// View handles GET /cart. An unknown or absent session token yields an
// empty cart view rather than an error.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := GetSessionTokenFromCookie(r)
	if token == "" {
		respondJSON(w, http.StatusOK, cartViewResponse{Lines: []cartLineResponse{}})
		return
	}

	cart, err := h.carts.GetCart(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			respondJSON(w, http.StatusOK, cartViewResponse{Lines: []cartLineResponse{}})
			return
		}
		ErrorResponse(w, r, err)
		return
	}

	view, err := h.carts.ProjectCart(ctx, cart.ID, h.now())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

// AddItem handles POST /cart/items. Creates the cart and sets the session
// cookie when the request carries no token yet.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int32     `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	token := GetSessionTokenFromCookie(r)
	cart, newToken, err := h.carts.GetOrCreateCart(ctx, token)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if newToken != token {
		SetSessionCookie(w, newToken, h.secure)
	}

	if err := h.carts.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	view, err := h.carts.ProjectCart(ctx, cart.ID, h.now())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

// UpdateItem handles PUT /cart/items/{productID}. A quantity of zero
// removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.UpdateItem", "Invalid product ID"))
		return
	}

	var req struct {
		Quantity int32 `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.requireCart(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.carts.SetItemQuantity(ctx, cart.ID, productID, req.Quantity); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	view, err := h.carts.ProjectCart(ctx, cart.ID, h.now())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

// RemoveItem handles DELETE /cart/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.RemoveItem", "Invalid product ID"))
		return
	}

	cart, err := h.requireCart(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	view, err := h.carts.ProjectCart(ctx, cart.ID, h.now())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

func (h *CartHandler) requireCart(r *http.Request) (*domain.Cart, error) {
	token := GetSessionTokenFromCookie(r)
	if token == "" {
		return nil, domain.ErrCartNotFound
	}
	return h.carts.GetCart(r.Context(), token)
}
