package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/feriaverde/marketplace/internal/billing"
	"github.com/feriaverde/marketplace/internal/domain"
	"github.com/feriaverde/marketplace/internal/router"
	"github.com/feriaverde/marketplace/internal/telemetry"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Catalog  domain.CatalogService
	Carts    domain.CartService
	Checkout domain.CheckoutService
	Provider billing.Provider
	Metrics  *telemetry.BusinessMetrics
	Logger   zerolog.Logger

	// SecureCookies controls the Secure flag on the cart session cookie.
	SecureCookies bool
}

// Register mounts all API routes on the router.
func Register(r *router.Router, deps Deps) {
	catalog := NewCatalogHandler(deps.Catalog)
	cart := NewCartHandler(deps.Carts, deps.SecureCookies)
	checkout := NewCheckoutHandler(deps.Carts, deps.Checkout)
	webhook := NewWebhookHandler(deps.Provider, deps.Checkout, deps.Metrics, deps.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Catalog
	r.Get("/products", catalog.ListProducts)
	r.Post("/products", catalog.CreateProduct)
	r.Get("/products/{id}", catalog.GetProduct)
	r.Put("/products/{id}/offer", catalog.UpsertOffer)
	r.Delete("/products/{id}/offer", catalog.DeleteOffer)
	r.Post("/vendors", catalog.CreateVendor)
	r.Get("/vendors/{id}", catalog.GetVendor)

	// Cart
	r.Get("/cart", cart.View)
	r.Post("/cart/items", cart.AddItem)
	r.Put("/cart/items/{productID}", cart.UpdateItem)
	r.Delete("/cart/items/{productID}", cart.RemoveItem)

	// Checkout
	r.Post("/checkout", checkout.Checkout)
	r.Get("/orders/{id}", checkout.GetOrder)

	// Payment gateway callbacks
	r.Post("/webhooks/payment", webhook.HandlePayment)
}
