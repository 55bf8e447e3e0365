package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CatalogHandler serves vendor, product and offer endpoints.
type CatalogHandler struct {
	catalog domain.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog domain.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type vendorResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	IsActive bool      `json:"is_active"`
}

type offerResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Kind               domain.OfferKind `json:"kind"`
	DiscountPercentage int32            `json:"discount_percentage,omitempty"`
	FixedPrice         int64            `json:"fixed_price,omitempty"`
	IsActive           bool             `json:"is_active"`
	StartsAt           time.Time        `json:"starts_at"`
	EndsAt             time.Time        `json:"ends_at"`
}

type productResponse struct {
	ID          uuid.UUID      `json:"id"`
	VendorID    uuid.UUID      `json:"vendor_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ListPrice   int64          `json:"list_price"`
	IsActive    bool           `json:"is_active"`
	Offer       *offerResponse `json:"offer,omitempty"`
}

func toVendorResponse(v *domain.Vendor) vendorResponse {
	return vendorResponse{
		ID:       v.ID,
		Name:     v.Name,
		Email:    v.Email,
		Phone:    v.Phone.String,
		IsActive: v.IsActive,
	}
}

func toOfferResponse(o *domain.Offer) *offerResponse {
	if o == nil {
		return nil
	}
	return &offerResponse{
		ID:                 o.ID,
		Kind:               o.Kind,
		DiscountPercentage: o.DiscountPercentage,
		FixedPrice:         o.FixedPrice,
		IsActive:           o.IsActive,
		StartsAt:           o.StartsAt,
		EndsAt:             o.EndsAt,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		VendorID:    p.VendorID,
		Name:        p.Name,
		Description: p.Description.String,
		ListPrice:   p.ListPrice,
		IsActive:    p.IsActive,
		Offer:       toOfferResponse(p.Offer),
	}
}

// CreateVendor handles POST /vendors.
func (h *CatalogHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	vendor, err := h.catalog.CreateVendor(r.Context(), domain.CreateVendorParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toVendorResponse(vendor))
}

// GetVendor handles GET /vendors/{id}.
func (h *CatalogHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.GetVendor", "Invalid vendor ID"))
		return
	}

	vendor, err := h.catalog.GetVendor(r.Context(), vendorID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toVendorResponse(vendor))
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VendorID    uuid.UUID `json:"vendor_id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		ListPrice   int64     `json:"list_price"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), domain.CreateProductParams{
		VendorID:    req.VendorID,
		Name:        req.Name,
		Description: req.Description,
		ListPrice:   req.ListPrice,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toProductResponse(product))
}

// ListProducts handles GET /products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}

	respondJSON(w, http.StatusOK, map[string]any{"products": out})
}

// GetProduct handles GET /products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.GetProduct", "Invalid product ID"))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(product))
}

// UpsertOffer handles PUT /products/{id}/offer.
func (h *CatalogHandler) UpsertOffer(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.UpsertOffer", "Invalid product ID"))
		return
	}

	var req struct {
		Kind               domain.OfferKind `json:"kind"`
		DiscountPercentage int32            `json:"discount_percentage"`
		FixedPrice         int64            `json:"fixed_price"`
		IsActive           bool             `json:"is_active"`
		StartsAt           time.Time        `json:"starts_at"`
		EndsAt             time.Time        `json:"ends_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	offer, err := h.catalog.UpsertOffer(r.Context(), domain.UpsertOfferParams{
		ProductID:          productID,
		Kind:               req.Kind,
		DiscountPercentage: req.DiscountPercentage,
		FixedPrice:         req.FixedPrice,
		IsActive:           req.IsActive,
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toOfferResponse(offer))
}

// DeleteOffer handles DELETE /products/{id}/offer.
func (h *CatalogHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "handler.DeleteOffer", "Invalid product ID"))
		return
	}

	if err := h.catalog.DeleteOffer(r.Context(), productID); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
