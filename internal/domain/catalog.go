package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// CATALOG DOMAIN ERRORS
// =============================================================================

var (
	ErrVendorNotFound  = &Error{Code: ENOTFOUND, Message: "Vendor not found"}
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrOfferNotFound   = &Error{Code: ENOTFOUND, Message: "Offer not found"}
)

// OfferKind identifies the discount mode of an offer.
// An offer carries exactly one kind; mixed modes are rejected at creation.
type OfferKind string

const (
	OfferPercentage OfferKind = "percentage"
	OfferFixedPrice OfferKind = "fixed_price"
	OfferTwoForOne  OfferKind = "two_for_one"
)

// Vendor represents a seller on the marketplace. Products belong to vendors
// and order lines keep a vendor reference for notification fan-out.
type Vendor struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     pgtype.Text
	IsActive  bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// Product is a catalog item with its list price in minor currency units
// (CLP, zero-decimal). The attached offer, if any, is loaded alongside the
// product and evaluated at read time; nothing about "currently discounted"
// is stored on the product row.
type Product struct {
	ID          uuid.UUID
	VendorID    uuid.UUID
	Name        string
	Description pgtype.Text
	ListPrice   int64
	IsActive    bool
	Offer       *Offer
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// Offer is a time-windowed discount attached to a single product.
// Exactly one of DiscountPercentage / FixedPrice / TwoForOne is meaningful,
// selected by Kind. Validity is recomputed against the clock on every read.
type Offer struct {
	ID                 uuid.UUID
	ProductID          uuid.UUID
	Kind               OfferKind
	DiscountPercentage int32
	FixedPrice         int64
	IsActive           bool
	StartsAt           time.Time
	EndsAt             time.Time
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

// EffectiveOffer is the resolver's verdict for a product at a point in time:
// the single discount that applies right now. A nil *EffectiveOffer means
// the product sells at list price.
type EffectiveOffer struct {
	OfferID    uuid.UUID
	Kind       OfferKind
	Percentage int32
	FixedPrice int64
}

// CatalogService provides vendor, product and offer management.
type CatalogService interface {
	// GetVendor retrieves a vendor by ID.
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*Vendor, error)

	// CreateVendor registers a new vendor.
	CreateVendor(ctx context.Context, params CreateVendorParams) (*Vendor, error)

	// GetProduct retrieves an active product with its offer, if any.
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)

	// ListProducts lists active products with their offers.
	ListProducts(ctx context.Context) ([]Product, error)

	// CreateProduct adds a product to a vendor's catalog.
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)

	// UpsertOffer creates or replaces the offer attached to a product.
	// Malformed offers (percentage outside [1,90], fixed price not below the
	// list price, start not before end) are rejected here; the pricing path
	// tolerates bad rows but this is where they are kept out.
	UpsertOffer(ctx context.Context, params UpsertOfferParams) (*Offer, error)

	// DeleteOffer detaches the offer from a product.
	DeleteOffer(ctx context.Context, productID uuid.UUID) error
}

// CreateVendorParams holds input for vendor registration.
type CreateVendorParams struct {
	Name  string `validate:"required,min=2,max=120"`
	Email string `validate:"required,email"`
	Phone string `validate:"omitempty,max=32"`
}

// CreateProductParams holds input for product creation.
type CreateProductParams struct {
	VendorID    uuid.UUID `validate:"required"`
	Name        string    `validate:"required,min=2,max=200"`
	Description string    `validate:"omitempty,max=2000"`
	ListPrice   int64     `validate:"required,gt=0"`
}

// UpsertOfferParams holds input for offer creation or replacement.
type UpsertOfferParams struct {
	ProductID          uuid.UUID `validate:"required"`
	Kind               OfferKind `validate:"required,oneof=percentage fixed_price two_for_one"`
	DiscountPercentage int32     `validate:"omitempty,min=1,max=90"`
	FixedPrice         int64     `validate:"omitempty,gt=0"`
	IsActive           bool
	StartsAt           time.Time `validate:"required"`
	EndsAt             time.Time `validate:"required"`
}
