package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CatalogStore is the persistence surface the catalog service needs.
// Implemented by *postgres.Store; mocked in tests.
type CatalogStore interface {
	CreateVendor(ctx context.Context, name, email, phone string) (*domain.Vendor, error)
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	UpsertOffer(ctx context.Context, params domain.UpsertOfferParams) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, productID uuid.UUID) error
}

type catalogService struct {
	store    CatalogStore
	validate *validator.Validate
}

// NewCatalogService creates the vendor/product/offer management service.
func NewCatalogService(store CatalogStore) (domain.CatalogService, error) {
	if store == nil {
		return nil, domain.Invalid("catalog.new", "store is required")
	}
	return &catalogService{
		store:    store,
		validate: validator.New(),
	}, nil
}

func (s *catalogService) GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	return s.store.GetVendor(ctx, vendorID)
}

func (s *catalogService) CreateVendor(ctx context.Context, params domain.CreateVendorParams) (*domain.Vendor, error) {
	const op = "catalog.createVendor"

	if err := s.validate.Struct(params); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "invalid vendor details")
	}
	return s.store.CreateVendor(ctx, params.Name, params.Email, params.Phone)
}

func (s *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return s.store.GetProduct(ctx, productID)
}

func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListActiveProducts(ctx)
}

func (s *catalogService) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "catalog.createProduct"

	if err := s.validate.Struct(params); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "invalid product details")
	}
	return s.store.CreateProduct(ctx, params)
}

// UpsertOffer enforces the offer shape rules the pricing path tolerates but
// must never see: one discount mode, percentage in [1,90], fixed price
// strictly below list, start strictly before end.
func (s *catalogService) UpsertOffer(ctx context.Context, params domain.UpsertOfferParams) (*domain.Offer, error) {
	const op = "catalog.upsertOffer"

	if err := s.validate.Struct(params); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "invalid offer")
	}
	if !params.StartsAt.Before(params.EndsAt) {
		return nil, domain.Invalid(op, "offer must start before it ends")
	}

	switch params.Kind {
	case domain.OfferPercentage:
		if params.DiscountPercentage < 1 || params.DiscountPercentage > 90 {
			return nil, domain.Invalid(op, "discount percentage must be between 1 and 90")
		}
		if params.FixedPrice != 0 {
			return nil, domain.Invalid(op, "percentage offer must not carry a fixed price")
		}
	case domain.OfferFixedPrice:
		if params.FixedPrice <= 0 {
			return nil, domain.Invalid(op, "fixed price must be positive")
		}
		if params.DiscountPercentage != 0 {
			return nil, domain.Invalid(op, "fixed price offer must not carry a percentage")
		}
		product, err := s.store.GetProduct(ctx, params.ProductID)
		if err != nil {
			return nil, err
		}
		if params.FixedPrice >= product.ListPrice {
			return nil, domain.Invalid(op, "fixed price must be below the list price")
		}
	case domain.OfferTwoForOne:
		if params.DiscountPercentage != 0 || params.FixedPrice != 0 {
			return nil, domain.Invalid(op, "two for one offer must not carry a percentage or fixed price")
		}
	default:
		return nil, domain.Invalid(op, "unknown offer kind")
	}

	return s.store.UpsertOffer(ctx, params)
}

func (s *catalogService) DeleteOffer(ctx context.Context, productID uuid.UUID) error {
	return s.store.DeleteOffer(ctx, productID)
}
