package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaverde/marketplace/internal/domain"
)

func TestCatalogService_UpsertOfferValidation(t *testing.T) {
	store := newMockStore()
	svc, err := NewCatalogService(store)
	require.NoError(t, err)
	ctx := context.Background()

	vendor, err := store.CreateVendor(ctx, "Donde la Tia", "tia@vendors.test", "")
	require.NoError(t, err)
	product, err := store.CreateProduct(ctx, domain.CreateProductParams{
		VendorID:  vendor.ID,
		Name:      "completo italiano",
		ListPrice: 3000,
	})
	require.NoError(t, err)

	starts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ends := starts.AddDate(0, 1, 0)

	tests := []struct {
		name    string
		params  domain.UpsertOfferParams
		wantErr bool
	}{
		{
			name: "valid percentage",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferPercentage,
				DiscountPercentage: 25, IsActive: true, StartsAt: starts, EndsAt: ends,
			},
		},
		{
			name: "percentage above ninety",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferPercentage,
				DiscountPercentage: 91, IsActive: true, StartsAt: starts, EndsAt: ends,
			},
			wantErr: true,
		},
		{
			name: "percentage with stray fixed price",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferPercentage,
				DiscountPercentage: 25, FixedPrice: 100, IsActive: true, StartsAt: starts, EndsAt: ends,
			},
			wantErr: true,
		},
		{
			name: "valid fixed price",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferFixedPrice,
				FixedPrice: 2000, IsActive: true, StartsAt: starts, EndsAt: ends,
			},
		},
		{
			name: "fixed price at list",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferFixedPrice,
				FixedPrice: 3000, IsActive: true, StartsAt: starts, EndsAt: ends,
			},
			wantErr: true,
		},
		{
			name: "valid two for one",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferTwoForOne,
				IsActive: true, StartsAt: starts, EndsAt: ends,
			},
		},
		{
			name: "two for one with stray percentage",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferTwoForOne,
				DiscountPercentage: 10, IsActive: true, StartsAt: starts, EndsAt: ends,
			},
			wantErr: true,
		},
		{
			name: "window inverted",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferTwoForOne,
				IsActive: true, StartsAt: ends, EndsAt: starts,
			},
			wantErr: true,
		},
		{
			name: "unknown kind",
			params: domain.UpsertOfferParams{
				ProductID: product.ID, Kind: domain.OfferKind("bogo"),
				IsActive: true, StartsAt: starts, EndsAt: ends,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := svc.UpsertOffer(ctx, tt.params)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.params.Kind, offer.Kind)
		})
	}
}

func TestCatalogService_CreateVendorValidation(t *testing.T) {
	store := newMockStore()
	svc, err := NewCatalogService(store)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateVendor(ctx, domain.CreateVendorParams{Name: "La Vega Central", Email: "puesto12@vega.test"})
	require.NoError(t, err)

	_, err = svc.CreateVendor(ctx, domain.CreateVendorParams{Name: "x", Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestCatalogService_CreateProductValidation(t *testing.T) {
	store := newMockStore()
	svc, err := NewCatalogService(store)
	require.NoError(t, err)
	ctx := context.Background()

	vendor, err := store.CreateVendor(ctx, "El Rincon", "rincon@vendors.test", "")
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, domain.CreateProductParams{
		VendorID: vendor.ID, Name: "porotos granados", ListPrice: 0,
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}
