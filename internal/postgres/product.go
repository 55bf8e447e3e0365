package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/feriaverde/marketplace/internal/domain"
)

// productColumns is the SELECT list shared by every product query: the
// product row left-joined with its offer, so pricing always sees the offer
// in the same read.
const productColumns = `
	p.id, p.vendor_id, p.name, p.description, p.list_price, p.is_active,
	p.created_at, p.updated_at,
	o.id, o.kind, o.discount_percentage, o.fixed_price, o.is_active,
	o.starts_at, o.ends_at, o.created_at, o.updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var (
		offerID      pgtype.UUID
		offerKind    pgtype.Text
		offerPct     pgtype.Int4
		offerFixed   pgtype.Int8
		offerActive  pgtype.Bool
		offerStarts  pgtype.Timestamptz
		offerEnds    pgtype.Timestamptz
		offerCreated pgtype.Timestamptz
		offerUpdated pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Description, &p.ListPrice, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
		&offerID, &offerKind, &offerPct, &offerFixed, &offerActive,
		&offerStarts, &offerEnds, &offerCreated, &offerUpdated,
	)
	if err != nil {
		return nil, err
	}

	if offerID.Valid {
		p.Offer = &domain.Offer{
			ID:                 uuid.UUID(offerID.Bytes),
			ProductID:          p.ID,
			Kind:               domain.OfferKind(offerKind.String),
			DiscountPercentage: offerPct.Int32,
			FixedPrice:         offerFixed.Int64,
			IsActive:           offerActive.Bool,
			StartsAt:           offerStarts.Time,
			EndsAt:             offerEnds.Time,
			CreatedAt:          offerCreated,
			UpdatedAt:          offerUpdated,
		}
	}
	return &p, nil
}

// CreateProduct inserts a product row.
func (s *Store) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "postgres.CreateProduct"

	var p domain.Product
	err := s.db.QueryRow(ctx, `
		INSERT INTO products (vendor_id, name, description, list_price)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, vendor_id, name, description, list_price, is_active, created_at, updated_at`,
		params.VendorID, params.Name, params.Description, params.ListPrice,
	).Scan(&p.ID, &p.VendorID, &p.Name, &p.Description, &p.ListPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.WrapError(domain.ErrVendorNotFound, domain.ENOTFOUND, op, "vendor does not exist")
		}
		return nil, domain.Internal(err, op, "failed to create product")
	}
	return &p, nil
}

// GetProduct retrieves one active product with its offer.
func (s *Store) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	const op = "postgres.GetProduct"

	row := s.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN offers o ON o.product_id = p.id
		WHERE p.id = $1 AND p.is_active`,
		productID,
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProductNotFound, domain.ENOTFOUND, op, "product not found")
		}
		return nil, domain.Internal(err, op, "failed to get product")
	}
	return p, nil
}

// ListActiveProducts lists the active catalog with offers attached.
func (s *Store) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "postgres.ListActiveProducts"

	rows, err := s.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN offers o ON o.product_id = p.id
		WHERE p.is_active
		ORDER BY p.name`,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}

// GetProductsByIDs retrieves active products with offers for the given IDs.
// IDs that no longer exist in the catalog are simply absent from the map;
// cart projection skips those lines rather than failing.
func (s *Store) GetProductsByIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	const op = "postgres.GetProductsByIDs"

	if len(productIDs) == 0 {
		return map[uuid.UUID]*domain.Product{}, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN offers o ON o.product_id = p.id
		WHERE p.id = ANY($1) AND p.is_active`,
		productIDs,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load products")
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*domain.Product, len(productIDs))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}

// UpsertOffer creates or replaces a product's offer. One offer per product;
// a new offer for the same product overwrites the previous one.
func (s *Store) UpsertOffer(ctx context.Context, params domain.UpsertOfferParams) (*domain.Offer, error) {
	const op = "postgres.UpsertOffer"

	var o domain.Offer
	err := s.db.QueryRow(ctx, `
		INSERT INTO offers (product_id, kind, discount_percentage, fixed_price, is_active, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			discount_percentage = EXCLUDED.discount_percentage,
			fixed_price = EXCLUDED.fixed_price,
			is_active = EXCLUDED.is_active,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			updated_at = now()
		RETURNING id, product_id, kind, discount_percentage, fixed_price, is_active, starts_at, ends_at, created_at, updated_at`,
		params.ProductID, params.Kind, params.DiscountPercentage, params.FixedPrice,
		params.IsActive, params.StartsAt, params.EndsAt,
	).Scan(&o.ID, &o.ProductID, &o.Kind, &o.DiscountPercentage, &o.FixedPrice, &o.IsActive,
		&o.StartsAt, &o.EndsAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.WrapError(domain.ErrProductNotFound, domain.ENOTFOUND, op, "product does not exist")
		}
		return nil, domain.Internal(err, op, "failed to upsert offer")
	}
	return &o, nil
}

// DeleteOffer removes a product's offer, if any.
func (s *Store) DeleteOffer(ctx context.Context, productID uuid.UUID) error {
	const op = "postgres.DeleteOffer"

	tag, err := s.db.Exec(ctx, `DELETE FROM offers WHERE product_id = $1`, productID)
	if err != nil {
		return domain.Internal(err, op, "failed to delete offer")
	}
	if tag.RowsAffected() == 0 {
		return domain.WrapError(domain.ErrOfferNotFound, domain.ENOTFOUND, op, "no offer for product")
	}
	return nil
}
