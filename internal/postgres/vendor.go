package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CreateVendor inserts a vendor row.
func (s *Store) CreateVendor(ctx context.Context, name, email, phone string) (*domain.Vendor, error) {
	const op = "postgres.CreateVendor"

	var v domain.Vendor
	err := s.db.QueryRow(ctx, `
		INSERT INTO vendors (name, email, phone)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, name, email, phone, is_active, created_at, updated_at`,
		name, email, phone,
	).Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(op, "vendor email already registered")
		}
		return nil, domain.Internal(err, op, "failed to create vendor")
	}
	return &v, nil
}

// GetVendor retrieves one vendor by ID.
func (s *Store) GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	const op = "postgres.GetVendor"

	var v domain.Vendor
	err := s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, is_active, created_at, updated_at
		FROM vendors
		WHERE id = $1`,
		vendorID,
	).Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrVendorNotFound, domain.ENOTFOUND, op, "vendor not found")
		}
		return nil, domain.Internal(err, op, "failed to get vendor")
	}
	return &v, nil
}

// GetVendorsByIDs retrieves vendors for the given IDs. Missing IDs are
// silently absent from the result; callers doing notification fan-out treat
// a vanished vendor as nothing to notify.
func (s *Store) GetVendorsByIDs(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.Vendor, error) {
	const op = "postgres.GetVendorsByIDs"

	if len(vendorIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, phone, is_active, created_at, updated_at
		FROM vendors
		WHERE id = ANY($1)`,
		vendorIDs,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list vendors")
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, domain.Internal(err, op, "failed to scan vendor")
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read vendors")
	}
	return vendors, nil
}

func isUniqueViolation(err error) bool {
	// 23505 is unique_violation.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	// 23503 is foreign_key_violation.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
