package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CreateCart inserts a cart row keyed by the session token.
func (s *Store) CreateCart(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	const op = "postgres.CreateCart"

	var c domain.Cart
	err := s.db.QueryRow(ctx, `
		INSERT INTO carts (session_token)
		VALUES ($1)
		RETURNING id, session_token, created_at, updated_at`,
		sessionToken,
	).Scan(&c.ID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create cart")
	}
	return &c, nil
}

// GetCartBySessionToken retrieves a cart by its session token.
func (s *Store) GetCartBySessionToken(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	const op = "postgres.GetCartBySessionToken"

	var c domain.Cart
	err := s.db.QueryRow(ctx, `
		SELECT id, session_token, created_at, updated_at
		FROM carts
		WHERE session_token = $1`,
		sessionToken,
	).Scan(&c.ID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCartNotFound, domain.ENOTFOUND, op, "cart not found")
		}
		return nil, domain.Internal(err, op, "failed to get cart")
	}
	return &c, nil
}

// GetCart retrieves a cart by ID.
func (s *Store) GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	const op = "postgres.GetCart"

	var c domain.Cart
	err := s.db.QueryRow(ctx, `
		SELECT id, session_token, created_at, updated_at
		FROM carts
		WHERE id = $1`,
		cartID,
	).Scan(&c.ID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCartNotFound, domain.ENOTFOUND, op, "cart not found")
		}
		return nil, domain.Internal(err, op, "failed to get cart")
	}
	return &c, nil
}

// GetCartLines lists the lines of a cart in insertion order.
func (s *Store) GetCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	const op = "postgres.GetCartLines"

	rows, err := s.db.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at`,
		cartID,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list cart lines")
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, domain.Internal(err, op, "failed to scan cart line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read cart lines")
	}
	return lines, nil
}

// AddCartLine inserts a cart line, incrementing the quantity when the
// product is already in the cart.
func (s *Store) AddCartLine(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	const op = "postgres.AddCartLine"

	_, err := s.db.Exec(ctx, `
		INSERT INTO cart_lines (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET
			quantity = cart_lines.quantity + EXCLUDED.quantity,
			updated_at = now()`,
		cartID, productID, quantity,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.WrapError(domain.ErrCartNotFound, domain.ENOTFOUND, op, "cart or product does not exist")
		}
		return domain.Internal(err, op, "failed to add cart line")
	}
	return nil
}

// SetCartLineQuantity overrides a line's quantity.
func (s *Store) SetCartLineQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	const op = "postgres.SetCartLineQuantity"

	tag, err := s.db.Exec(ctx, `
		UPDATE cart_lines
		SET quantity = $3, updated_at = now()
		WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID, quantity,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to update cart line")
	}
	if tag.RowsAffected() == 0 {
		return domain.WrapError(domain.ErrCartItemNotFound, domain.ENOTFOUND, op, "product not in cart")
	}
	return nil
}

// DeleteCartLine removes a product from the cart.
func (s *Store) DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) error {
	const op = "postgres.DeleteCartLine"

	tag, err := s.db.Exec(ctx, `
		DELETE FROM cart_lines
		WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to remove cart line")
	}
	if tag.RowsAffected() == 0 {
		return domain.WrapError(domain.ErrCartItemNotFound, domain.ENOTFOUND, op, "product not in cart")
	}
	return nil
}

// ClearCart removes every line from a cart.
func (s *Store) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	const op = "postgres.ClearCart"

	if _, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return domain.Internal(err, op, "failed to clear cart")
	}
	return nil
}
