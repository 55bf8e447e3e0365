package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/feriaverde/marketplace/internal/domain"
)

// CreateOrder inserts the order header. Called inside the checkout
// transaction together with CreateOrderLine.
func (s *Store) CreateOrder(ctx context.Context, cartID uuid.UUID, buyer domain.BuyerDetails, amount int64) (*domain.Order, error) {
	const op = "postgres.CreateOrder"

	var o domain.Order
	err := s.db.QueryRow(ctx, `
		INSERT INTO orders (cart_id, name, email, address, phone, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, cart_id, name, email, address, phone, amount, paid, payment_id, created_at, updated_at`,
		cartID, buyer.Name, buyer.Email, buyer.Address, buyer.Phone, amount,
	).Scan(&o.ID, &o.CartID, &o.Name, &o.Email, &o.Address, &o.Phone, &o.Amount, &o.Paid, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create order")
	}
	return &o, nil
}

// CreateOrderLine inserts one frozen order line.
func (s *Store) CreateOrderLine(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error) {
	const op = "postgres.CreateOrderLine"

	var l domain.OrderLine
	err := s.db.QueryRow(ctx, `
		INSERT INTO order_lines (order_id, product_id, vendor_id, product_name, unit_price, original_price, discount_percentage, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, order_id, product_id, vendor_id, product_name, unit_price, original_price, discount_percentage, quantity, line_total, created_at`,
		line.OrderID, line.ProductID, line.VendorID, line.ProductName,
		line.UnitPrice, line.OriginalPrice, line.DiscountPercentage, line.Quantity, line.LineTotal,
	).Scan(&l.ID, &l.OrderID, &l.ProductID, &l.VendorID, &l.ProductName,
		&l.UnitPrice, &l.OriginalPrice, &l.DiscountPercentage, &l.Quantity, &l.LineTotal, &l.CreatedAt)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create order line")
	}
	return &l, nil
}

// GetOrder retrieves an order header.
func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const op = "postgres.GetOrder"

	var o domain.Order
	err := s.db.QueryRow(ctx, `
		SELECT id, cart_id, name, email, address, phone, amount, paid, payment_id, created_at, updated_at
		FROM orders
		WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.CartID, &o.Name, &o.Email, &o.Address, &o.Phone, &o.Amount, &o.Paid, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrOrderNotFound, domain.ENOTFOUND, op, "order not found")
		}
		return nil, domain.Internal(err, op, "failed to get order")
	}
	return &o, nil
}

// GetOrderLines lists the frozen lines of an order.
func (s *Store) GetOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	const op = "postgres.GetOrderLines"

	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, product_id, vendor_id, product_name, unit_price, original_price, discount_percentage, quantity, line_total, created_at
		FROM order_lines
		WHERE order_id = $1
		ORDER BY created_at`,
		orderID,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list order lines")
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.VendorID, &l.ProductName,
			&l.UnitPrice, &l.OriginalPrice, &l.DiscountPercentage, &l.Quantity, &l.LineTotal, &l.CreatedAt); err != nil {
			return nil, domain.Internal(err, op, "failed to scan order line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read order lines")
	}
	return lines, nil
}

// MarkOrderPaid flips the paid flag exactly once and records the gateway
// payment ID. Returns ErrOrderAlreadyPaid when the flag was already set, so
// webhook retries stay idempotent.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*domain.Order, error) {
	const op = "postgres.MarkOrderPaid"

	var o domain.Order
	err := s.db.QueryRow(ctx, `
		UPDATE orders
		SET paid = TRUE, payment_id = $2, updated_at = now()
		WHERE id = $1 AND NOT paid
		RETURNING id, cart_id, name, email, address, phone, amount, paid, payment_id, created_at, updated_at`,
		orderID, paymentID,
	).Scan(&o.ID, &o.CartID, &o.Name, &o.Email, &o.Address, &o.Phone, &o.Amount, &o.Paid, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the order does not exist or it is already paid.
			existing, getErr := s.GetOrder(ctx, orderID)
			if getErr != nil {
				return nil, getErr
			}
			if existing.Paid {
				return nil, domain.WrapError(domain.ErrOrderAlreadyPaid, domain.ECONFLICT, op, "order already paid")
			}
			return nil, domain.Internal(err, op, "failed to mark order paid")
		}
		return nil, domain.Internal(err, op, "failed to mark order paid")
	}
	return &o, nil
}
