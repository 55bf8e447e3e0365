// Package postgres implements the persistence layer with hand-written pgx
// queries. Store methods return domain types; SQL never leaks upward.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the same
// Store methods run inside and outside transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed data store.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewStore creates a Store over a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// withTx returns a Store bound to the transaction.
func (s *Store) withTx(tx pgx.Tx) *Store {
	return &Store{db: tx, pool: s.pool}
}

// ExecTx runs fn inside a transaction. The transaction is rolled back when
// fn returns an error, so a failed order materialization leaves no partial
// order lines behind.
func (s *Store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(s.withTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
