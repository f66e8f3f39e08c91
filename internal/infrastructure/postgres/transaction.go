package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// TransactionContext runs a unit of work inside a database transaction.
// Nested Execute calls join the transaction already on the context, so
// one request scope maps to one transaction.
type TransactionContext struct {
	pool *pgxpool.Pool
}

func NewTransactionContext(pool *pgxpool.Pool) *TransactionContext {
	return &TransactionContext{pool: pool}
}

func (t *TransactionContext) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// txFrom returns the transaction bound to the context, if any.
func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}
