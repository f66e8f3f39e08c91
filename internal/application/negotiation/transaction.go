package negotiation

import "context"

// TransactionContext scopes a unit of work around store access. The
// postgres implementation runs the function inside a database
// transaction; the no-op default just invokes it.
type TransactionContext interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTransactionContext is the boundary used when no transactional
// store is configured.
type NoopTransactionContext struct{}

func (NoopTransactionContext) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
