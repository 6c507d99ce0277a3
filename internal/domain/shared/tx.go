package shared

import "context"

// TxManager runs a function inside a single database transaction.
// Repositories called with the context passed to fn join that transaction,
// so everything fn writes commits or rolls back together.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
