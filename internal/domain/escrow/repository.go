package escrow

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for escrows
type Repository interface {
	// FindByID finds an escrow by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Escrow, error)

	// FindByTransaction finds the escrow of a transaction
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) (*Escrow, error)

	// CreateWithEvents inserts a new escrow and its events.
	// A second escrow for the same transaction fails with CONFLICT.
	CreateWithEvents(ctx context.Context, e *Escrow, events []shared.DomainEvent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, e *Escrow, events []shared.DomainEvent) error
}
