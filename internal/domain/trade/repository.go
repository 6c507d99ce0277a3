package trade

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// OfferRepository reads offers owned by the quotation subsystem
type OfferRepository interface {
	// FindByID finds an offer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Offer, error)

	// Save creates or updates an offer
	Save(ctx context.Context, offer *Offer) error
}

// TransactionRepository defines persistence for transactions
type TransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindLiveByOffer returns the non-cancelled transaction holding an offer, or NOT_FOUND
	FindLiveByOffer(ctx context.Context, offerID uuid.UUID) (*Transaction, error)

	// CountLiveByBuyer counts the buyer's non-cancelled transactions
	CountLiveByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error)

	// CreateWithEvents inserts a new transaction and its events.
	// A second live transaction for the same offer fails with CONFLICT.
	CreateWithEvents(ctx context.Context, t *Transaction, events []shared.DomainEvent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, t *Transaction, events []shared.DomainEvent) error
}
