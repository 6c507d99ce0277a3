package risk

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// ProfileRepository defines persistence for buyer trust profiles
type ProfileRepository interface {
	// FindByBuyerID finds the profile of a buyer
	FindByBuyerID(ctx context.Context, buyerID uuid.UUID) (*BuyerTrustProfile, error)

	// CreateWithEvents inserts a new profile
	CreateWithEvents(ctx context.Context, p *BuyerTrustProfile, events []shared.DomainEvent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, p *BuyerTrustProfile, events []shared.DomainEvent) error
}
