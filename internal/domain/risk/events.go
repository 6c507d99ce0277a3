package risk

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeBuyerTrustProfile is the outbox aggregate type for profiles
const AggregateTypeBuyerTrustProfile = "BuyerTrustProfile"

// EventTypeBuyerBlacklistChanged is raised when a blacklist entry is created or moves
const EventTypeBuyerBlacklistChanged = "BuyerBlacklistChanged"

// BlacklistChangedEvent carries the new blacklist status of a buyer
type BlacklistChangedEvent struct {
	shared.BaseDomainEvent
	BuyerID uuid.UUID       `json:"buyer_id"`
	Status  BlacklistStatus `json:"status"`
}

// NewBlacklistChangedEvent creates a BlacklistChangedEvent
func NewBlacklistChangedEvent(p *BuyerTrustProfile, status BlacklistStatus, at time.Time) *BlacklistChangedEvent {
	return &BlacklistChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBuyerBlacklistChanged, AggregateTypeBuyerTrustProfile, p.ID, uuid.Nil, at),
		BuyerID:         p.BuyerID,
		Status:          status,
	}
}
