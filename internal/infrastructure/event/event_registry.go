package event

import (
	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
)

// domainEvents is every event an aggregate can write to the outbox
var domainEvents = map[string]shared.DomainEvent{
	verification.EventTypeVerificationSubmitted:     &verification.SubmittedEvent{},
	verification.EventTypeVerificationStatusChanged: &verification.StatusChangedEvent{},
	verification.EventTypeVerificationApproved:      &verification.ApprovedEvent{},
	verification.EventTypeVerificationRejected:      &verification.RejectedEvent{},
	verification.EventTypeVerificationInfoRequested: &verification.InfoRequestedEvent{},

	risk.EventTypeBuyerBlacklistChanged: &risk.BlacklistChangedEvent{},

	trade.EventTypeTransactionCreated:       &trade.TransactionCreatedEvent{},
	trade.EventTypeTransactionStatusChanged: &trade.TransactionStatusChangedEvent{},
	trade.EventTypeTransactionShipped:       &trade.TransactionShippedEvent{},
	trade.EventTypeTransactionDelivered:     &trade.TransactionDeliveredEvent{},
	trade.EventTypeTransactionCancelled:     &trade.TransactionCancelledEvent{},

	escrow.EventTypeEscrowOpened:             &escrow.EscrowOpenedEvent{},
	escrow.EventTypeEscrowConditionSatisfied: &escrow.EscrowConditionSatisfiedEvent{},
	escrow.EventTypeEscrowFunded:             &escrow.EscrowFundedEvent{},
	escrow.EventTypeEscrowReleased:           &escrow.EscrowReleasedEvent{},
	escrow.EventTypeEscrowRefunded:           &escrow.EscrowRefundedEvent{},
	escrow.EventTypeEscrowDisputed:           &escrow.EscrowDisputedEvent{},
}

// RegisterAllEvents lets the outbox processor rebuild any stored domain event
func RegisterAllEvents(s *EventSerializer) {
	for eventType, prototype := range domainEvents {
		s.Register(eventType, prototype)
	}
}
