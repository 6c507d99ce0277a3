package escrow

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeEscrow is the outbox aggregate type for escrows
const AggregateTypeEscrow = "Escrow"

// Event type constants
const (
	EventTypeEscrowOpened             = "EscrowOpened"
	EventTypeEscrowConditionSatisfied = "EscrowConditionSatisfied"
	EventTypeEscrowFunded             = "EscrowFunded"
	EventTypeEscrowReleased           = "EscrowReleased"
	EventTypeEscrowRefunded           = "EscrowRefunded"
	EventTypeEscrowDisputed           = "EscrowDisputed"
)

// EscrowOpenedEvent is raised when an escrow is opened for a transaction
type EscrowOpenedEvent struct {
	shared.BaseDomainEvent
	EscrowID      uuid.UUID       `json:"escrow_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AdvanceAmount decimal.Decimal `json:"advance_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Currency      string          `json:"currency"`
}

// NewEscrowOpenedEvent creates an EscrowOpenedEvent
func NewEscrowOpenedEvent(e *Escrow, actor uuid.UUID, at time.Time) *EscrowOpenedEvent {
	return &EscrowOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowOpened, AggregateTypeEscrow, e.ID, actor, at),
		EscrowID:        e.ID,
		TransactionID:   e.TransactionID,
		TotalAmount:     e.TotalAmount,
		AdvanceAmount:   e.AdvanceAmount,
		BalanceAmount:   e.BalanceAmount,
		Currency:        string(e.Currency),
	}
}

// EscrowConditionSatisfiedEvent is raised the first time a release condition is met
type EscrowConditionSatisfiedEvent struct {
	shared.BaseDomainEvent
	EscrowID      uuid.UUID     `json:"escrow_id"`
	TransactionID uuid.UUID     `json:"transaction_id"`
	Condition     ConditionType `json:"condition"`
	AllSatisfied  bool          `json:"all_satisfied"`
}

// NewEscrowConditionSatisfiedEvent creates an EscrowConditionSatisfiedEvent
func NewEscrowConditionSatisfiedEvent(e *Escrow, actor uuid.UUID, c ConditionType, at time.Time) *EscrowConditionSatisfiedEvent {
	return &EscrowConditionSatisfiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowConditionSatisfied, AggregateTypeEscrow, e.ID, actor, at),
		EscrowID:        e.ID,
		TransactionID:   e.TransactionID,
		Condition:       c,
		AllSatisfied:    e.AllConditionsSatisfied(),
	}
}

// EscrowFundedEvent is raised when both payment stages have been received
type EscrowFundedEvent struct {
	shared.BaseDomainEvent
	EscrowID      uuid.UUID       `json:"escrow_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewEscrowFundedEvent creates an EscrowFundedEvent
func NewEscrowFundedEvent(e *Escrow, actor uuid.UUID, at time.Time) *EscrowFundedEvent {
	return &EscrowFundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowFunded, AggregateTypeEscrow, e.ID, actor, at),
		EscrowID:        e.ID,
		TransactionID:   e.TransactionID,
		TotalAmount:     e.TotalAmount,
	}
}

// EscrowReleasedEvent is raised when funds are paid out to the supplier
type EscrowReleasedEvent struct {
	shared.BaseDomainEvent
	EscrowID      uuid.UUID       `json:"escrow_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// NewEscrowReleasedEvent creates an EscrowReleasedEvent
func NewEscrowReleasedEvent(e *Escrow, actor uuid.UUID, at time.Time) *EscrowReleasedEvent {
	return &EscrowReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowReleased, AggregateTypeEscrow, e.ID, actor, at),
		EscrowID:        e.ID,
		TransactionID:   e.TransactionID,
		Amount:          e.TotalAmount,
		Currency:        string(e.Currency),
	}
}

// EscrowRefundedEvent is raised when funds are returned to the buyer
type EscrowRefundedEvent struct {
	shared.BaseDomainEvent
	EscrowID      uuid.UUID `json:"escrow_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Reason        string    `json:"reason"`
}

// NewEscrowRefundedEvent creates an EscrowRefundedEvent
func NewEscrowRefundedEvent(e *Escrow, actor uuid.UUID, reason string, at time.Time) *EscrowRefundedEvent {
	return &EscrowRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowRefunded, AggregateTypeEscrow, e.ID, actor, at),
		EscrowID:        e.ID,
		TransactionID:   e.TransactionID,
		Reason:          reason,
	}
}

// EscrowDisputedEvent is raised when a party disputes the escrow
type EscrowDisputedEvent struct {
	shared.BaseDomainEvent
	EscrowID      uuid.UUID `json:"escrow_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Reason        string    `json:"reason"`
}

// NewEscrowDisputedEvent creates an EscrowDisputedEvent
func NewEscrowDisputedEvent(e *Escrow, actor uuid.UUID, reason string, at time.Time) *EscrowDisputedEvent {
	return &EscrowDisputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowDisputed, AggregateTypeEscrow, e.ID, actor, at),
		EscrowID:        e.ID,
		TransactionID:   e.TransactionID,
		Reason:          reason,
	}
}
