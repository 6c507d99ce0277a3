package trade

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeTransaction is the outbox aggregate type for transactions
const AggregateTypeTransaction = "Transaction"

// Event type constants
const (
	EventTypeTransactionCreated       = "TransactionCreated"
	EventTypeTransactionStatusChanged = "TransactionStatusChanged"
	EventTypeTransactionShipped       = "TransactionShipped"
	EventTypeTransactionDelivered     = "TransactionDelivered"
	EventTypeTransactionCancelled     = "TransactionCancelled"
)

// TransactionCreatedEvent is raised when admission creates a transaction
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID    uuid.UUID       `json:"transaction_id"`
	OfferID          uuid.UUID       `json:"offer_id"`
	BuyerID          uuid.UUID       `json:"buyer_id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	IsFirstTimeBuyer bool            `json:"is_first_time_buyer"`
	GateOverridden   bool            `json:"gate_overridden"`
}

// NewTransactionCreatedEvent creates a TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction, at time.Time) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, t.ID, t.CreatedBy, at),
		TransactionID:    t.ID,
		OfferID:          t.OfferID,
		BuyerID:          t.BuyerID,
		SupplierID:       t.SupplierID,
		Amount:           t.Amount,
		Currency:         string(t.Currency),
		IsFirstTimeBuyer: t.Checks.IsFirstTimeBuyer,
		GateOverridden:   t.Checks.Override != nil,
	}
}

// TransactionStatusChangedEvent is raised on every fulfillment transition
type TransactionStatusChangedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID         `json:"transaction_id"`
	BuyerID       uuid.UUID         `json:"buyer_id"`
	SupplierID    uuid.UUID         `json:"supplier_id"`
	From          TransactionStatus `json:"from"`
	To            TransactionStatus `json:"to"`
}

// NewTransactionStatusChangedEvent creates a TransactionStatusChangedEvent
func NewTransactionStatusChangedEvent(t *Transaction, actor uuid.UUID, from, to TransactionStatus, at time.Time) *TransactionStatusChangedEvent {
	return &TransactionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionStatusChanged, AggregateTypeTransaction, t.ID, actor, at),
		TransactionID:   t.ID,
		BuyerID:         t.BuyerID,
		SupplierID:      t.SupplierID,
		From:            from,
		To:              to,
	}
}

// TransactionShippedEvent is raised when the supplier confirms shipment
type TransactionShippedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID  `json:"transaction_id"`
	BuyerID           uuid.UUID  `json:"buyer_id"`
	SupplierID        uuid.UUID  `json:"supplier_id"`
	TrackingNumber    string     `json:"tracking_number"`
	Provider          string     `json:"provider"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// NewTransactionShippedEvent creates a TransactionShippedEvent; the shipment must be set
func NewTransactionShippedEvent(t *Transaction, actor uuid.UUID, at time.Time) *TransactionShippedEvent {
	e := &TransactionShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionShipped, AggregateTypeTransaction, t.ID, actor, at),
		TransactionID:   t.ID,
		BuyerID:         t.BuyerID,
		SupplierID:      t.SupplierID,
	}
	if t.Shipment != nil {
		e.TrackingNumber = t.Shipment.TrackingNumber
		e.Provider = t.Shipment.Provider
		e.EstimatedDelivery = t.Shipment.EstimatedDelivery
	}
	return e
}

// TransactionDeliveredEvent is raised when the buyer (or an admin) confirms delivery
type TransactionDeliveredEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID  `json:"transaction_id"`
	BuyerID       uuid.UUID  `json:"buyer_id"`
	SupplierID    uuid.UUID  `json:"supplier_id"`
	EscrowID      *uuid.UUID `json:"escrow_id,omitempty"`
}

// NewTransactionDeliveredEvent creates a TransactionDeliveredEvent
func NewTransactionDeliveredEvent(t *Transaction, actor uuid.UUID, at time.Time) *TransactionDeliveredEvent {
	return &TransactionDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionDelivered, AggregateTypeTransaction, t.ID, actor, at),
		TransactionID:   t.ID,
		BuyerID:         t.BuyerID,
		SupplierID:      t.SupplierID,
		EscrowID:        t.EscrowID,
	}
}

// TransactionCancelledEvent is raised when a transaction is cancelled
type TransactionCancelledEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	OfferID       uuid.UUID `json:"offer_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	SupplierID    uuid.UUID `json:"supplier_id"`
	Reason        string    `json:"reason"`
}

// NewTransactionCancelledEvent creates a TransactionCancelledEvent
func NewTransactionCancelledEvent(t *Transaction, actor uuid.UUID, reason string, at time.Time) *TransactionCancelledEvent {
	return &TransactionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCancelled, AggregateTypeTransaction, t.ID, actor, at),
		TransactionID:   t.ID,
		OfferID:         t.OfferID,
		BuyerID:         t.BuyerID,
		SupplierID:      t.SupplierID,
		Reason:          reason,
	}
}
