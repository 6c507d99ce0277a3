package trade

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the fulfillment state of a transaction
type TransactionStatus string

const (
	TransactionPendingAdminReview TransactionStatus = "PENDING_ADMIN_REVIEW"
	TransactionEscrowCreated      TransactionStatus = "ESCROW_CREATED"
	TransactionPaid               TransactionStatus = "PAID"
	TransactionPaymentReceived    TransactionStatus = "PAYMENT_RECEIVED"
	TransactionEscrowHeld         TransactionStatus = "ESCROW_HELD"
	TransactionProduction         TransactionStatus = "PRODUCTION"
	TransactionShipped            TransactionStatus = "SHIPPED"
	TransactionDelivered          TransactionStatus = "DELIVERED"
	TransactionCompleted          TransactionStatus = "COMPLETED"
	TransactionCancelled          TransactionStatus = "CANCELLED"
)

// transactionTransitions lists the allowed next states. CANCELLED is added
// for every non-terminal state by CanTransitionTo.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionPendingAdminReview: {TransactionEscrowCreated},
	TransactionEscrowCreated:      {TransactionPaid, TransactionPaymentReceived, TransactionEscrowHeld},
	TransactionPaid:               {TransactionEscrowHeld, TransactionProduction, TransactionShipped},
	TransactionPaymentReceived:    {TransactionEscrowHeld, TransactionProduction, TransactionShipped},
	TransactionEscrowHeld:         {TransactionProduction, TransactionShipped},
	TransactionProduction:         {TransactionShipped},
	TransactionShipped:            {TransactionDelivered},
	TransactionDelivered:          {TransactionCompleted},
}

// shippableFrom are the states ConfirmShipment accepts
var shippableFrom = []TransactionStatus{TransactionPaid, TransactionPaymentReceived, TransactionEscrowHeld, TransactionProduction}

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	_, ok := transactionTransitions[s]
	return ok || s.IsTerminal()
}

// IsTerminal returns true for COMPLETED and CANCELLED
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionCompleted || s == TransactionCancelled
}

// IsLive returns true for every status that holds the offer (all but CANCELLED)
func (s TransactionStatus) IsLive() bool {
	return s != TransactionCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == TransactionCancelled {
		return true
	}
	return slices.Contains(transactionTransitions[s], target)
}

// PaymentStage identifies which escrow payment was received
type PaymentStage string

const (
	PaymentStageAdvance PaymentStage = "ADVANCE"
	PaymentStageBalance PaymentStage = "BALANCE"
)

// IsValid checks if the stage is known
func (s PaymentStage) IsValid() bool {
	return s == PaymentStageAdvance || s == PaymentStageBalance
}

// Transaction is the binding, escrow-backed deal admitted from an accepted offer.
// It is created only by admission and is never deleted.
type Transaction struct {
	shared.BaseAggregateRoot
	OfferID       uuid.UUID
	RequirementID uuid.UUID
	BuyerID       uuid.UUID
	SupplierID    uuid.UUID
	Status        TransactionStatus
	Amount        decimal.Decimal
	AdvanceAmount decimal.Decimal
	BalanceAmount decimal.Decimal
	Currency      valueobject.Currency
	PaymentTerms  string
	EscrowID      *uuid.UUID
	CreatedBy     uuid.UUID
	Notes         string
	Checks        AdmissionChecks
	Shipment      *Shipment
	CancelReason  string
	CancelledAt   *time.Time
	CompletedAt   *time.Time
}

// NewTransaction creates a PENDING_ADMIN_REVIEW transaction for an admissible offer
func NewTransaction(offer *Offer, createdBy uuid.UUID, notes string, checks AdmissionChecks, now time.Time) (*Transaction, error) {
	if err := offer.EnsureAdmissible(); err != nil {
		return nil, err
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("creator id cannot be empty")
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		OfferID:           offer.ID,
		RequirementID:     offer.RequirementID,
		BuyerID:           offer.BuyerID,
		SupplierID:        offer.SupplierID,
		Status:            TransactionPendingAdminReview,
		Amount:            offer.TotalAmount,
		AdvanceAmount:     decimal.Zero,
		BalanceAmount:     offer.TotalAmount,
		Currency:          offer.Total().Currency(),
		PaymentTerms:      offer.PaymentTerms,
		CreatedBy:         createdBy,
		Notes:             strings.TrimSpace(notes),
		Checks:            checks,
	}

	t.AddDomainEvent(NewTransactionCreatedEvent(t, now))
	return t, nil
}

func (t *Transaction) transition(actor uuid.UUID, to TransactionStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(to) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("transaction cannot move from %s to %s", t.Status, to)).
			WithDetail("currentStatus", string(t.Status)).
			WithDetail("targetStatus", string(to))
	}
	from := t.Status
	t.Status = to
	t.Touch(now)
	t.AddDomainEvent(NewTransactionStatusChangedEvent(t, actor, from, to, now))
	return nil
}

// MarkEscrowCreated links the escrow and records the agreed split
func (t *Transaction) MarkEscrowCreated(actor, escrowID uuid.UUID, advance, balance decimal.Decimal, now time.Time) error {
	if !advance.Add(balance).Equal(t.Amount) {
		return shared.NewValidationError("escrow split does not reconcile with transaction amount")
	}
	if err := t.transition(actor, TransactionEscrowCreated, now); err != nil {
		return err
	}
	t.EscrowID = &escrowID
	t.AdvanceAmount = advance
	t.BalanceAmount = balance
	return nil
}

// RecordPayment moves the transaction along as escrow payments arrive.
// The advance moves it to PAYMENT_RECEIVED and full funding to ESCROW_HELD.
// A stage already reflected by the current status is a no-op, so retried
// payment notifications are safe.
func (t *Transaction) RecordPayment(actor uuid.UUID, stage PaymentStage, now time.Time) (bool, error) {
	if !stage.IsValid() {
		return false, shared.NewValidationError("invalid payment stage: " + string(stage))
	}
	target := TransactionPaymentReceived
	reflected := paymentReceivedOrLater
	if stage == PaymentStageBalance {
		target = TransactionEscrowHeld
		reflected = escrowHeldOrLater
	}
	if slices.Contains(reflected, t.Status) {
		return false, nil
	}
	if err := t.transition(actor, target, now); err != nil {
		return false, err
	}
	return true, nil
}

var (
	shippedOrLater         = []TransactionStatus{TransactionShipped, TransactionDelivered, TransactionCompleted}
	escrowHeldOrLater      = append([]TransactionStatus{TransactionEscrowHeld, TransactionProduction}, shippedOrLater...)
	paymentReceivedOrLater = append([]TransactionStatus{TransactionPaid, TransactionPaymentReceived}, escrowHeldOrLater...)
)

// StartProduction marks the supplier as producing the goods
func (t *Transaction) StartProduction(actor uuid.UUID, now time.Time) (bool, error) {
	if t.Status == TransactionProduction {
		return false, nil
	}
	return true, t.transition(actor, TransactionProduction, now)
}

// ConfirmShipment validates the shipment details and moves the transaction to SHIPPED.
// Confirming the same tracking number and provider again is a no-op, also after
// the goods were delivered.
func (t *Transaction) ConfirmShipment(actor uuid.UUID, details ShipmentDetails, now time.Time) (bool, error) {
	details, err := details.Normalize()
	if err != nil {
		return false, err
	}
	if slices.Contains(shippedOrLater, t.Status) && t.Shipment != nil {
		if t.Shipment.Matches(details) {
			return false, nil
		}
		return false, shared.NewDomainError(shared.CodeConflict, "transaction already shipped with a different tracking number").
			WithDetail("trackingNumber", t.Shipment.TrackingNumber)
	}
	if !slices.Contains(shippableFrom, t.Status) {
		return false, shared.NewDomainError(shared.CodeInvalidTransition,
			"shipment can only be confirmed after payment, current status is "+string(t.Status)).
			WithDetail("currentStatus", string(t.Status))
	}

	if err := t.transition(actor, TransactionShipped, now); err != nil {
		return false, err
	}
	t.Shipment = &Shipment{
		TrackingNumber:    details.TrackingNumber,
		Provider:          details.Provider,
		EstimatedDelivery: details.EstimatedDelivery,
		Notes:             details.Notes,
		ShippedAt:         now,
	}
	t.AddDomainEvent(NewTransactionShippedEvent(t, actor, now))
	return true, nil
}

// ConfirmDelivery moves a shipped transaction to DELIVERED; repeated calls are no-ops
func (t *Transaction) ConfirmDelivery(actor uuid.UUID, now time.Time) (bool, error) {
	if t.Status == TransactionDelivered || t.Status == TransactionCompleted {
		return false, nil
	}
	if err := t.transition(actor, TransactionDelivered, now); err != nil {
		return false, err
	}
	if t.Shipment != nil {
		t.Shipment.DeliveredAt = &now
	}
	t.AddDomainEvent(NewTransactionDeliveredEvent(t, actor, now))
	return true, nil
}

// Complete closes a delivered transaction
func (t *Transaction) Complete(actor uuid.UUID, now time.Time) (bool, error) {
	if t.Status == TransactionCompleted {
		return false, nil
	}
	if err := t.transition(actor, TransactionCompleted, now); err != nil {
		return false, err
	}
	t.CompletedAt = &now
	return true, nil
}

// Cancel moves any non-terminal transaction to CANCELLED, releasing the offer
func (t *Transaction) Cancel(actor uuid.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("cancel reason is required")
	}
	if err := t.transition(actor, TransactionCancelled, now); err != nil {
		return err
	}
	t.CancelReason = reason
	t.CancelledAt = &now
	t.AddDomainEvent(NewTransactionCancelledEvent(t, actor, reason, now))
	return nil
}

// ApplyTracking stores the provider snapshot on the shipment without touching status
func (t *Transaction) ApplyTracking(status, location string, now time.Time) {
	if t.Shipment == nil {
		return
	}
	t.Shipment.CarrierStatus = status
	t.Shipment.CurrentLocation = location
	t.Shipment.LastTrackedAt = &now
}

// IsParty reports whether userID is the buyer or supplier of the transaction
func (t *Transaction) IsParty(userID uuid.UUID) bool {
	return userID != uuid.Nil && (userID == t.BuyerID || userID == t.SupplierID)
}
