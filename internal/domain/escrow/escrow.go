package escrow

import (
	"fmt"
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the state of an escrow
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusAdvancePaid    Status = "ADVANCE_PAID"
	StatusFunded         Status = "FUNDED"
	StatusReleased       Status = "RELEASED"
	StatusRefunded       Status = "REFUNDED"
	StatusDisputed       Status = "DISPUTED"
)

var statusTransitions = map[Status][]Status{
	StatusPendingPayment: {StatusAdvancePaid, StatusRefunded},
	StatusAdvancePaid:    {StatusFunded, StatusRefunded, StatusDisputed},
	StatusFunded:         {StatusReleased, StatusRefunded, StatusDisputed},
	StatusDisputed:       {StatusReleased, StatusRefunded},
	StatusReleased:       {},
	StatusRefunded:       {},
}

// IsValid checks if the status is a valid escrow status
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal returns true once funds have left the escrow
func (s Status) IsTerminal() bool {
	return s == StatusReleased || s == StatusRefunded
}

// CanTransitionTo checks if the escrow can move to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ConditionType is a release precondition
type ConditionType string

const (
	ConditionDeliveryConfirmed ConditionType = "DELIVERY_CONFIRMED"
	ConditionQualityApproved   ConditionType = "QUALITY_APPROVED"
	ConditionDocumentsVerified ConditionType = "DOCUMENTS_VERIFIED"
)

// StandardConditions are attached to every new escrow
var StandardConditions = []ConditionType{
	ConditionDeliveryConfirmed,
	ConditionQualityApproved,
	ConditionDocumentsVerified,
}

// IsValid checks if the condition type is known
func (c ConditionType) IsValid() bool {
	switch c {
	case ConditionDeliveryConfirmed, ConditionQualityApproved, ConditionDocumentsVerified:
		return true
	}
	return false
}

// ReleaseCondition tracks one precondition of releasing funds
type ReleaseCondition struct {
	Type        ConditionType `json:"type"`
	Satisfied   bool          `json:"satisfied"`
	SatisfiedAt *time.Time    `json:"satisfiedAt,omitempty"`
	SatisfiedBy *uuid.UUID    `json:"satisfiedBy,omitempty"`
}

// Escrow holds a transaction's funds until the release conditions are met
type Escrow struct {
	shared.BaseAggregateRoot
	TransactionID     uuid.UUID
	TotalAmount       decimal.Decimal
	AdvancePercentage decimal.Decimal
	AdvanceAmount     decimal.Decimal
	BalanceAmount     decimal.Decimal
	Currency          valueobject.Currency
	Status            Status
	Conditions        []ReleaseCondition
	PaymentTerms      string
	AdvancePaidAt     *time.Time
	BalancePaidAt     *time.Time
	ReleasedAt        *time.Time
	RefundedAt        *time.Time
	RefundReason      string
	DisputedAt        *time.Time
	DisputeReason     string
}

// OpenParams describes a new escrow
type OpenParams struct {
	TransactionID     uuid.UUID
	Total             decimal.Decimal
	Currency          valueobject.Currency
	AdvancePercentage *decimal.Decimal
	PaymentTerms      string
}

// Open creates an escrow in PENDING_PAYMENT with the standard release conditions
func Open(actor uuid.UUID, p OpenParams, now time.Time) (*Escrow, error) {
	if p.TransactionID == uuid.Nil {
		return nil, shared.NewValidationError("transaction id cannot be empty")
	}
	pct := DefaultAdvancePercentage
	if p.AdvancePercentage != nil {
		pct = *p.AdvancePercentage
	}
	split, err := ComputeSplit(p.Total, pct)
	if err != nil {
		return nil, err
	}
	currency := valueobject.ParseCurrency(string(p.Currency))

	conditions := make([]ReleaseCondition, 0, len(StandardConditions))
	for _, c := range StandardConditions {
		conditions = append(conditions, ReleaseCondition{Type: c})
	}

	e := &Escrow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		TransactionID:     p.TransactionID,
		TotalAmount:       split.Total,
		AdvancePercentage: split.AdvancePercentage,
		AdvanceAmount:     split.Advance,
		BalanceAmount:     split.Balance,
		Currency:          currency,
		Status:            StatusPendingPayment,
		Conditions:        conditions,
		PaymentTerms:      strings.TrimSpace(p.PaymentTerms),
	}
	e.AddDomainEvent(NewEscrowOpenedEvent(e, actor, now))
	return e, nil
}

func (e *Escrow) transition(to Status, now time.Time) error {
	if !e.Status.CanTransitionTo(to) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("escrow cannot move from %s to %s", e.Status, to)).
			WithDetail("currentStatus", string(e.Status)).
			WithDetail("targetStatus", string(to))
	}
	e.Status = to
	e.Touch(now)
	return nil
}

// Condition returns the release condition of the given type
func (e *Escrow) Condition(t ConditionType) (*ReleaseCondition, bool) {
	for i := range e.Conditions {
		if e.Conditions[i].Type == t {
			return &e.Conditions[i], true
		}
	}
	return nil, false
}

// SatisfyCondition marks a release condition satisfied. Satisfying an already
// satisfied condition changes nothing and raises no event.
func (e *Escrow) SatisfyCondition(t ConditionType, by uuid.UUID, now time.Time) (bool, error) {
	if !t.IsValid() {
		return false, shared.NewValidationError("unknown release condition: " + string(t))
	}
	cond, ok := e.Condition(t)
	if !ok {
		return false, shared.NewValidationError("escrow has no release condition " + string(t))
	}
	if cond.Satisfied {
		return false, nil
	}
	if e.Status.IsTerminal() {
		return false, shared.NewDomainError(shared.CodeInvalidState, "escrow is already "+string(e.Status))
	}
	cond.Satisfied = true
	cond.SatisfiedAt = &now
	cond.SatisfiedBy = &by
	e.Touch(now)
	e.AddDomainEvent(NewEscrowConditionSatisfiedEvent(e, by, t, now))
	return true, nil
}

// AllConditionsSatisfied reports whether funds may be released
func (e *Escrow) AllConditionsSatisfied() bool {
	for _, c := range e.Conditions {
		if !c.Satisfied {
			return false
		}
	}
	return true
}

// PendingConditions lists the unsatisfied condition types
func (e *Escrow) PendingConditions() []ConditionType {
	var pending []ConditionType
	for _, c := range e.Conditions {
		if !c.Satisfied {
			pending = append(pending, c.Type)
		}
	}
	return pending
}

// RecordAdvancePayment moves PENDING_PAYMENT to ADVANCE_PAID.
// A zero advance funds the escrow immediately. Repeating it is a no-op.
func (e *Escrow) RecordAdvancePayment(actor uuid.UUID, now time.Time) (bool, error) {
	if e.AdvancePaidAt != nil {
		return false, nil
	}
	if err := e.transition(StatusAdvancePaid, now); err != nil {
		return false, err
	}
	e.AdvancePaidAt = &now
	if e.BalanceAmount.IsZero() {
		return true, e.fund(actor, now)
	}
	return true, nil
}

// RecordBalancePayment moves ADVANCE_PAID to FUNDED. Repeating it is a no-op.
func (e *Escrow) RecordBalancePayment(actor uuid.UUID, now time.Time) (bool, error) {
	if e.BalancePaidAt != nil {
		return false, nil
	}
	if e.AdvancePaidAt == nil {
		return false, shared.NewDomainError(shared.CodePreconditionFailed, "advance payment must be recorded before the balance").
			WithDetail("currentStatus", string(e.Status))
	}
	return true, e.fund(actor, now)
}

func (e *Escrow) fund(actor uuid.UUID, now time.Time) error {
	if err := e.transition(StatusFunded, now); err != nil {
		return err
	}
	e.BalancePaidAt = &now
	e.AddDomainEvent(NewEscrowFundedEvent(e, actor, now))
	return nil
}

// Release pays the supplier. It requires FUNDED, or a DISPUTED escrow whose
// balance was paid before the dispute, and every release condition satisfied.
// A dispute raised before the balance was paid can only end in a refund.
func (e *Escrow) Release(actor uuid.UUID, now time.Time) error {
	if e.Status == StatusReleased {
		return nil
	}
	if e.Status != StatusFunded && e.Status != StatusDisputed {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			"escrow must be FUNDED to release, current status is "+string(e.Status)).
			WithDetail("currentStatus", string(e.Status)).
			WithDetail("targetStatus", string(StatusReleased))
	}
	if e.BalancePaidAt == nil {
		return shared.NewDomainError(shared.CodePreconditionFailed, "escrow balance was never paid, it can only be refunded").
			WithDetail("currentStatus", string(e.Status))
	}
	if pending := e.PendingConditions(); len(pending) > 0 {
		names := make([]string, len(pending))
		for i, p := range pending {
			names[i] = string(p)
		}
		return shared.NewDomainError(shared.CodePreconditionFailed, "release conditions not satisfied").
			WithDetail("pendingConditions", names)
	}
	if err := e.transition(StatusReleased, now); err != nil {
		return err
	}
	e.ReleasedAt = &now
	e.AddDomainEvent(NewEscrowReleasedEvent(e, actor, now))
	return nil
}

// Refund returns the held funds to the buyer
func (e *Escrow) Refund(actor uuid.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("refund reason is required")
	}
	if err := e.transition(StatusRefunded, now); err != nil {
		return err
	}
	e.RefundedAt = &now
	e.RefundReason = reason
	e.AddDomainEvent(NewEscrowRefundedEvent(e, actor, reason, now))
	return nil
}

// Dispute freezes the escrow until an admin releases or refunds it
func (e *Escrow) Dispute(actor uuid.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("dispute reason is required")
	}
	if err := e.transition(StatusDisputed, now); err != nil {
		return err
	}
	e.DisputedAt = &now
	e.DisputeReason = reason
	e.AddDomainEvent(NewEscrowDisputedEvent(e, actor, reason, now))
	return nil
}

// Reconciles verifies advance + balance equals the total
func (e *Escrow) Reconciles() bool {
	return e.AdvanceAmount.Add(e.BalanceAmount).Equal(e.TotalAmount)
}
