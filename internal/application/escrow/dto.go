package escrow

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenEscrowRequest opens the escrow of a transaction still pending admin review
type OpenEscrowRequest struct {
	TransactionID     uuid.UUID        `json:"transaction_id" binding:"required"`
	AdvancePercentage *decimal.Decimal `json:"advance_percentage"`
}

// RecordPaymentRequest records one payment stage
type RecordPaymentRequest struct {
	Stage string `json:"stage" binding:"required,oneof=ADVANCE BALANCE"`
}

// ReasonRequest carries a mandatory reason for refunds and disputes
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=2000"`
}

// ConditionResponse is a release condition
type ConditionResponse struct {
	Type        string     `json:"type"`
	Satisfied   bool       `json:"satisfied"`
	SatisfiedAt *time.Time `json:"satisfied_at,omitempty"`
	SatisfiedBy *uuid.UUID `json:"satisfied_by,omitempty"`
}

// EscrowResponse is the externally visible view of an escrow
type EscrowResponse struct {
	ID                uuid.UUID           `json:"id"`
	TransactionID     uuid.UUID           `json:"transaction_id"`
	Status            string              `json:"status"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	AdvancePercentage decimal.Decimal     `json:"advance_percentage"`
	AdvanceAmount     decimal.Decimal     `json:"advance_amount"`
	BalanceAmount     decimal.Decimal     `json:"balance_amount"`
	Currency          string              `json:"currency"`
	PaymentTerms      string              `json:"payment_terms,omitempty"`
	Conditions        []ConditionResponse `json:"release_conditions"`
	AdvancePaidAt     *time.Time          `json:"advance_paid_at,omitempty"`
	BalancePaidAt     *time.Time          `json:"balance_paid_at,omitempty"`
	ReleasedAt        *time.Time          `json:"released_at,omitempty"`
	RefundedAt        *time.Time          `json:"refunded_at,omitempty"`
	RefundReason      string              `json:"refund_reason,omitempty"`
	DisputedAt        *time.Time          `json:"disputed_at,omitempty"`
	DisputeReason     string              `json:"dispute_reason,omitempty"`
	Version           int                 `json:"version"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ConditionChangeResponse reports a release-condition update
type ConditionChangeResponse struct {
	Escrow  EscrowResponse `json:"escrow"`
	Changed bool           `json:"changed"`
}

// ToEscrowResponse converts an escrow
func ToEscrowResponse(e *escrow.Escrow) EscrowResponse {
	conditions := make([]ConditionResponse, len(e.Conditions))
	for i, c := range e.Conditions {
		conditions[i] = ConditionResponse{
			Type:        string(c.Type),
			Satisfied:   c.Satisfied,
			SatisfiedAt: c.SatisfiedAt,
			SatisfiedBy: c.SatisfiedBy,
		}
	}
	return EscrowResponse{
		ID:                e.ID,
		TransactionID:     e.TransactionID,
		Status:            string(e.Status),
		TotalAmount:       e.TotalAmount,
		AdvancePercentage: e.AdvancePercentage,
		AdvanceAmount:     e.AdvanceAmount,
		BalanceAmount:     e.BalanceAmount,
		Currency:          string(e.Currency),
		PaymentTerms:      e.PaymentTerms,
		Conditions:        conditions,
		AdvancePaidAt:     e.AdvancePaidAt,
		BalancePaidAt:     e.BalancePaidAt,
		ReleasedAt:        e.ReleasedAt,
		RefundedAt:        e.RefundedAt,
		RefundReason:      e.RefundReason,
		DisputedAt:        e.DisputedAt,
		DisputeReason:     e.DisputeReason,
		Version:           e.Version,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
