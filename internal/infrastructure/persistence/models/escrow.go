package models

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowModel is the persistence model for the Escrow aggregate root
type EscrowModel struct {
	VersionedRow
	TransactionID     uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex"`
	TotalAmount       decimal.Decimal                 `gorm:"type:decimal(18,2);not null"`
	AdvancePercentage decimal.Decimal                 `gorm:"type:decimal(5,2);not null"`
	AdvanceAmount     decimal.Decimal                 `gorm:"type:decimal(18,2);not null"`
	BalanceAmount     decimal.Decimal                 `gorm:"type:decimal(18,2);not null"`
	Currency          string                          `gorm:"type:varchar(3);not null;default:'USD'"`
	Status            escrow.Status                   `gorm:"type:varchar(20);not null;index"`
	Conditions        JSON[[]escrow.ReleaseCondition] `gorm:"type:jsonb"`
	PaymentTerms      string                          `gorm:"type:varchar(200)"`
	AdvancePaidAt     *time.Time
	BalancePaidAt     *time.Time
	ReleasedAt        *time.Time
	RefundedAt        *time.Time
	RefundReason      string `gorm:"type:varchar(1000)"`
	DisputedAt        *time.Time
	DisputeReason     string `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (EscrowModel) TableName() string {
	return "escrows"
}

// ToDomain converts the persistence model to a domain Escrow
func (m *EscrowModel) ToDomain() *escrow.Escrow {
	return &escrow.Escrow{
		BaseAggregateRoot: m.root(),
		TransactionID:     m.TransactionID,
		TotalAmount:       m.TotalAmount,
		AdvancePercentage: m.AdvancePercentage,
		AdvanceAmount:     m.AdvanceAmount,
		BalanceAmount:     m.BalanceAmount,
		Currency:          valueobject.Currency(m.Currency),
		Status:            m.Status,
		Conditions:        m.Conditions.V,
		PaymentTerms:      m.PaymentTerms,
		AdvancePaidAt:     m.AdvancePaidAt,
		BalancePaidAt:     m.BalancePaidAt,
		ReleasedAt:        m.ReleasedAt,
		RefundedAt:        m.RefundedAt,
		RefundReason:      m.RefundReason,
		DisputedAt:        m.DisputedAt,
		DisputeReason:     m.DisputeReason,
	}
}

// FromDomain populates the persistence model from a domain Escrow
func (m *EscrowModel) FromDomain(e *escrow.Escrow) {
	m.VersionedRow = versionedRowOf(e.BaseAggregateRoot)
	m.TransactionID = e.TransactionID
	m.TotalAmount = e.TotalAmount
	m.AdvancePercentage = e.AdvancePercentage
	m.AdvanceAmount = e.AdvanceAmount
	m.BalanceAmount = e.BalanceAmount
	m.Currency = string(e.Currency)
	m.Status = e.Status
	m.Conditions = NewJSON(e.Conditions)
	m.PaymentTerms = e.PaymentTerms
	m.AdvancePaidAt = e.AdvancePaidAt
	m.BalancePaidAt = e.BalancePaidAt
	m.ReleasedAt = e.ReleasedAt
	m.RefundedAt = e.RefundedAt
	m.RefundReason = e.RefundReason
	m.DisputedAt = e.DisputedAt
	m.DisputeReason = e.DisputeReason
}

// EscrowModelFromDomain creates a new persistence model from a domain Escrow
func EscrowModelFromDomain(e *escrow.Escrow) *EscrowModel {
	m := &EscrowModel{}
	m.FromDomain(e)
	return m
}
