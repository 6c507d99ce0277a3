package models

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferModel maps a supplier quotation. Offers are written by the quotation
// subsystem and read here during admission.
type OfferModel struct {
	Row
	RequirementID uuid.UUID         `gorm:"type:uuid;not null;index"`
	BuyerID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	SupplierID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status        trade.OfferStatus `gorm:"type:varchar(20);not null"`
	TotalAmount   decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	UnitPrice     decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Quantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Currency      string            `gorm:"type:varchar(3);not null;default:'USD'"`
	PaymentTerms  string            `gorm:"type:varchar(200)"`
	ValidUntil    *time.Time
}

// TableName returns the table name for GORM
func (OfferModel) TableName() string {
	return "offers"
}

// ToDomain converts the persistence model to a domain Offer
func (m *OfferModel) ToDomain() *trade.Offer {
	return &trade.Offer{
		ID:            m.ID,
		RequirementID: m.RequirementID,
		BuyerID:       m.BuyerID,
		SupplierID:    m.SupplierID,
		Status:        m.Status,
		TotalAmount:   m.TotalAmount,
		UnitPrice:     m.UnitPrice,
		Quantity:      m.Quantity,
		Currency:      valueobject.Currency(m.Currency),
		PaymentTerms:  m.PaymentTerms,
		ValidUntil:    m.ValidUntil,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Offer
func (m *OfferModel) FromDomain(o *trade.Offer) {
	m.ID = o.ID
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.RequirementID = o.RequirementID
	m.BuyerID = o.BuyerID
	m.SupplierID = o.SupplierID
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.UnitPrice = o.UnitPrice
	m.Quantity = o.Quantity
	m.Currency = string(o.Currency)
	m.PaymentTerms = o.PaymentTerms
	m.ValidUntil = o.ValidUntil
}

// OfferModelFromDomain creates a new persistence model from a domain Offer
func OfferModelFromDomain(o *trade.Offer) *OfferModel {
	m := &OfferModel{}
	m.FromDomain(o)
	return m
}

// TransactionModel is the persistence model for the Transaction aggregate root.
// At most one non-cancelled row may exist per offer_id; the migration enforces
// that with the partial unique index ux_transactions_live_offer.
type TransactionModel struct {
	VersionedRow
	OfferID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	RequirementID uuid.UUID                   `gorm:"type:uuid;not null"`
	BuyerID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	SupplierID    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Status        trade.TransactionStatus     `gorm:"type:varchar(30);not null;index"`
	Amount        decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	AdvanceAmount decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	BalanceAmount decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	Currency      string                      `gorm:"type:varchar(3);not null;default:'USD'"`
	PaymentTerms  string                      `gorm:"type:varchar(200)"`
	EscrowID      *uuid.UUID                  `gorm:"type:uuid"`
	CreatedBy     uuid.UUID                   `gorm:"type:uuid;not null"`
	Notes         string                      `gorm:"type:text"`
	Checks        JSON[trade.AdmissionChecks] `gorm:"type:jsonb"`
	Shipment      JSON[*trade.Shipment]       `gorm:"type:jsonb"`
	CancelReason  string                      `gorm:"type:varchar(1000)"`
	CancelledAt   *time.Time
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *trade.Transaction {
	return &trade.Transaction{
		BaseAggregateRoot: m.root(),
		OfferID:           m.OfferID,
		RequirementID:     m.RequirementID,
		BuyerID:           m.BuyerID,
		SupplierID:        m.SupplierID,
		Status:            m.Status,
		Amount:            m.Amount,
		AdvanceAmount:     m.AdvanceAmount,
		BalanceAmount:     m.BalanceAmount,
		Currency:          valueobject.Currency(m.Currency),
		PaymentTerms:      m.PaymentTerms,
		EscrowID:          m.EscrowID,
		CreatedBy:         m.CreatedBy,
		Notes:             m.Notes,
		Checks:            m.Checks.V,
		Shipment:          m.Shipment.V,
		CancelReason:      m.CancelReason,
		CancelledAt:       m.CancelledAt,
		CompletedAt:       m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *trade.Transaction) {
	m.VersionedRow = versionedRowOf(t.BaseAggregateRoot)
	m.OfferID = t.OfferID
	m.RequirementID = t.RequirementID
	m.BuyerID = t.BuyerID
	m.SupplierID = t.SupplierID
	m.Status = t.Status
	m.Amount = t.Amount
	m.AdvanceAmount = t.AdvanceAmount
	m.BalanceAmount = t.BalanceAmount
	m.Currency = string(t.Currency)
	m.PaymentTerms = t.PaymentTerms
	m.EscrowID = t.EscrowID
	m.CreatedBy = t.CreatedBy
	m.Notes = t.Notes
	m.Checks = NewJSON(t.Checks)
	m.Shipment = NewJSON(t.Shipment)
	m.CancelReason = t.CancelReason
	m.CancelledAt = t.CancelledAt
	m.CompletedAt = t.CompletedAt
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *trade.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
