package trade

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferStatus is the state of a supplier quotation
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "PENDING"
	OfferStatusAccepted  OfferStatus = "ACCEPTED"
	OfferStatusRejected  OfferStatus = "REJECTED"
	OfferStatusWithdrawn OfferStatus = "WITHDRAWN"
	OfferStatusExpired   OfferStatus = "EXPIRED"
)

// IsValid checks if the status is a valid OfferStatus
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected, OfferStatusWithdrawn, OfferStatusExpired:
		return true
	}
	return false
}

// Offer is a priced supplier response to a buyer requirement.
// It is owned by the quotation subsystem; this service reads it to admit transactions.
type Offer struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	BuyerID       uuid.UUID
	SupplierID    uuid.UUID
	Status        OfferStatus
	TotalAmount   decimal.Decimal
	UnitPrice     decimal.Decimal
	Quantity      decimal.Decimal
	Currency      valueobject.Currency
	PaymentTerms  string
	ValidUntil    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total returns the offer amount as Money
func (o *Offer) Total() valueobject.Money {
	return valueobject.NewMoney(o.TotalAmount, string(o.Currency))
}

// EnsureAdmissible checks the offer may become a transaction
func (o *Offer) EnsureAdmissible() error {
	if o.Status != OfferStatusAccepted {
		return shared.NewDomainError(shared.CodePreconditionFailed,
			"offer must be ACCEPTED to create a transaction, current status is "+string(o.Status)).
			WithDetail("offerStatus", string(o.Status))
	}
	if o.TotalAmount.IsNegative() {
		return shared.NewValidationError("offer total amount cannot be negative")
	}
	if o.BuyerID == uuid.Nil || o.SupplierID == uuid.Nil {
		return shared.NewDomainError(shared.CodePreconditionFailed, "offer is missing buyer or supplier")
	}
	return nil
}
