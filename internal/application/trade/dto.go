package trade

import (
	"time"

	escrowapp "github.com/Goutham009/tradewave-sub005/internal/application/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Admission DTOs ====================

// OverrideInput is an admin's justification for bypassing the good-standing gate
type OverrideInput struct {
	Justification string `json:"justification" binding:"required,min=10,max=2000"`
}

// EscrowParams opens the escrow together with the transaction. No escrow is
// opened unless AdvancePercentage is set; PaymentTerms defaults to the offer's.
type EscrowParams struct {
	AdvancePercentage *decimal.Decimal `json:"advance_percentage"`
	PaymentTerms      string           `json:"payment_terms" binding:"max=500"`
}

func (p *EscrowParams) requested() bool {
	return p != nil && p.AdvancePercentage != nil
}

// CreateTransactionRequest admits an accepted offer as a transaction
type CreateTransactionRequest struct {
	OfferID  uuid.UUID      `json:"offer_id" binding:"required"`
	Notes    string         `json:"notes" binding:"max=2000"`
	Override *OverrideInput `json:"override"`
	Escrow   *EscrowParams  `json:"escrow"`
}

// AdmissionResult is the structured outcome of CreateTransaction. Gate
// failures are outcomes, not errors; Transaction is set only when admitted.
type AdmissionResult struct {
	Outcome               string                    `json:"outcome"`
	Transaction           *TransactionResponse      `json:"transaction,omitempty"`
	Escrow                *escrowapp.EscrowResponse `json:"escrow,omitempty"`
	ChecksPerformed       trade.AdmissionChecks     `json:"checks_performed"`
	ExistingTransactionID *uuid.UUID                `json:"existing_transaction_id,omitempty"`
	OverrideApplied       bool                      `json:"override_applied"`
}

// Admitted reports whether a transaction was created
func (r *AdmissionResult) Admitted() bool {
	return r.Outcome == string(trade.OutcomeAdmitted)
}

// ==================== Fulfillment DTOs ====================

// ConfirmShipmentRequest confirms that goods left the supplier
type ConfirmShipmentRequest struct {
	TrackingNumber    string     `json:"tracking_number" binding:"required,tracking"`
	Provider          string     `json:"provider" binding:"required,min=1,max=100"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Notes             string     `json:"notes" binding:"max=2000"`
}

// CancelTransactionRequest cancels a transaction
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=2000"`
}

// ShipmentResponse is the shipping sub-resource
type ShipmentResponse struct {
	TrackingNumber    string     `json:"tracking_number"`
	Provider          string     `json:"provider"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ShippedAt         time.Time  `json:"shipped_at"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	CarrierStatus     string     `json:"carrier_status,omitempty"`
	CurrentLocation   string     `json:"current_location,omitempty"`
	LastTrackedAt     *time.Time `json:"last_tracked_at,omitempty"`
}

// TransactionResponse is the externally visible view of a transaction
type TransactionResponse struct {
	ID            uuid.UUID             `json:"id"`
	OfferID       uuid.UUID             `json:"offer_id"`
	RequirementID uuid.UUID             `json:"requirement_id"`
	BuyerID       uuid.UUID             `json:"buyer_id"`
	SupplierID    uuid.UUID             `json:"supplier_id"`
	Status        string                `json:"status"`
	Amount        decimal.Decimal       `json:"amount"`
	AdvanceAmount decimal.Decimal       `json:"advance_amount"`
	BalanceAmount decimal.Decimal       `json:"balance_amount"`
	Currency      string                `json:"currency"`
	PaymentTerms  string                `json:"payment_terms,omitempty"`
	EscrowID      *uuid.UUID            `json:"escrow_id,omitempty"`
	CreatedBy     uuid.UUID             `json:"created_by"`
	Notes         string                `json:"notes,omitempty"`
	Checks        trade.AdmissionChecks `json:"admission_checks"`
	Shipment      *ShipmentResponse     `json:"shipment,omitempty"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	Version       int                   `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TransitionResponse reports a fulfillment step and whether it changed anything
type TransitionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Changed     bool                `json:"changed"`
}

// TrackingResponse is a transaction's shipment enriched with carrier data
type TrackingResponse struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	Shipment      ShipmentResponse    `json:"shipment"`
	Carrier       *trade.ShipmentInfo `json:"carrier,omitempty"`
	// CarrierError is set when the provider could not be reached
	CarrierError string `json:"carrier_error,omitempty"`
}

// ToTransactionResponse converts a transaction
func ToTransactionResponse(t *trade.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		OfferID:       t.OfferID,
		RequirementID: t.RequirementID,
		BuyerID:       t.BuyerID,
		SupplierID:    t.SupplierID,
		Status:        string(t.Status),
		Amount:        t.Amount,
		AdvanceAmount: t.AdvanceAmount,
		BalanceAmount: t.BalanceAmount,
		Currency:      string(t.Currency),
		PaymentTerms:  t.PaymentTerms,
		EscrowID:      t.EscrowID,
		CreatedBy:     t.CreatedBy,
		Notes:         t.Notes,
		Checks:        t.Checks,
		CancelReason:  t.CancelReason,
		CancelledAt:   t.CancelledAt,
		CompletedAt:   t.CompletedAt,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.Shipment != nil {
		s := toShipmentResponse(t.Shipment)
		resp.Shipment = &s
	}
	return resp
}

func toShipmentResponse(s *trade.Shipment) ShipmentResponse {
	return ShipmentResponse{
		TrackingNumber:    s.TrackingNumber,
		Provider:          s.Provider,
		EstimatedDelivery: s.EstimatedDelivery,
		Notes:             s.Notes,
		ShippedAt:         s.ShippedAt,
		DeliveredAt:       s.DeliveredAt,
		CarrierStatus:     s.CarrierStatus,
		CurrentLocation:   s.CurrentLocation,
		LastTrackedAt:     s.LastTrackedAt,
	}
}
