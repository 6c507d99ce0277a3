package trade

import (
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func acceptedOffer() *Offer {
	return &Offer{
		ID:            uuid.New(),
		RequirementID: uuid.New(),
		BuyerID:       uuid.New(),
		SupplierID:    uuid.New(),
		Status:        OfferStatusAccepted,
		TotalAmount:   decimal.NewFromInt(10000),
		UnitPrice:     decimal.NewFromInt(100),
		Quantity:      decimal.NewFromInt(100),
		Currency:      valueobject.USD,
		PaymentTerms:  "30% advance, 70% on delivery",
	}
}

func newTestTransaction(t *testing.T) *Transaction {
	t.Helper()
	tx, err := NewTransaction(acceptedOffer(), uuid.New(), "first order", AdmissionChecks{IsFirstTimeBuyer: true, Gate: GateKYB}, testNow)
	require.NoError(t, err)
	tx.ClearDomainEvents()
	return tx
}

func fundTransaction(t *testing.T, tx *Transaction) {
	t.Helper()
	require.NoError(t, tx.MarkEscrowCreated(uuid.Nil, uuid.New(), decimal.NewFromInt(3000), decimal.NewFromInt(7000), testNow))
	_, err := tx.RecordPayment(uuid.Nil, PaymentStageAdvance, testNow)
	require.NoError(t, err)
}

func TestNewTransaction(t *testing.T) {
	t.Run("creates pending admin review with offer amount", func(t *testing.T) {
		offer := acceptedOffer()
		admin := uuid.New()
		tx, err := NewTransaction(offer, admin, "", AdmissionChecks{}, testNow)
		require.NoError(t, err)

		assert.Equal(t, TransactionPendingAdminReview, tx.Status)
		assert.True(t, offer.TotalAmount.Equal(tx.Amount))
		assert.Equal(t, offer.BuyerID, tx.BuyerID)
		assert.Equal(t, admin, tx.CreatedBy)
		require.Len(t, tx.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeTransactionCreated, tx.GetDomainEvents()[0].EventType())
	})

	t.Run("requires accepted offer", func(t *testing.T) {
		offer := acceptedOffer()
		offer.Status = OfferStatusPending
		_, err := NewTransaction(offer, uuid.New(), "", AdmissionChecks{}, testNow)
		assert.Equal(t, shared.CodePreconditionFailed, shared.CodeOf(err))
	})
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TransactionStatus
		to   TransactionStatus
		want bool
	}{
		{TransactionPendingAdminReview, TransactionEscrowCreated, true},
		{TransactionPendingAdminReview, TransactionShipped, false},
		{TransactionEscrowCreated, TransactionPaymentReceived, true},
		{TransactionPaymentReceived, TransactionProduction, true},
		{TransactionProduction, TransactionShipped, true},
		{TransactionShipped, TransactionDelivered, true},
		{TransactionDelivered, TransactionCompleted, true},
		{TransactionShipped, TransactionCompleted, false},
		{TransactionDelivered, TransactionCancelled, true},
		{TransactionCompleted, TransactionCancelled, false},
		{TransactionCancelled, TransactionEscrowCreated, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransaction_ConfirmShipment(t *testing.T) {
	supplier := uuid.New()
	eta := testNow.Add(72 * time.Hour)
	details := ShipmentDetails{TrackingNumber: " 1Z999AA10123456784 ", Provider: "UPS", EstimatedDelivery: &eta}

	t.Run("ships a paid transaction", func(t *testing.T) {
		tx := newTestTransaction(t)
		fundTransaction(t, tx)
		tx.ClearDomainEvents()

		changed, err := tx.ConfirmShipment(supplier, details, testNow)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, TransactionShipped, tx.Status)
		require.NotNil(t, tx.Shipment)
		assert.Equal(t, "1Z999AA10123456784", tx.Shipment.TrackingNumber)
		assert.Equal(t, &eta, tx.Shipment.EstimatedDelivery)

		var types []string
		for _, e := range tx.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{EventTypeTransactionStatusChanged, EventTypeTransactionShipped}, types)
	})

	t.Run("repeated confirmation is a no-op", func(t *testing.T) {
		tx := newTestTransaction(t)
		fundTransaction(t, tx)
		_, err := tx.ConfirmShipment(supplier, details, testNow)
		require.NoError(t, err)
		tx.ClearDomainEvents()

		changed, err := tx.ConfirmShipment(supplier, details, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, tx.GetDomainEvents())
		assert.Equal(t, testNow, tx.Shipment.ShippedAt)

		_, err = tx.ConfirmShipment(supplier, ShipmentDetails{TrackingNumber: "OTHER123", Provider: "DHL"}, testNow)
		assert.Equal(t, shared.CodeConflict, shared.CodeOf(err))
	})

	t.Run("retry after delivery is a no-op", func(t *testing.T) {
		tx := newTestTransaction(t)
		fundTransaction(t, tx)
		_, err := tx.ConfirmShipment(supplier, details, testNow)
		require.NoError(t, err)
		_, err = tx.ConfirmDelivery(uuid.Nil, testNow.Add(time.Hour))
		require.NoError(t, err)
		tx.ClearDomainEvents()

		changed, err := tx.ConfirmShipment(supplier, ShipmentDetails{TrackingNumber: "1z999aa10123456784", Provider: "ups"}, testNow.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, TransactionDelivered, tx.Status)
		assert.Empty(t, tx.GetDomainEvents())

		_, err = tx.Complete(uuid.Nil, testNow.Add(3*time.Hour))
		require.NoError(t, err)
		changed, err = tx.ConfirmShipment(supplier, details, testNow.Add(4*time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, TransactionCompleted, tx.Status)

		_, err = tx.ConfirmShipment(supplier, ShipmentDetails{TrackingNumber: "OTHER123", Provider: "UPS"}, testNow)
		assert.Equal(t, shared.CodeConflict, shared.CodeOf(err))
	})

	t.Run("rejects invalid input before mutation", func(t *testing.T) {
		tests := []struct {
			name    string
			details ShipmentDetails
		}{
			{"short tracking number", ShipmentDetails{TrackingNumber: "AB", Provider: "UPS"}},
			{"two multibyte characters", ShipmentDetails{TrackingNumber: "運送", Provider: "UPS"}},
			{"blank tracking number", ShipmentDetails{TrackingNumber: "   ", Provider: "UPS"}},
			{"missing provider", ShipmentDetails{TrackingNumber: "ABC123", Provider: " "}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tx := newTestTransaction(t)
				fundTransaction(t, tx)
				before := tx.Status

				_, err := tx.ConfirmShipment(supplier, tt.details, testNow)
				assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
				assert.Equal(t, before, tx.Status)
				assert.Nil(t, tx.Shipment)
			})
		}
	})

	t.Run("only after payment", func(t *testing.T) {
		tx := newTestTransaction(t)
		_, err := tx.ConfirmShipment(supplier, details, testNow)
		assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
		assert.Equal(t, TransactionPendingAdminReview, tx.Status)
	})

	t.Run("from production", func(t *testing.T) {
		tx := newTestTransaction(t)
		fundTransaction(t, tx)
		_, err := tx.StartProduction(supplier, testNow)
		require.NoError(t, err)
		_, err = tx.ConfirmShipment(supplier, details, testNow)
		require.NoError(t, err)
		assert.Equal(t, TransactionShipped, tx.Status)
	})
}

func TestTransaction_RecordPayment(t *testing.T) {
	tx := newTestTransaction(t)
	require.NoError(t, tx.MarkEscrowCreated(uuid.Nil, uuid.New(), decimal.NewFromInt(3000), decimal.NewFromInt(7000), testNow))

	changed, err := tx.RecordPayment(uuid.Nil, PaymentStageAdvance, testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, TransactionPaymentReceived, tx.Status)

	changed, err = tx.RecordPayment(uuid.Nil, PaymentStageAdvance, testNow)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = tx.RecordPayment(uuid.Nil, PaymentStageBalance, testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, TransactionEscrowHeld, tx.Status)

	changed, err = tx.RecordPayment(uuid.Nil, PaymentStageAdvance, testNow)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTransaction_MarkEscrowCreated(t *testing.T) {
	tx := newTestTransaction(t)
	err := tx.MarkEscrowCreated(uuid.Nil, uuid.New(), decimal.NewFromInt(3000), decimal.NewFromInt(6999), testNow)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	assert.Equal(t, TransactionPendingAdminReview, tx.Status)

	require.NoError(t, tx.MarkEscrowCreated(uuid.Nil, uuid.New(), decimal.NewFromInt(3000), decimal.NewFromInt(7000), testNow))
	assert.Equal(t, TransactionEscrowCreated, tx.Status)
	assert.NotNil(t, tx.EscrowID)
}

func TestTransaction_DeliveryAndCompletion(t *testing.T) {
	tx := newTestTransaction(t)
	fundTransaction(t, tx)

	_, err := tx.Complete(uuid.Nil, testNow)
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))

	_, err = tx.ConfirmShipment(uuid.Nil, ShipmentDetails{TrackingNumber: "TRK-1", Provider: "Maersk"}, testNow)
	require.NoError(t, err)

	changed, err := tx.ConfirmDelivery(uuid.Nil, testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, tx.Shipment.DeliveredAt)

	changed, err = tx.ConfirmDelivery(uuid.Nil, testNow)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = tx.Complete(uuid.Nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, TransactionCompleted, tx.Status)

	err = tx.Cancel(uuid.Nil, "too late", testNow)
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
}

func TestTransaction_Cancel(t *testing.T) {
	tx := newTestTransaction(t)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(tx.Cancel(uuid.Nil, " ", testNow)))

	require.NoError(t, tx.Cancel(uuid.Nil, "buyer withdrew", testNow))
	assert.Equal(t, TransactionCancelled, tx.Status)
	assert.False(t, tx.Status.IsLive())
	assert.Equal(t, "buyer withdrew", tx.CancelReason)
}
