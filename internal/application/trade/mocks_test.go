package trade

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Offer), args.Error(1)
}

func (m *MockOfferRepository) Save(ctx context.Context, offer *trade.Offer) error {
	return m.Called(ctx, offer).Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindLiveByOffer(ctx context.Context, offerID uuid.UUID) (*trade.Transaction, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountLiveByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) CreateWithEvents(ctx context.Context, t *trade.Transaction, events []shared.DomainEvent) error {
	return m.Called(ctx, t, events).Error(0)
}

func (m *MockTransactionRepository) SaveWithLockAndEvents(ctx context.Context, t *trade.Transaction, events []shared.DomainEvent) error {
	return m.Called(ctx, t, events).Error(0)
}

type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*verification.VerificationCase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.VerificationCase), args.Error(1)
}

func (m *MockVerificationRepository) FindLatestBySubject(ctx context.Context, subjectID uuid.UUID) (*verification.VerificationCase, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.VerificationCase), args.Error(1)
}

func (m *MockVerificationRepository) CreateWithEvents(ctx context.Context, c *verification.VerificationCase, events []shared.DomainEvent) error {
	return m.Called(ctx, c, events).Error(0)
}

func (m *MockVerificationRepository) SaveWithLockAndEvents(ctx context.Context, c *verification.VerificationCase, events []shared.DomainEvent) error {
	return m.Called(ctx, c, events).Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByBuyerID(ctx context.Context, buyerID uuid.UUID) (*risk.BuyerTrustProfile, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*risk.BuyerTrustProfile), args.Error(1)
}

func (m *MockProfileRepository) CreateWithEvents(ctx context.Context, p *risk.BuyerTrustProfile, events []shared.DomainEvent) error {
	return m.Called(ctx, p, events).Error(0)
}

func (m *MockProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *risk.BuyerTrustProfile, events []shared.DomainEvent) error {
	return m.Called(ctx, p, events).Error(0)
}

type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Escrow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Escrow), args.Error(1)
}

func (m *MockEscrowRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) (*escrow.Escrow, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Escrow), args.Error(1)
}

func (m *MockEscrowRepository) CreateWithEvents(ctx context.Context, e *escrow.Escrow, events []shared.DomainEvent) error {
	return m.Called(ctx, e, events).Error(0)
}

func (m *MockEscrowRepository) SaveWithLockAndEvents(ctx context.Context, e *escrow.Escrow, events []shared.DomainEvent) error {
	return m.Called(ctx, e, events).Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockAuditRepository) FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, resourceType, resourceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

type MockTrackingProvider struct {
	mock.Mock
}

func (m *MockTrackingProvider) TrackShipment(ctx context.Context, trackingNumber, carrier string) (*trade.ShipmentInfo, error) {
	args := m.Called(ctx, trackingNumber, carrier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ShipmentInfo), args.Error(1)
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeLocker records the keys it was asked for; held keys fail with CONFLICT
type fakeLocker struct {
	keys []string
	held map[string]bool
}

func (l *fakeLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, key)
	if l.held[key] {
		return shared.NewDomainError(shared.CodeConflict, "admission in progress")
	}
	return fn(ctx)
}

func acceptedOffer() *trade.Offer {
	return &trade.Offer{
		ID:            uuid.New(),
		RequirementID: uuid.New(),
		BuyerID:       uuid.New(),
		SupplierID:    uuid.New(),
		Status:        trade.OfferStatusAccepted,
		TotalAmount:   decimal.NewFromInt(10000),
		UnitPrice:     decimal.NewFromInt(100),
		Quantity:      decimal.NewFromInt(100),
		Currency:      "USD",
		PaymentTerms:  "30% advance, 70% on delivery",
	}
}
