package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/notification"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n notification.Notification) error {
	return m.Called(ctx, n).Error(0)
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

func newTransaction(t *testing.T) *trade.Transaction {
	t.Helper()
	tx, err := trade.NewTransaction(&trade.Offer{
		ID:          uuid.New(),
		BuyerID:     uuid.New(),
		SupplierID:  uuid.New(),
		Status:      trade.OfferStatusAccepted,
		TotalAmount: decimal.NewFromInt(2500),
		Currency:    "USD",
	}, uuid.New(), "", trade.AdmissionChecks{}, testNow)
	require.NoError(t, err)
	return tx
}

func TestHandler_VerificationRejected(t *testing.T) {
	notifier := new(MockNotifier)
	h := NewHandler(notifier, new(MockTransactionRepository), nil)

	c, err := verification.NewVerificationCase(uuid.New(), "Acme Ltd", 2, nil, nil, testNow)
	require.NoError(t, err)
	event := verification.NewRejectedEvent(c, uuid.New(), "documents unreadable", testNow)

	notifier.On("Notify", mock.Anything, notification.Notification{
		UserID:      c.SubjectID,
		Type:        notification.TypeVerificationRejected,
		Title:       "Business verification rejected",
		Message:     "documents unreadable",
		ResourceRef: "verification:" + c.ID.String(),
	}).Return(nil)

	require.NoError(t, h.Handle(context.Background(), event))
	notifier.AssertExpectations(t)
}

func TestHandler_TransactionCreatedNotifiesBothParties(t *testing.T) {
	notifier := new(MockNotifier)
	h := NewHandler(notifier, new(MockTransactionRepository), nil)
	tx := newTransaction(t)

	var recipients []uuid.UUID
	notifier.On("Notify", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		n := args.Get(1).(notification.Notification)
		assert.Equal(t, notification.TypeTransactionCreated, n.Type)
		assert.Contains(t, n.Message, "2500.00 USD")
		recipients = append(recipients, n.UserID)
	}).Return(nil)

	require.NoError(t, h.Handle(context.Background(), trade.NewTransactionCreatedEvent(tx, testNow)))
	assert.ElementsMatch(t, []uuid.UUID{tx.BuyerID, tx.SupplierID}, recipients)
}

func TestHandler_EscrowReleasedNotifiesSupplier(t *testing.T) {
	notifier := new(MockNotifier)
	transactions := new(MockTransactionRepository)
	h := NewHandler(notifier, transactions, nil)
	tx := newTransaction(t)
	e, err := escrow.Open(uuid.New(), escrow.OpenParams{TransactionID: tx.ID, Total: tx.Amount, Currency: tx.Currency}, testNow)
	require.NoError(t, err)

	transactions.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n notification.Notification) bool {
		return n.UserID == tx.SupplierID && n.Type == notification.TypeEscrowReleased
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), escrow.NewEscrowReleasedEvent(e, uuid.New(), testNow)))
	notifier.AssertExpectations(t)
}

func TestHandler_LookupFailureIsReturned(t *testing.T) {
	notifier := new(MockNotifier)
	transactions := new(MockTransactionRepository)
	h := NewHandler(notifier, transactions, nil)
	tx := newTransaction(t)
	e, err := escrow.Open(uuid.New(), escrow.OpenParams{TransactionID: tx.ID, Total: tx.Amount}, testNow)
	require.NoError(t, err)

	transactions.On("FindByID", mock.Anything, tx.ID).Return(nil, errors.New("connection reset"))

	err = h.Handle(context.Background(), escrow.NewEscrowRefundedEvent(e, uuid.New(), "cancelled", testNow))
	assert.Error(t, err)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestHandler_DeliveryFailureIsSwallowed(t *testing.T) {
	notifier := new(MockNotifier)
	h := NewHandler(notifier, new(MockTransactionRepository), nil)
	tx := newTransaction(t)

	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("webhook down"))
	assert.NoError(t, h.Handle(context.Background(), trade.NewTransactionCancelledEvent(tx, uuid.New(), "buyer withdrew", testNow)))
	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestHandler_IgnoresUnmappedEvents(t *testing.T) {
	notifier := new(MockNotifier)
	h := NewHandler(notifier, new(MockTransactionRepository), nil)
	tx := newTransaction(t)

	event := trade.NewTransactionStatusChangedEvent(tx, uuid.New(), trade.TransactionPendingAdminReview, trade.TransactionEscrowCreated, testNow)
	require.NoError(t, h.Handle(context.Background(), event))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}
