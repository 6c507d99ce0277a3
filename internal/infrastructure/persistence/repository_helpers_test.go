package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// setupRepositoryTestDB opens an in-memory SQLite database with the aggregate tables.
// A single connection keeps every statement on the same in-memory database.
func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.VerificationCaseModel{},
		&models.BuyerTrustProfileModel{},
		&models.OfferModel{},
		&models.TransactionModel{},
		&models.EscrowModel{},
		&models.AuditEntryModel{},
	))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX ux_transactions_live_offer ON transactions (offer_id) WHERE status <> 'CANCELLED'`,
	).Error)
	return db
}

// recordingSaver captures events handed to the outbox and whether they arrived inside a transaction
type recordingSaver struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	inTx   []bool
	err    error
}

func (s *recordingSaver) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, isDB := txProvider.(*gorm.DB)
	_, hasTx := dbtx.From(ctx)
	s.inTx = append(s.inTx, isDB && hasTx)
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type persistenceTestEvent struct {
	shared.BaseDomainEvent
}

func newPersistenceTestEvent(aggregateType string, aggregateID uuid.UUID) *persistenceTestEvent {
	return &persistenceTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TestEvent", aggregateType, aggregateID, uuid.Nil, testNow),
	}
}

func acceptedTestOffer() *trade.Offer {
	return &trade.Offer{
		ID:            uuid.New(),
		RequirementID: uuid.New(),
		BuyerID:       uuid.New(),
		SupplierID:    uuid.New(),
		Status:        trade.OfferStatusAccepted,
		TotalAmount:   decimal.NewFromInt(10000),
		UnitPrice:     decimal.NewFromInt(100),
		Quantity:      decimal.NewFromInt(100),
		Currency:      valueobject.USD,
		PaymentTerms:  "30% advance, 70% on delivery",
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}
