package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements trade.TransactionRepository using GORM
type GormTransactionRepository struct {
	aggregateStore
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{aggregateStore{db: db}}
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Transaction, error) {
	var model models.TransactionModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Transaction")
	}
	return model.ToDomain(), nil
}

// FindLiveByOffer returns the non-cancelled transaction holding an offer
func (r *GormTransactionRepository) FindLiveByOffer(ctx context.Context, offerID uuid.UUID) (*trade.Transaction, error) {
	var model models.TransactionModel
	if err := dbtx.Conn(ctx, r.db).
		Where("offer_id = ? AND status <> ?", offerID, trade.TransactionCancelled).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Transaction")
	}
	return model.ToDomain(), nil
}

// CountLiveByBuyer counts the buyer's non-cancelled transactions
func (r *GormTransactionRepository) CountLiveByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	var count int64
	err := dbtx.Conn(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("buyer_id = ? AND status <> ?", buyerID, trade.TransactionCancelled).
		Count(&count).Error
	return count, err
}

// CreateWithEvents inserts a new transaction and its events.
// The ux_transactions_live_offer index turns a second live transaction for
// the same offer into CONFLICT.
func (r *GormTransactionRepository) CreateWithEvents(ctx context.Context, t *trade.Transaction, events []shared.DomainEvent) error {
	return r.create(ctx, models.TransactionModelFromDomain(t), events, "offer already has an active transaction")
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormTransactionRepository) SaveWithLockAndEvents(ctx context.Context, t *trade.Transaction, events []shared.DomainEvent) error {
	model := models.TransactionModelFromDomain(t)
	model.Version = t.Version + 1
	if err := r.updateVersioned(ctx, &models.TransactionModel{}, model, t.ID, t.Version, events, "transaction"); err != nil {
		return err
	}
	t.IncrementVersion()
	return nil
}

var _ trade.TransactionRepository = (*GormTransactionRepository)(nil)
