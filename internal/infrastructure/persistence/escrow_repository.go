package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEscrowRepository implements escrow.Repository using GORM
type GormEscrowRepository struct {
	aggregateStore
}

// NewGormEscrowRepository creates a new GormEscrowRepository
func NewGormEscrowRepository(db *gorm.DB) *GormEscrowRepository {
	return &GormEscrowRepository{aggregateStore{db: db}}
}

// FindByID finds an escrow by ID
func (r *GormEscrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Escrow, error) {
	var model models.EscrowModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Escrow")
	}
	return model.ToDomain(), nil
}

// FindByTransaction finds the escrow of a transaction
func (r *GormEscrowRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) (*escrow.Escrow, error) {
	var model models.EscrowModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, notFoundOr(err, "Escrow")
	}
	return model.ToDomain(), nil
}

// CreateWithEvents inserts a new escrow and its events
func (r *GormEscrowRepository) CreateWithEvents(ctx context.Context, e *escrow.Escrow, events []shared.DomainEvent) error {
	return r.create(ctx, models.EscrowModelFromDomain(e), events, "transaction already has an escrow")
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormEscrowRepository) SaveWithLockAndEvents(ctx context.Context, e *escrow.Escrow, events []shared.DomainEvent) error {
	model := models.EscrowModelFromDomain(e)
	model.Version = e.Version + 1
	if err := r.updateVersioned(ctx, &models.EscrowModel{}, model, e.ID, e.Version, events, "escrow"); err != nil {
		return err
	}
	e.IncrementVersion()
	return nil
}

var _ escrow.Repository = (*GormEscrowRepository)(nil)
