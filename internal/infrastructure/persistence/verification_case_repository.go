package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVerificationCaseRepository implements verification.Repository using GORM
type GormVerificationCaseRepository struct {
	aggregateStore
}

// NewGormVerificationCaseRepository creates a new GormVerificationCaseRepository
func NewGormVerificationCaseRepository(db *gorm.DB) *GormVerificationCaseRepository {
	return &GormVerificationCaseRepository{aggregateStore{db: db}}
}

// FindByID finds a case by ID
func (r *GormVerificationCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*verification.VerificationCase, error) {
	var model models.VerificationCaseModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Verification case")
	}
	return model.ToDomain(), nil
}

// FindLatestBySubject returns the most recently created case for a subject
func (r *GormVerificationCaseRepository) FindLatestBySubject(ctx context.Context, subjectID uuid.UUID) (*verification.VerificationCase, error) {
	var model models.VerificationCaseModel
	if err := dbtx.Conn(ctx, r.db).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Verification case")
	}
	return model.ToDomain(), nil
}

// CreateWithEvents inserts a new case and its events in one transaction
func (r *GormVerificationCaseRepository) CreateWithEvents(ctx context.Context, c *verification.VerificationCase, events []shared.DomainEvent) error {
	return r.create(ctx, models.VerificationCaseModelFromDomain(c), events, "verification case already exists")
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormVerificationCaseRepository) SaveWithLockAndEvents(ctx context.Context, c *verification.VerificationCase, events []shared.DomainEvent) error {
	model := models.VerificationCaseModelFromDomain(c)
	model.Version = c.Version + 1
	if err := r.updateVersioned(ctx, &models.VerificationCaseModel{}, model, c.ID, c.Version, events, "verification case"); err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

var _ verification.Repository = (*GormVerificationCaseRepository)(nil)
