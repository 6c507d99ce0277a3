package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBuyerTrustProfileRepository implements risk.ProfileRepository using GORM
type GormBuyerTrustProfileRepository struct {
	aggregateStore
}

// NewGormBuyerTrustProfileRepository creates a new GormBuyerTrustProfileRepository
func NewGormBuyerTrustProfileRepository(db *gorm.DB) *GormBuyerTrustProfileRepository {
	return &GormBuyerTrustProfileRepository{aggregateStore{db: db}}
}

// FindByBuyerID finds the profile of a buyer
func (r *GormBuyerTrustProfileRepository) FindByBuyerID(ctx context.Context, buyerID uuid.UUID) (*risk.BuyerTrustProfile, error) {
	var model models.BuyerTrustProfileModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "buyer_id = ?", buyerID).Error; err != nil {
		return nil, notFoundOr(err, "Buyer trust profile")
	}
	return model.ToDomain(), nil
}

// CreateWithEvents inserts a new profile. A concurrent first write for the
// same buyer loses on the unique buyer_id index and gets CONFLICT.
func (r *GormBuyerTrustProfileRepository) CreateWithEvents(ctx context.Context, p *risk.BuyerTrustProfile, events []shared.DomainEvent) error {
	return r.create(ctx, models.BuyerTrustProfileModelFromDomain(p), events, "buyer trust profile already exists")
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormBuyerTrustProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *risk.BuyerTrustProfile, events []shared.DomainEvent) error {
	model := models.BuyerTrustProfileModelFromDomain(p)
	model.Version = p.Version + 1
	if err := r.updateVersioned(ctx, &models.BuyerTrustProfileModel{}, model, p.ID, p.Version, events, "buyer trust profile"); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

var _ risk.ProfileRepository = (*GormBuyerTrustProfileRepository)(nil)
