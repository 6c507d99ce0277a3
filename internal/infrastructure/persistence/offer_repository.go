package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOfferRepository implements trade.OfferRepository using GORM
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// FindByID finds an offer by ID
func (r *GormOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Offer, error) {
	var model models.OfferModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Offer")
	}
	return model.ToDomain(), nil
}

// Save creates or updates an offer
func (r *GormOfferRepository) Save(ctx context.Context, offer *trade.Offer) error {
	return dbtx.Conn(ctx, r.db).Save(models.OfferModelFromDomain(offer)).Error
}

var _ trade.OfferRepository = (*GormOfferRepository)(nil)
