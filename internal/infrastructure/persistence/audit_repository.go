package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultAuditLimit = 50

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Create appends an entry
func (r *GormAuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	return dbtx.Conn(ctx, r.db).Create(models.AuditEntryModelFromDomain(e)).Error
}

// FindByResource lists entries for a resource, newest first
func (r *GormAuditRepository) FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	var rows []models.AuditEntryModel
	if err := dbtx.Conn(ctx, r.db).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]audit.Entry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

var _ audit.Repository = (*GormAuditRepository)(nil)
