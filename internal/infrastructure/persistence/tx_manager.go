package persistence

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"gorm.io/gorm"
)

// GormTxManager implements shared.TxManager. Nested calls join the outer transaction.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// InTx runs fn in a transaction carried by the context it receives
func (m *GormTxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbtx.Run(ctx, m.db, func(ctx context.Context, _ *gorm.DB) error {
		return fn(ctx)
	})
}

var _ shared.TxManager = (*GormTxManager)(nil)
