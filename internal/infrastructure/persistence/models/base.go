package models

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// Row holds the id and timestamp columns every table carries
type Row struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func rowOf(e shared.BaseEntity) Row {
	return Row{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

func (r Row) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// VersionedRow is the Row of an aggregate root; Version backs optimistic locking
type VersionedRow struct {
	Row
	Version int `gorm:"not null;default:1"`
}

func versionedRowOf(a shared.BaseAggregateRoot) VersionedRow {
	return VersionedRow{Row: rowOf(a.BaseEntity), Version: a.Version}
}

// root rebuilds the aggregate base with an empty event queue
func (r VersionedRow) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: r.entity(), Version: r.Version}
}
