package models

import (
	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditEntryModel is an append-only audit row
type AuditEntryModel struct {
	Row
	Action       audit.Action         `gorm:"type:varchar(50);not null"`
	ResourceType string               `gorm:"type:varchar(50);not null;index:idx_audit_resource,priority:1"`
	ResourceID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_audit_resource,priority:2"`
	ActorID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	ActorRole    string               `gorm:"type:varchar(20);not null"`
	Reason       string               `gorm:"type:text"`
	Details      JSON[map[string]any] `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// ToDomain converts the persistence model to a domain audit Entry
func (m *AuditEntryModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		BaseEntity:   m.entity(),
		Action:       m.Action,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		ActorID:      m.ActorID,
		ActorRole:    shared.Role(m.ActorRole),
		Reason:       m.Reason,
		Details:      m.Details.V,
	}
}

// AuditEntryModelFromDomain creates a new persistence model from a domain audit Entry
func AuditEntryModelFromDomain(e *audit.Entry) *AuditEntryModel {
	m := &AuditEntryModel{
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ActorID:      e.ActorID,
		ActorRole:    string(e.ActorRole),
		Reason:       e.Reason,
		Details:      NewJSON(e.Details),
	}
	m.Row = rowOf(e.BaseEntity)
	return m
}
