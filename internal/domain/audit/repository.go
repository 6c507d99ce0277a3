package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists audit entries. Entries are append-only.
type Repository interface {
	Create(ctx context.Context, e *Entry) error

	// FindByResource lists entries for a resource, newest first
	FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit int) ([]Entry, error)
}
