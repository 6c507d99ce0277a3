package verification

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for verification cases
type Repository interface {
	// FindByID finds a case by ID
	FindByID(ctx context.Context, id uuid.UUID) (*VerificationCase, error)

	// FindLatestBySubject returns the most recently created case for a subject
	FindLatestBySubject(ctx context.Context, subjectID uuid.UUID) (*VerificationCase, error)

	// CreateWithEvents inserts a new case and its events in one transaction
	CreateWithEvents(ctx context.Context, c *VerificationCase, events []shared.DomainEvent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
	// Returns CONCURRENT_MODIFICATION when the stored version moved on.
	SaveWithLockAndEvents(ctx context.Context, c *VerificationCase, events []shared.DomainEvent) error
}
