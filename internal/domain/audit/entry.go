package audit

import (
	"maps"
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// Action identifies an audited operation
type Action string

const (
	ActionVerificationReviewed Action = "VERIFICATION_REVIEWED"
	ActionGateOverridden       Action = "ADMISSION_GATE_OVERRIDDEN"
	ActionTransactionCancelled Action = "TRANSACTION_CANCELLED"
	ActionBlacklistChanged     Action = "BLACKLIST_CHANGED"
	ActionEscrowReleased       Action = "ESCROW_RELEASED"
	ActionEscrowRefunded       Action = "ESCROW_REFUNDED"
	ActionOutboxRetried        Action = "OUTBOX_RETRIED"
)

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	switch a {
	case ActionVerificationReviewed, ActionGateOverridden, ActionTransactionCancelled,
		ActionBlacklistChanged, ActionEscrowReleased, ActionEscrowRefunded, ActionOutboxRetried:
		return true
	}
	return false
}

// Entry records who did what to which resource, and when
type Entry struct {
	shared.BaseEntity
	Action       Action
	ResourceType string
	ResourceID   uuid.UUID
	ActorID      uuid.UUID
	ActorRole    shared.Role
	Reason       string
	Details      map[string]any
}

// NewEntry creates an audit entry for an operation performed by caller
func NewEntry(caller shared.Caller, action Action, resourceType string, resourceID uuid.UUID, reason string, details map[string]any, now time.Time) (*Entry, error) {
	if !action.IsValid() {
		return nil, shared.NewValidationError("invalid audit action: " + string(action))
	}
	if resourceType == "" || resourceID == uuid.Nil {
		return nil, shared.NewValidationError("audit entry requires a resource")
	}
	return &Entry{
		BaseEntity:   shared.NewBaseEntity(now),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ActorID:      caller.UserID,
		ActorRole:    caller.Role,
		Reason:       strings.TrimSpace(reason),
		Details:      maps.Clone(details),
	}, nil
}
