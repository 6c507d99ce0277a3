package verification

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeVerificationCase is the outbox aggregate type for cases
const AggregateTypeVerificationCase = "VerificationCase"

// Event type constants
const (
	EventTypeVerificationSubmitted     = "VerificationSubmitted"
	EventTypeVerificationStatusChanged = "VerificationStatusChanged"
	EventTypeVerificationApproved      = "VerificationApproved"
	EventTypeVerificationRejected      = "VerificationRejected"
	EventTypeVerificationInfoRequested = "VerificationInfoRequested"
)

// SubmittedEvent is raised when a subject opens a new case
type SubmittedEvent struct {
	shared.BaseDomainEvent
	CaseID       uuid.UUID `json:"case_id"`
	SubjectID    uuid.UUID `json:"subject_id"`
	BusinessName string    `json:"business_name"`
}

// NewSubmittedEvent creates a SubmittedEvent
func NewSubmittedEvent(c *VerificationCase, actorID uuid.UUID, at time.Time) *SubmittedEvent {
	return &SubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationSubmitted, AggregateTypeVerificationCase, c.ID, actorID, at),
		CaseID:          c.ID,
		SubjectID:       c.SubjectID,
		BusinessName:    c.BusinessName,
	}
}

// StatusChangedEvent is raised for every accepted transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	CaseID    uuid.UUID `json:"case_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Action    Action    `json:"action"`
}

// NewStatusChangedEvent creates a StatusChangedEvent
func NewStatusChangedEvent(c *VerificationCase, actorID uuid.UUID, from, to Status, action Action, at time.Time) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationStatusChanged, AggregateTypeVerificationCase, c.ID, actorID, at),
		CaseID:          c.ID,
		SubjectID:       c.SubjectID,
		From:            from,
		To:              to,
		Action:          action,
	}
}

// ApprovedEvent is raised when a case reaches VERIFIED
type ApprovedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID `json:"case_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	TrustScore int       `json:"trust_score"`
	BadgeType  BadgeType `json:"badge_type"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewApprovedEvent creates an ApprovedEvent; the case badge must already be issued
func NewApprovedEvent(c *VerificationCase, actorID uuid.UUID, at time.Time) *ApprovedEvent {
	e := &ApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationApproved, AggregateTypeVerificationCase, c.ID, actorID, at),
		CaseID:          c.ID,
		SubjectID:       c.SubjectID,
		TrustScore:      c.TrustScore,
	}
	if c.Badge != nil {
		e.BadgeType = c.Badge.BadgeType
		e.ExpiresAt = c.Badge.ExpiresAt
	}
	return e
}

// RejectedEvent is raised when a case is rejected
type RejectedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID `json:"case_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	Reason     string    `json:"reason"`
	TrustScore int       `json:"trust_score"`
}

// NewRejectedEvent creates a RejectedEvent
func NewRejectedEvent(c *VerificationCase, actorID uuid.UUID, reason string, at time.Time) *RejectedEvent {
	return &RejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationRejected, AggregateTypeVerificationCase, c.ID, actorID, at),
		CaseID:          c.ID,
		SubjectID:       c.SubjectID,
		Reason:          reason,
		TrustScore:      c.TrustScore,
	}
}

// InfoRequestedEvent is raised when the reviewer asks the subject for more information
type InfoRequestedEvent struct {
	shared.BaseDomainEvent
	CaseID    uuid.UUID `json:"case_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	Reason    string    `json:"reason"`
}

// NewInfoRequestedEvent creates an InfoRequestedEvent
func NewInfoRequestedEvent(c *VerificationCase, actorID uuid.UUID, reason string, at time.Time) *InfoRequestedEvent {
	return &InfoRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationInfoRequested, AggregateTypeVerificationCase, c.ID, actorID, at),
		CaseID:          c.ID,
		SubjectID:       c.SubjectID,
		Reason:          reason,
	}
}
