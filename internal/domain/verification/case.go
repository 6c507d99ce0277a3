package verification

import (
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// ValidityYears is how long a VERIFIED case and its badge stay valid
const ValidityYears = 1

// DocumentStatus is the review state of a single submitted document
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentVerified DocumentStatus = "VERIFIED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// IsValid checks if the document status is known
func (s DocumentStatus) IsValid() bool {
	return s == DocumentPending || s == DocumentVerified || s == DocumentRejected
}

// Document is a supporting document attached to a case
type Document struct {
	ID                uuid.UUID      `json:"id"`
	Type              string         `json:"type"`
	Reference         string         `json:"reference"`
	BankAccountNumber string         `json:"bankAccountNumber,omitempty"`
	Status            DocumentStatus `json:"status"`
	VerifiedAt        *time.Time     `json:"verifiedAt,omitempty"`
}

// ComplianceItem is a checklist entry the subject must complete
type ComplianceItem struct {
	Code        string     `json:"code"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Badge is the public trust badge, present only while the case is VERIFIED
type Badge struct {
	BadgeType  BadgeType `json:"badgeType"`
	TrustScore int       `json:"trustScore"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// VerificationCase is the aggregate root for a business's KYB lifecycle.
// Badge and RiskAssessment are embedded value objects and are only changed
// through the case so they commit together.
type VerificationCase struct {
	shared.BaseAggregateRoot
	SubjectID         uuid.UUID
	Status            Status
	BusinessName      string
	BusinessAgeYears  int
	Documents         []Document
	ComplianceItems   []ComplianceItem
	TrustScore        int
	RiskAssessment    RiskAssessment
	Badge             *Badge
	AdminNotes        string
	ReviewerID        *uuid.UUID
	ReviewStartedAt   *time.Time
	RejectionReason   string
	RejectedAt        *time.Time
	InfoRequestReason string
	InfoRequestedAt   *time.Time
	VerifiedAt        *time.Time
	ExpiresAt         *time.Time
}

// NewVerificationCase creates a SUBMITTED case for subjectID
func NewVerificationCase(subjectID uuid.UUID, businessName string, ageYears int, docs []Document, items []ComplianceItem, now time.Time) (*VerificationCase, error) {
	if subjectID == uuid.Nil {
		return nil, shared.NewValidationError("subject id cannot be empty")
	}
	if strings.TrimSpace(businessName) == "" {
		return nil, shared.NewValidationError("business name cannot be empty")
	}
	if ageYears < 0 {
		return nil, shared.NewValidationError("business age cannot be negative")
	}
	for i := range docs {
		if strings.TrimSpace(docs[i].Type) == "" {
			return nil, shared.NewValidationError("document type cannot be empty")
		}
		if docs[i].ID == uuid.Nil {
			docs[i].ID = uuid.New()
		}
		if docs[i].Status == "" {
			docs[i].Status = DocumentPending
		}
		if !docs[i].Status.IsValid() {
			return nil, shared.NewValidationError("invalid document status: " + string(docs[i].Status))
		}
	}
	for _, item := range items {
		if strings.TrimSpace(item.Code) == "" {
			return nil, shared.NewValidationError("compliance item code cannot be empty")
		}
	}

	c := &VerificationCase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		SubjectID:         subjectID,
		Status:            StatusSubmitted,
		BusinessName:      strings.TrimSpace(businessName),
		BusinessAgeYears:  ageYears,
		Documents:         docs,
		ComplianceItems:   items,
	}
	c.TrustScore = ComputeTrustScore(c.trustInputs())
	c.RiskAssessment = AssessRisk(c.TrustScore)

	c.AddDomainEvent(NewSubmittedEvent(c, subjectID, now))
	return c, nil
}

// ReviewCommand carries a single review action
type ReviewCommand struct {
	Action Action
	Reason string
	Notes  string
}

// Review applies a reviewer action using the transition table.
// It returns false when the action was an accepted no-op (START_REVIEW while
// already UNDER_REVIEW). Validation happens before any field is changed.
func (c *VerificationCase) Review(caller shared.Caller, cmd ReviewCommand, now time.Time) (bool, error) {
	if !cmd.Action.IsReviewAction() {
		return false, shared.NewValidationError("invalid review action: " + string(cmd.Action))
	}
	reason := strings.TrimSpace(cmd.Reason)
	if cmd.Action.RequiresReason() && reason == "" {
		return false, shared.NewValidationError("reason is required for " + string(cmd.Action))
	}
	to, err := NextStatus(c.Status, cmd.Action)
	if err != nil {
		return false, err
	}
	if cmd.Action == ActionStartReview && c.Status == StatusUnderReview {
		return false, nil
	}

	from := c.Status
	switch cmd.Action {
	case ActionStartReview:
		reviewer := caller.UserID
		c.ReviewerID = &reviewer
		c.ReviewStartedAt = &now
	case ActionApprove:
		c.approve(caller, now)
	case ActionReject:
		c.reject(caller, reason, now)
	case ActionRequestInfo:
		c.InfoRequestReason = reason
		c.InfoRequestedAt = &now
		c.AddDomainEvent(NewInfoRequestedEvent(c, caller.UserID, reason, now))
	}
	if notes := strings.TrimSpace(cmd.Notes); notes != "" {
		c.AdminNotes = notes
	}

	c.Status = to
	c.Touch(now)
	c.AddDomainEvent(NewStatusChangedEvent(c, caller.UserID, from, to, cmd.Action, now))
	return true, nil
}

func (c *VerificationCase) approve(caller shared.Caller, now time.Time) {
	expires := now.AddDate(ValidityYears, 0, 0)
	c.VerifiedAt = &now
	c.ExpiresAt = &expires
	c.RejectionReason = ""
	c.RejectedAt = nil

	c.TrustScore = ClampTrust(ComputeTrustScore(c.trustInputs()) + ApprovalBonus)
	c.RiskAssessment = AssessRisk(c.TrustScore)
	c.Badge = &Badge{
		BadgeType:  BadgeTypeFor(c.TrustScore),
		TrustScore: c.TrustScore,
		IssuedAt:   now,
		ExpiresAt:  expires,
	}
	c.AddDomainEvent(NewApprovedEvent(c, caller.UserID, now))
}

func (c *VerificationCase) reject(caller shared.Caller, reason string, now time.Time) {
	c.RejectionReason = reason
	c.RejectedAt = &now
	c.VerifiedAt = nil
	c.ExpiresAt = nil
	c.Badge = nil

	c.TrustScore = ClampTrust(ComputeTrustScore(c.trustInputs()) - RejectionPenalty)
	c.RiskAssessment = AssessRisk(c.TrustScore)
	c.AddDomainEvent(NewRejectedEvent(c, caller.UserID, reason, now))
}

// Resubmit is the subject's path back into review after INFO_REQUESTED or REJECTED.
// Updated documents and compliance items replace the previous ones when given.
func (c *VerificationCase) Resubmit(caller shared.Caller, docs []Document, items []ComplianceItem, now time.Time) error {
	to, err := NextStatus(c.Status, ActionResubmit)
	if err != nil {
		return err
	}
	if docs != nil {
		for i := range docs {
			if docs[i].ID == uuid.Nil {
				docs[i].ID = uuid.New()
			}
			if docs[i].Status == "" {
				docs[i].Status = DocumentPending
			}
		}
		c.Documents = docs
	}
	if items != nil {
		c.ComplianceItems = items
	}

	from := c.Status
	c.Status = to
	c.InfoRequestReason = ""
	c.InfoRequestedAt = nil
	c.TrustScore = ComputeTrustScore(c.trustInputs())
	c.RiskAssessment = AssessRisk(c.TrustScore)
	c.Touch(now)
	c.AddDomainEvent(NewStatusChangedEvent(c, caller.UserID, from, to, ActionResubmit, now))
	return nil
}

// SetDocumentStatus records the reviewer's verdict on one document
func (c *VerificationCase) SetDocumentStatus(docID uuid.UUID, status DocumentStatus, now time.Time) error {
	if !status.IsValid() {
		return shared.NewValidationError("invalid document status: " + string(status))
	}
	if !c.isEditable() {
		return shared.NewDomainError(shared.CodeInvalidState, "documents cannot change in status "+string(c.Status))
	}
	for i := range c.Documents {
		if c.Documents[i].ID != docID {
			continue
		}
		c.Documents[i].Status = status
		if status == DocumentVerified {
			c.Documents[i].VerifiedAt = &now
		} else {
			c.Documents[i].VerifiedAt = nil
		}
		c.Touch(now)
		return nil
	}
	return shared.NewNotFoundError("document")
}

// SetComplianceItem marks a compliance checklist item completed or not
func (c *VerificationCase) SetComplianceItem(code string, completed bool, now time.Time) error {
	if !c.isEditable() {
		return shared.NewDomainError(shared.CodeInvalidState, "compliance items cannot change in status "+string(c.Status))
	}
	for i := range c.ComplianceItems {
		if c.ComplianceItems[i].Code != code {
			continue
		}
		c.ComplianceItems[i].Completed = completed
		if completed {
			c.ComplianceItems[i].CompletedAt = &now
		} else {
			c.ComplianceItems[i].CompletedAt = nil
		}
		c.Touch(now)
		return nil
	}
	return shared.NewNotFoundError("compliance item")
}

// RecalculateTrust recomputes the score on demand without review adjustments.
// A VERIFIED case keeps its approval bonus and its badge is refreshed.
func (c *VerificationCase) RecalculateTrust(now time.Time) {
	score := ComputeTrustScore(c.trustInputs())
	switch c.Status {
	case StatusVerified:
		score = ClampTrust(score + ApprovalBonus)
		if c.Badge != nil {
			c.Badge.BadgeType = BadgeTypeFor(score)
			c.Badge.TrustScore = score
		}
	case StatusRejected:
		score = ClampTrust(score - RejectionPenalty)
	}
	c.TrustScore = score
	c.RiskAssessment = AssessRisk(score)
	c.Touch(now)
}

func (c *VerificationCase) isEditable() bool {
	return c.Status == StatusSubmitted || c.Status == StatusUnderReview || c.Status == StatusInfoRequested
}

func (c *VerificationCase) trustInputs() TrustInputs {
	in := TrustInputs{
		TotalDocuments:       len(c.Documents),
		BusinessAgeYears:     c.BusinessAgeYears,
		TotalComplianceItems: len(c.ComplianceItems),
	}
	for _, d := range c.Documents {
		if d.Status == DocumentVerified {
			in.VerifiedDocuments++
		}
	}
	for _, item := range c.ComplianceItems {
		if item.Completed {
			in.CompletedComplianceItems++
		}
	}
	return in
}

// IsExpired reports whether a VERIFIED case has passed its validity window.
// Expired cases keep their status; they require re-verification.
func (c *VerificationCase) IsExpired(now time.Time) bool {
	return c.Status == StatusVerified && c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// IsKYBComplete reports whether the subject currently counts as verified
func (c *VerificationCase) IsKYBComplete(now time.Time) bool {
	return c.Status == StatusVerified && !c.IsExpired(now)
}

// Masked returns a copy safe to expose: bank account numbers keep only their last four digits
func (c *VerificationCase) Masked() *VerificationCase {
	cp := *c
	cp.Documents = make([]Document, len(c.Documents))
	copy(cp.Documents, c.Documents)
	for i := range cp.Documents {
		cp.Documents[i].BankAccountNumber = MaskAccountNumber(cp.Documents[i].BankAccountNumber)
	}
	cp.ComplianceItems = append([]ComplianceItem(nil), c.ComplianceItems...)
	if c.Badge != nil {
		badge := *c.Badge
		cp.Badge = &badge
	}
	cp.ClearDomainEvents()
	return &cp
}

// MaskAccountNumber replaces all but the last four characters with '*'
func MaskAccountNumber(number string) string {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if number == "" {
		return ""
	}
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
