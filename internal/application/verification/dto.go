package verification

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/google/uuid"
)

// DocumentInput is a document attached to a submission
type DocumentInput struct {
	Type              string `json:"type" binding:"required,min=1,max=100"`
	Reference         string `json:"reference" binding:"max=255"`
	BankAccountNumber string `json:"bank_account_number" binding:"omitempty,max=64"`
}

// ComplianceItemInput is a compliance checklist entry
type ComplianceItemInput struct {
	Code        string `json:"code" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	Completed   bool   `json:"completed"`
}

// SubmitVerificationRequest creates a verification case.
// SubjectID is honoured only for admins submitting on behalf of a business.
type SubmitVerificationRequest struct {
	SubjectID        *uuid.UUID            `json:"subject_id"`
	BusinessName     string                `json:"business_name" binding:"required,min=1,max=200"`
	BusinessAgeYears int                   `json:"business_age_years" binding:"min=0,max=500"`
	Documents        []DocumentInput       `json:"documents" binding:"dive"`
	ComplianceItems  []ComplianceItemInput `json:"compliance_items" binding:"dive"`
}

// ReviewRequest applies one review action
type ReviewRequest struct {
	Action string `json:"action" binding:"required,oneof=START_REVIEW APPROVE REJECT REQUEST_INFO"`
	Reason string `json:"reason" binding:"max=2000"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// ResubmitRequest sends a case back to review; nil lists keep the current ones
type ResubmitRequest struct {
	Documents       []DocumentInput       `json:"documents" binding:"omitempty,dive"`
	ComplianceItems []ComplianceItemInput `json:"compliance_items" binding:"omitempty,dive"`
}

// DocumentStatusRequest records a reviewer verdict on a document
type DocumentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING VERIFIED REJECTED"`
}

// ComplianceItemRequest marks a compliance item
type ComplianceItemRequest struct {
	Completed bool `json:"completed"`
}

// DocumentResponse is a document with its bank account number masked
type DocumentResponse struct {
	ID                uuid.UUID  `json:"id"`
	Type              string     `json:"type"`
	Reference         string     `json:"reference,omitempty"`
	BankAccountNumber string     `json:"bank_account_number,omitempty"`
	Status            string     `json:"status"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}

// ComplianceItemResponse is a compliance checklist entry
type ComplianceItemResponse struct {
	Code        string     `json:"code"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RiskAssessmentResponse echoes the case's risk assessment
type RiskAssessmentResponse struct {
	TotalRiskScore int    `json:"total_risk_score"`
	RiskLevel      string `json:"risk_level"`
	Recommendation string `json:"recommendation"`
}

// BadgeResponse is the issued trust badge
type BadgeResponse struct {
	BadgeType  string    `json:"badge_type"`
	TrustScore int       `json:"trust_score"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// VerificationResponse is the externally visible view of a case
type VerificationResponse struct {
	ID                uuid.UUID                `json:"id"`
	SubjectID         uuid.UUID                `json:"subject_id"`
	Status            string                   `json:"status"`
	BusinessName      string                   `json:"business_name"`
	BusinessAgeYears  int                      `json:"business_age_years"`
	Documents         []DocumentResponse       `json:"documents"`
	ComplianceItems   []ComplianceItemResponse `json:"compliance_items"`
	TrustScore        int                      `json:"trust_score"`
	RiskAssessment    RiskAssessmentResponse   `json:"risk_assessment"`
	Badge             *BadgeResponse           `json:"badge,omitempty"`
	AdminNotes        string                   `json:"admin_notes,omitempty"`
	ReviewerID        *uuid.UUID               `json:"reviewer_id,omitempty"`
	RejectionReason   string                   `json:"rejection_reason,omitempty"`
	RejectedAt        *time.Time               `json:"rejected_at,omitempty"`
	InfoRequestReason string                   `json:"info_request_reason,omitempty"`
	InfoRequestedAt   *time.Time               `json:"info_requested_at,omitempty"`
	VerifiedAt        *time.Time               `json:"verified_at,omitempty"`
	ExpiresAt         *time.Time               `json:"expires_at,omitempty"`
	IsExpired         bool                     `json:"is_expired"`
	AllowedActions    []string                 `json:"allowed_actions"`
	Version           int                      `json:"version"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// ReviewResponse reports the case after a review and whether anything changed
type ReviewResponse struct {
	Verification VerificationResponse `json:"verification"`
	Changed      bool                 `json:"changed"`
}

// ToVerificationResponse converts a case to its masked response
func ToVerificationResponse(c *verification.VerificationCase, now time.Time) VerificationResponse {
	m := c.Masked()
	docs := make([]DocumentResponse, len(m.Documents))
	for i, d := range m.Documents {
		docs[i] = DocumentResponse{
			ID:                d.ID,
			Type:              d.Type,
			Reference:         d.Reference,
			BankAccountNumber: d.BankAccountNumber,
			Status:            string(d.Status),
			VerifiedAt:        d.VerifiedAt,
		}
	}
	items := make([]ComplianceItemResponse, len(m.ComplianceItems))
	for i, item := range m.ComplianceItems {
		items[i] = ComplianceItemResponse{
			Code:        item.Code,
			Description: item.Description,
			Completed:   item.Completed,
			CompletedAt: item.CompletedAt,
		}
	}
	actions := verification.AllowedActions(m.Status)
	allowed := make([]string, len(actions))
	for i, a := range actions {
		allowed[i] = string(a)
	}

	resp := VerificationResponse{
		ID:               m.ID,
		SubjectID:        m.SubjectID,
		Status:           string(m.Status),
		BusinessName:     m.BusinessName,
		BusinessAgeYears: m.BusinessAgeYears,
		Documents:        docs,
		ComplianceItems:  items,
		TrustScore:       m.TrustScore,
		RiskAssessment: RiskAssessmentResponse{
			TotalRiskScore: m.RiskAssessment.TotalRiskScore,
			RiskLevel:      string(m.RiskAssessment.RiskLevel),
			Recommendation: string(m.RiskAssessment.Recommendation),
		},
		AdminNotes:        m.AdminNotes,
		ReviewerID:        m.ReviewerID,
		RejectionReason:   m.RejectionReason,
		RejectedAt:        m.RejectedAt,
		InfoRequestReason: m.InfoRequestReason,
		InfoRequestedAt:   m.InfoRequestedAt,
		VerifiedAt:        m.VerifiedAt,
		ExpiresAt:         m.ExpiresAt,
		IsExpired:         m.IsExpired(now),
		AllowedActions:    allowed,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Badge != nil {
		resp.Badge = &BadgeResponse{
			BadgeType:  string(m.Badge.BadgeType),
			TrustScore: m.Badge.TrustScore,
			IssuedAt:   m.Badge.IssuedAt,
			ExpiresAt:  m.Badge.ExpiresAt,
		}
	}
	return resp
}

func toDocuments(in []DocumentInput) []verification.Document {
	if in == nil {
		return nil
	}
	docs := make([]verification.Document, len(in))
	for i, d := range in {
		docs[i] = verification.Document{
			Type:              d.Type,
			Reference:         d.Reference,
			BankAccountNumber: d.BankAccountNumber,
		}
	}
	return docs
}

func toComplianceItems(in []ComplianceItemInput, now time.Time) []verification.ComplianceItem {
	if in == nil {
		return nil
	}
	items := make([]verification.ComplianceItem, len(in))
	for i, c := range in {
		items[i] = verification.ComplianceItem{
			Code:        c.Code,
			Description: c.Description,
			Completed:   c.Completed,
		}
		if c.Completed {
			at := now
			items[i].CompletedAt = &at
		}
	}
	return items
}
