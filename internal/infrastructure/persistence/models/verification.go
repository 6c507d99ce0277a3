package models

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/google/uuid"
)

// VerificationCaseModel is the persistence model for the VerificationCase aggregate root.
type VerificationCaseModel struct {
	VersionedRow
	SubjectID         uuid.UUID                           `gorm:"type:uuid;not null;index:idx_verification_subject_created,priority:1"`
	Status            verification.Status                 `gorm:"type:varchar(20);not null;index"`
	BusinessName      string                              `gorm:"type:varchar(200);not null"`
	BusinessAgeYears  int                                 `gorm:"not null;default:0"`
	Documents         JSON[[]verification.Document]       `gorm:"type:jsonb"`
	ComplianceItems   JSON[[]verification.ComplianceItem] `gorm:"type:jsonb"`
	TrustScore        int                                 `gorm:"not null;default:0"`
	RiskAssessment    JSON[verification.RiskAssessment]   `gorm:"type:jsonb"`
	Badge             JSON[*verification.Badge]           `gorm:"type:jsonb"`
	AdminNotes        string                              `gorm:"type:text"`
	ReviewerID        *uuid.UUID                          `gorm:"type:uuid"`
	ReviewStartedAt   *time.Time
	RejectionReason   string `gorm:"type:varchar(1000)"`
	RejectedAt        *time.Time
	InfoRequestReason string `gorm:"type:varchar(1000)"`
	InfoRequestedAt   *time.Time
	VerifiedAt        *time.Time
	ExpiresAt         *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (VerificationCaseModel) TableName() string {
	return "verification_cases"
}

// ToDomain converts the persistence model to a domain VerificationCase
func (m *VerificationCaseModel) ToDomain() *verification.VerificationCase {
	return &verification.VerificationCase{
		BaseAggregateRoot: m.root(),
		SubjectID:         m.SubjectID,
		Status:            m.Status,
		BusinessName:      m.BusinessName,
		BusinessAgeYears:  m.BusinessAgeYears,
		Documents:         m.Documents.V,
		ComplianceItems:   m.ComplianceItems.V,
		TrustScore:        m.TrustScore,
		RiskAssessment:    m.RiskAssessment.V,
		Badge:             m.Badge.V,
		AdminNotes:        m.AdminNotes,
		ReviewerID:        m.ReviewerID,
		ReviewStartedAt:   m.ReviewStartedAt,
		RejectionReason:   m.RejectionReason,
		RejectedAt:        m.RejectedAt,
		InfoRequestReason: m.InfoRequestReason,
		InfoRequestedAt:   m.InfoRequestedAt,
		VerifiedAt:        m.VerifiedAt,
		ExpiresAt:         m.ExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain VerificationCase
func (m *VerificationCaseModel) FromDomain(c *verification.VerificationCase) {
	m.VersionedRow = versionedRowOf(c.BaseAggregateRoot)
	m.SubjectID = c.SubjectID
	m.Status = c.Status
	m.BusinessName = c.BusinessName
	m.BusinessAgeYears = c.BusinessAgeYears
	m.Documents = NewJSON(c.Documents)
	m.ComplianceItems = NewJSON(c.ComplianceItems)
	m.TrustScore = c.TrustScore
	m.RiskAssessment = NewJSON(c.RiskAssessment)
	m.Badge = NewJSON(c.Badge)
	m.AdminNotes = c.AdminNotes
	m.ReviewerID = c.ReviewerID
	m.ReviewStartedAt = c.ReviewStartedAt
	m.RejectionReason = c.RejectionReason
	m.RejectedAt = c.RejectedAt
	m.InfoRequestReason = c.InfoRequestReason
	m.InfoRequestedAt = c.InfoRequestedAt
	m.VerifiedAt = c.VerifiedAt
	m.ExpiresAt = c.ExpiresAt
}

// VerificationCaseModelFromDomain creates a new persistence model from a domain VerificationCase
func VerificationCaseModelFromDomain(c *verification.VerificationCase) *VerificationCaseModel {
	m := &VerificationCaseModel{}
	m.FromDomain(c)
	return m
}
