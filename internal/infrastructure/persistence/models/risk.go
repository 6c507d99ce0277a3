package models

import (
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuyerTrustProfileModel is the persistence model for the BuyerTrustProfile aggregate root.
type BuyerTrustProfileModel struct {
	VersionedRow
	BuyerID                 uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentReliability      decimal.Decimal            `gorm:"type:decimal(5,2);not null"`
	DisputeHistory          decimal.Decimal            `gorm:"type:decimal(5,2);not null"`
	Behavioral              decimal.Decimal            `gorm:"type:decimal(5,2);not null"`
	Compliance              decimal.Decimal            `gorm:"type:decimal(5,2);not null"`
	PaymentOnTimePercentage decimal.Decimal            `gorm:"type:decimal(5,2);not null"`
	TotalTransactions       int                        `gorm:"not null;default:0"`
	TotalDisputes           int                        `gorm:"not null;default:0"`
	TotalOrderCount         int                        `gorm:"not null;default:0"`
	ActiveFlags             JSON[[]risk.Flag]          `gorm:"type:jsonb"`
	Blacklist               JSON[*risk.BlacklistEntry] `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (BuyerTrustProfileModel) TableName() string {
	return "buyer_trust_profiles"
}

// ToDomain converts the persistence model to a domain BuyerTrustProfile
func (m *BuyerTrustProfileModel) ToDomain() *risk.BuyerTrustProfile {
	return &risk.BuyerTrustProfile{
		BaseAggregateRoot: m.root(),
		BuyerID:           m.BuyerID,
		Scores: risk.SubScores{
			PaymentReliability: m.PaymentReliability,
			DisputeHistory:     m.DisputeHistory,
			Behavioral:         m.Behavioral,
			Compliance:         m.Compliance,
		},
		PaymentOnTimePercentage: m.PaymentOnTimePercentage,
		TotalTransactions:       m.TotalTransactions,
		TotalDisputes:           m.TotalDisputes,
		TotalOrderCount:         m.TotalOrderCount,
		ActiveFlags:             m.ActiveFlags.V,
		Blacklist:               m.Blacklist.V,
	}
}

// FromDomain populates the persistence model from a domain BuyerTrustProfile
func (m *BuyerTrustProfileModel) FromDomain(p *risk.BuyerTrustProfile) {
	m.VersionedRow = versionedRowOf(p.BaseAggregateRoot)
	m.BuyerID = p.BuyerID
	m.PaymentReliability = p.Scores.PaymentReliability
	m.DisputeHistory = p.Scores.DisputeHistory
	m.Behavioral = p.Scores.Behavioral
	m.Compliance = p.Scores.Compliance
	m.PaymentOnTimePercentage = p.PaymentOnTimePercentage
	m.TotalTransactions = p.TotalTransactions
	m.TotalDisputes = p.TotalDisputes
	m.TotalOrderCount = p.TotalOrderCount
	m.ActiveFlags = NewJSON(p.ActiveFlags)
	m.Blacklist = NewJSON(p.Blacklist)
}

// BuyerTrustProfileModelFromDomain creates a new persistence model from a domain BuyerTrustProfile
func BuyerTrustProfileModelFromDomain(p *risk.BuyerTrustProfile) *BuyerTrustProfileModel {
	m := &BuyerTrustProfileModel{}
	m.FromDomain(p)
	return m
}
