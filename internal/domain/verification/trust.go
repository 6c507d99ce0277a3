package verification

import (
	"github.com/shopspring/decimal"
)

// Trust score adjustments applied by review outcomes
const (
	ApprovalBonus    = 10
	RejectionPenalty = 20
	MaxTrustScore    = 100
	MinTrustScore    = 0
)

// RiskLevel buckets the risk score (100 - trust score)
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// Recommendation is the reviewer guidance derived from the risk level
type Recommendation string

const (
	RecommendApprove           Recommendation = "APPROVE"
	RecommendApproveMonitored  Recommendation = "APPROVE_WITH_MONITORING"
	RecommendEnhancedDiligence Recommendation = "ENHANCED_DUE_DILIGENCE"
	RecommendReject            Recommendation = "REJECT"
)

// BadgeType is the public trust badge tier
type BadgeType string

const (
	BadgeGold     BadgeType = "GOLD"
	BadgeSilver   BadgeType = "SILVER"
	BadgeBronze   BadgeType = "BRONZE"
	BadgeVerified BadgeType = "VERIFIED"
)

// TrustInputs are the case facts the trust score is derived from
type TrustInputs struct {
	TotalDocuments           int
	VerifiedDocuments        int
	BusinessAgeYears         int
	TotalComplianceItems     int
	CompletedComplianceItems int
}

var (
	baseScore        = decimal.NewFromInt(50)
	documentWeight   = decimal.NewFromInt(40)
	complianceWeight = decimal.NewFromInt(10)
	maxTrustScoreDec = decimal.NewFromInt(MaxTrustScore)
	minTrustScoreDec = decimal.NewFromInt(MinTrustScore)
)

// ComputeTrustScore returns the 0-100 trust score:
//
//	50 + 40*verifiedDocs/max(docs,1) + ageBonus + 10*completed/max(items,1)
//
// The sum is clamped and rounded half-up to an integer at the end.
func ComputeTrustScore(in TrustInputs) int {
	score := baseScore.
		Add(documentWeight.Mul(ratio(in.VerifiedDocuments, in.TotalDocuments))).
		Add(decimal.NewFromInt(int64(AgeBonus(in.BusinessAgeYears)))).
		Add(complianceWeight.Mul(ratio(in.CompletedComplianceItems, in.TotalComplianceItems)))

	if score.GreaterThan(maxTrustScoreDec) {
		score = maxTrustScoreDec
	}
	if score.LessThan(minTrustScoreDec) {
		score = minTrustScoreDec
	}
	return int(score.Round(0).IntPart())
}

func ratio(part, total int) decimal.Decimal {
	if part < 0 {
		part = 0
	}
	if total < 1 {
		total = 1
	}
	return decimal.NewFromInt(int64(part)).Div(decimal.NewFromInt(int64(total)))
}

// AgeBonus returns 10/8/5/3/0 for businesses aged >=10/>=5/>=3/>=1/<1 years
func AgeBonus(years int) int {
	switch {
	case years >= 10:
		return 10
	case years >= 5:
		return 8
	case years >= 3:
		return 5
	case years >= 1:
		return 3
	}
	return 0
}

// ClampTrust bounds a score to [0, 100]
func ClampTrust(score int) int {
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	if score < MinTrustScore {
		return MinTrustScore
	}
	return score
}

// RiskLevelFor buckets a risk score: <=25 LOW, <=50 MEDIUM, <=75 HIGH, else CRITICAL
func RiskLevelFor(riskScore int) RiskLevel {
	switch {
	case riskScore <= 25:
		return RiskLevelLow
	case riskScore <= 50:
		return RiskLevelMedium
	case riskScore <= 75:
		return RiskLevelHigh
	}
	return RiskLevelCritical
}

// RecommendationFor maps a risk level to reviewer guidance
func RecommendationFor(level RiskLevel) Recommendation {
	switch level {
	case RiskLevelLow:
		return RecommendApprove
	case RiskLevelMedium:
		return RecommendApproveMonitored
	case RiskLevelHigh:
		return RecommendEnhancedDiligence
	}
	return RecommendReject
}

// BadgeTypeFor maps a trust score to a badge tier
func BadgeTypeFor(trustScore int) BadgeType {
	switch {
	case trustScore >= 90:
		return BadgeGold
	case trustScore >= 70:
		return BadgeSilver
	case trustScore >= 50:
		return BadgeBronze
	}
	return BadgeVerified
}

// RiskAssessment is embedded in the case and always mirrors the trust score
type RiskAssessment struct {
	TotalRiskScore int            `json:"totalRiskScore"`
	RiskLevel      RiskLevel      `json:"riskLevel"`
	Recommendation Recommendation `json:"recommendation"`
}

// AssessRisk derives the risk assessment for a trust score
func AssessRisk(trustScore int) RiskAssessment {
	risk := MaxTrustScore - ClampTrust(trustScore)
	level := RiskLevelFor(risk)
	return RiskAssessment{
		TotalRiskScore: risk,
		RiskLevel:      level,
		Recommendation: RecommendationFor(level),
	}
}
