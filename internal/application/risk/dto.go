package risk

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StandingResponse is the good-standing verdict for a buyer
type StandingResponse struct {
	BuyerID           uuid.UUID            `json:"buyer_id"`
	GoodStanding      bool                 `json:"good_standing"`
	Checks            map[string]bool      `json:"checks"`
	Reasons           []string             `json:"reasons"`
	Metrics           risk.StandingMetrics `json:"metrics"`
	RecommendedAction string               `json:"recommended_action"`
}

// FlagResponse is a risk flag
type FlagResponse struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	Resolved   bool       `json:"resolved"`
	RaisedAt   time.Time  `json:"raised_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// BlacklistResponse is the buyer's blacklist entry
type BlacklistResponse struct {
	Status   string    `json:"status"`
	Reason   string    `json:"reason"`
	ListedAt time.Time `json:"listed_at"`
}

// TrustProfileResponse is the full buyer trust profile
type TrustProfileResponse struct {
	BuyerID                 uuid.UUID          `json:"buyer_id"`
	PaymentReliability      decimal.Decimal    `json:"payment_reliability"`
	DisputeHistory          decimal.Decimal    `json:"dispute_history"`
	Behavioral              decimal.Decimal    `json:"behavioral"`
	Compliance              decimal.Decimal    `json:"compliance"`
	OverallScore            decimal.Decimal    `json:"overall_score"`
	RiskLevel               string             `json:"risk_level"`
	PaymentOnTimePercentage decimal.Decimal    `json:"payment_on_time_percentage"`
	TotalTransactions       int                `json:"total_transactions"`
	TotalDisputes           int                `json:"total_disputes"`
	TotalOrderCount         int                `json:"total_order_count"`
	Flags                   []FlagResponse     `json:"flags"`
	Blacklist               *BlacklistResponse `json:"blacklist,omitempty"`
	Persisted               bool               `json:"persisted"`
	Version                 int                `json:"version"`
}

// UpdateSignalsRequest replaces the upstream risk signals of a buyer
type UpdateSignalsRequest struct {
	PaymentReliability      decimal.Decimal `json:"payment_reliability" binding:"required"`
	DisputeHistory          decimal.Decimal `json:"dispute_history" binding:"required"`
	Behavioral              decimal.Decimal `json:"behavioral" binding:"required"`
	Compliance              decimal.Decimal `json:"compliance" binding:"required"`
	PaymentOnTimePercentage decimal.Decimal `json:"payment_on_time_percentage" binding:"required"`
	TotalTransactions       int             `json:"total_transactions" binding:"min=0"`
	TotalDisputes           int             `json:"total_disputes" binding:"min=0"`
}

// RaiseFlagRequest raises a risk flag
type RaiseFlagRequest struct {
	Type     string `json:"type" binding:"required,min=1,max=100"`
	Severity string `json:"severity" binding:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
}

// SetBlacklistRequest moves the buyer's blacklist entry
type SetBlacklistRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE APPEALED REMOVED UNDER_REVIEW"`
	Reason string `json:"reason" binding:"max=1000"`
}

// ToStandingResponse converts a standing result
func ToStandingResponse(buyerID uuid.UUID, r risk.StandingResult) StandingResponse {
	checks := make(map[string]bool, len(r.Checks))
	for k, v := range r.Checks {
		checks[string(k)] = v
	}
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return StandingResponse{
		BuyerID:           buyerID,
		GoodStanding:      r.GoodStanding,
		Checks:            checks,
		Reasons:           reasons,
		Metrics:           r.Metrics,
		RecommendedAction: string(r.RecommendedAction),
	}
}

// ToTrustProfileResponse converts a profile
func ToTrustProfileResponse(p *risk.BuyerTrustProfile, w risk.Weights, persisted bool) TrustProfileResponse {
	flags := make([]FlagResponse, len(p.ActiveFlags))
	for i, f := range p.ActiveFlags {
		flags[i] = FlagResponse{
			ID:         f.ID,
			Type:       f.Type,
			Severity:   string(f.Severity),
			Resolved:   f.Resolved,
			RaisedAt:   f.RaisedAt,
			ResolvedAt: f.ResolvedAt,
		}
	}
	resp := TrustProfileResponse{
		BuyerID:                 p.BuyerID,
		PaymentReliability:      p.Scores.PaymentReliability,
		DisputeHistory:          p.Scores.DisputeHistory,
		Behavioral:              p.Scores.Behavioral,
		Compliance:              p.Scores.Compliance,
		OverallScore:            p.OverallScore(w),
		RiskLevel:               string(p.RiskLevel(w)),
		PaymentOnTimePercentage: p.PaymentOnTimePercentage,
		TotalTransactions:       p.TotalTransactions,
		TotalDisputes:           p.TotalDisputes,
		TotalOrderCount:         p.TotalOrderCount,
		Flags:                   flags,
		Persisted:               persisted,
		Version:                 p.Version,
	}
	if p.Blacklist != nil {
		resp.Blacklist = &BlacklistResponse{
			Status:   string(p.Blacklist.Status),
			Reason:   p.Blacklist.Reason,
			ListedAt: p.Blacklist.ListedAt,
		}
	}
	return resp
}
