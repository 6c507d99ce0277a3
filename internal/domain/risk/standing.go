package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Check names a single good-standing rule
type Check string

const (
	CheckBlacklist         Check = "blacklist"
	CheckHighSeverityFlags Check = "highSeverityFlags"
	CheckRiskLevel         Check = "riskLevel"
	CheckPaymentOnTime     Check = "paymentOnTime"
)

// RecommendedAction is what the admission flow should do with a buyer
type RecommendedAction string

const (
	ActionAutoApprove  RecommendedAction = "AUTO_APPROVE"
	ActionManualReview RecommendedAction = "MANUAL_REVIEW"
	ActionReject       RecommendedAction = "REJECT"
)

// StandingPolicy configures the good-standing gate.
//
// Precedence when checks disagree: an ACTIVE blacklist always wins and yields
// REJECT without evaluating anything else. Otherwise every check is evaluated
// and any failure yields MANUAL_REVIEW. The two escalation switches upgrade a
// MANUAL_REVIEW to REJECT for the combinations they name.
type StandingPolicy struct {
	Weights            Weights
	PaymentOnTimeFloor decimal.Decimal
	// RejectOnCriticalFlag escalates to REJECT when an unresolved CRITICAL flag exists
	RejectOnCriticalFlag bool
	// RejectOnHighRiskWithLatePayment escalates to REJECT when both the risk level
	// and the payment-on-time checks fail
	RejectOnHighRiskWithLatePayment bool
}

// DefaultStandingPolicy returns equal weights, an 80% on-time floor and critical-flag escalation
func DefaultStandingPolicy() StandingPolicy {
	return StandingPolicy{
		Weights:              EqualWeights(),
		PaymentOnTimeFloor:   decimal.NewFromInt(80),
		RejectOnCriticalFlag: true,
	}
}

// StandingMetrics are the figures the checks were evaluated against
type StandingMetrics struct {
	OverallScore            decimal.Decimal `json:"overallScore"`
	RiskLevel               Level           `json:"riskLevel"`
	PaymentOnTimePercentage decimal.Decimal `json:"paymentOnTimePercentage"`
	PaymentOnTimeFloor      decimal.Decimal `json:"paymentOnTimeFloor"`
	UnresolvedHighFlags     int             `json:"unresolvedHighFlags"`
	TotalTransactions       int             `json:"totalTransactions"`
	TotalDisputes           int             `json:"totalDisputes"`
	TotalOrderCount         int             `json:"totalOrderCount"`
}

// StandingResult is the outcome of EvaluateStanding.
// Checks holds pass (true) or fail (false) per evaluated check; checks skipped
// after a blacklist short-circuit are absent. Reasons lists every failure.
type StandingResult struct {
	GoodStanding      bool              `json:"goodStanding"`
	Checks            map[Check]bool    `json:"checks"`
	Reasons           []string          `json:"reasons"`
	Metrics           StandingMetrics   `json:"metrics"`
	RecommendedAction RecommendedAction `json:"recommendedAction"`
}

// Failed returns true if the named check was evaluated and failed
func (r StandingResult) Failed(c Check) bool {
	passed, ok := r.Checks[c]
	return ok && !passed
}

// EvaluateStanding applies the good-standing rules to a profile.
// Pure function: no I/O, no clock.
func EvaluateStanding(p *BuyerTrustProfile, policy StandingPolicy) StandingResult {
	score := p.OverallScore(policy.Weights)
	highFlags := p.UnresolvedHighSeverityFlags()

	result := StandingResult{
		Checks:  make(map[Check]bool, 4),
		Reasons: []string{},
		Metrics: StandingMetrics{
			OverallScore:            score,
			RiskLevel:               LevelFor(score),
			PaymentOnTimePercentage: p.PaymentOnTimePercentage,
			PaymentOnTimeFloor:      policy.PaymentOnTimeFloor,
			UnresolvedHighFlags:     len(highFlags),
			TotalTransactions:       p.TotalTransactions,
			TotalDisputes:           p.TotalDisputes,
			TotalOrderCount:         p.TotalOrderCount,
		},
	}

	// Rule 1: blacklist (hard fail, short-circuits)
	if p.IsBlacklisted() {
		result.Checks[CheckBlacklist] = false
		result.Reasons = append(result.Reasons, fmt.Sprintf("buyer is blacklisted: %s", p.Blacklist.Reason))
		result.RecommendedAction = ActionReject
		return result
	}
	result.Checks[CheckBlacklist] = true

	// Rule 2: unresolved high-severity flags
	result.Checks[CheckHighSeverityFlags] = len(highFlags) == 0
	if len(highFlags) > 0 {
		result.Reasons = append(result.Reasons, fmt.Sprintf("%d unresolved high-severity flag(s)", len(highFlags)))
	}

	// Rule 3: risk level
	result.Checks[CheckRiskLevel] = result.Metrics.RiskLevel != LevelHigh
	if result.Metrics.RiskLevel == LevelHigh {
		result.Reasons = append(result.Reasons, fmt.Sprintf("risk level HIGH (overall score %s)", score.StringFixed(2)))
	}

	// Rule 4: payment punctuality
	onTimeOK := p.PaymentOnTimePercentage.GreaterThanOrEqual(policy.PaymentOnTimeFloor)
	result.Checks[CheckPaymentOnTime] = onTimeOK
	if !onTimeOK {
		result.Reasons = append(result.Reasons, fmt.Sprintf("payment on-time %s%% below floor %s%%",
			p.PaymentOnTimePercentage.StringFixed(2), policy.PaymentOnTimeFloor.String()))
	}

	result.GoodStanding = len(result.Reasons) == 0
	result.RecommendedAction = recommend(result, p, policy)
	return result
}

func recommend(result StandingResult, p *BuyerTrustProfile, policy StandingPolicy) RecommendedAction {
	if result.GoodStanding {
		return ActionAutoApprove
	}
	if policy.RejectOnCriticalFlag && p.HasUnresolvedCriticalFlag() {
		return ActionReject
	}
	if policy.RejectOnHighRiskWithLatePayment && result.Failed(CheckRiskLevel) && result.Failed(CheckPaymentOnTime) {
		return ActionReject
	}
	return ActionManualReview
}
