package risk

import (
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Weights configure how the sub-scores combine into the overall score
type Weights struct {
	PaymentReliability decimal.Decimal
	DisputeHistory     decimal.Decimal
	Behavioral         decimal.Decimal
	Compliance         decimal.Decimal
}

// EqualWeights returns the default 0.25 weighting
func EqualWeights() Weights {
	q := decimal.RequireFromString("0.25")
	return Weights{PaymentReliability: q, DisputeHistory: q, Behavioral: q, Compliance: q}
}

// NewWeights validates and builds a weighting from floats (as loaded from config)
func NewWeights(payment, dispute, behavioral, compliance float64) (Weights, error) {
	w := Weights{
		PaymentReliability: decimal.NewFromFloat(payment),
		DisputeHistory:     decimal.NewFromFloat(dispute),
		Behavioral:         decimal.NewFromFloat(behavioral),
		Compliance:         decimal.NewFromFloat(compliance),
	}
	return w, w.Validate()
}

// Validate checks weights are non-negative and sum to 1
func (w Weights) Validate() error {
	parts := []decimal.Decimal{w.PaymentReliability, w.DisputeHistory, w.Behavioral, w.Compliance}
	sum := decimal.Zero
	for _, p := range parts {
		if p.IsNegative() {
			return shared.NewValidationError("risk weights cannot be negative")
		}
		sum = sum.Add(p)
	}
	if !sum.Round(6).Equal(decimal.NewFromInt(1)) {
		return shared.NewValidationError("risk weights must sum to 1, got " + sum.String())
	}
	return nil
}

// Apply computes the weighted average of s, rounded to 2 places
func (w Weights) Apply(s SubScores) decimal.Decimal {
	return s.PaymentReliability.Mul(w.PaymentReliability).
		Add(s.DisputeHistory.Mul(w.DisputeHistory)).
		Add(s.Behavioral.Mul(w.Behavioral)).
		Add(s.Compliance.Mul(w.Compliance)).
		Round(2)
}
