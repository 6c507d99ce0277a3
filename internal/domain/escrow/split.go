package escrow

import (
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultAdvancePercentage is used when a caller does not specify one
var DefaultAdvancePercentage = decimal.NewFromInt(30)

var hundred = decimal.NewFromInt(100)

// Split is an advance/balance division of a total amount.
// Advance + Balance always equals Total exactly.
type Split struct {
	Total             decimal.Decimal `json:"total"`
	AdvancePercentage decimal.Decimal `json:"advancePercentage"`
	Advance           decimal.Decimal `json:"advance"`
	Balance           decimal.Decimal `json:"balance"`
}

// ComputeSplit divides total into an advance of pct percent, rounded half-up to
// two decimals, and a balance carrying the remainder.
func ComputeSplit(total, pct decimal.Decimal) (Split, error) {
	if total.IsNegative() {
		return Split{}, shared.NewValidationError("total amount cannot be negative")
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return Split{}, shared.NewValidationError("advance percentage must be between 0 and 100").
			WithDetail("advancePercentage", pct.String())
	}

	advance := valueobject.PercentOf(total, pct)
	return Split{
		Total:             total,
		AdvancePercentage: pct,
		Advance:           advance,
		Balance:           total.Sub(advance),
	}, nil
}

// ComputeDefaultSplit uses DefaultAdvancePercentage
func ComputeDefaultSplit(total decimal.Decimal) (Split, error) {
	return ComputeSplit(total, DefaultAdvancePercentage)
}
