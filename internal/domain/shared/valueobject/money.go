package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	INR Currency = "INR"
	AED Currency = "AED"
	CNY Currency = "CNY"
)

// DefaultCurrency settles offers that do not name a currency
const DefaultCurrency = USD

// Scale is the number of decimal places amounts settle in
const Scale int32 = 2

var hundred = decimal.NewFromInt(100)

// ParseCurrency upper-cases code; blank codes become DefaultCurrency
func ParseCurrency(code string) Currency {
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		return Currency(code)
	}
	return DefaultCurrency
}

// PercentOf is pct percent of amount, rounded half-up to Scale places
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(Scale)
}

// Money pairs an amount with its currency. Values are never mutated.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: ParseCurrency(currency)}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(Scale), m.currency)
}

type wireMoney struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{m.amount.StringFixed(Scale), m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var w wireMoney
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(w.Amount)
	if err != nil {
		return fmt.Errorf("money amount %q: %w", w.Amount, err)
	}
	*m = NewMoney(amount, string(w.Currency))
	return nil
}
