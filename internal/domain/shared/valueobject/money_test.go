package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(amount, currency string) Money {
	return NewMoney(decimal.RequireFromString(amount), currency)
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		percent string
		want    string
	}{
		{"default advance", "10000", "30", "3000"},
		{"rounds half up", "0.05", "50", "0.03"},
		{"odd cents", "333.33", "30", "100"},
		{"zero percent", "123.45", "0", "0"},
		{"whole amount", "123.45", "100", "123.45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentOf(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.percent))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNewMoney(t *testing.T) {
	total := money("1000", " usd ")
	assert.Equal(t, USD, total.Currency())
	assert.Equal(t, "1000.00 USD", total.String())
	assert.Equal(t, DefaultCurrency, money("5", "").Currency())
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(money("7000", "INR"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"7000.00","currency":"INR"}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "7000.00 INR", m.String())

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"lots","currency":"INR"}`), &m))
}

func TestParseCurrency(t *testing.T) {
	assert.Equal(t, DefaultCurrency, ParseCurrency(" "))
	assert.Equal(t, EUR, ParseCurrency("eur"))
}
