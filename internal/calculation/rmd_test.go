package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateRMD(t *testing.T) {
	rmd := NewRMDCalculator(73)

	tests := []struct {
		name     string
		balance  string
		age      float64
		expected string
	}{
		{name: "before start age", balance: "100000", age: 72.9, expected: "0"},
		{name: "at start age rounds up to the cent", balance: "100000", age: 73, expected: "3773.59"},
		{name: "fractional age uses whole years", balance: "100000", age: 75.6, expected: "4065.05"},
		{name: "past the end of the table", balance: "1000", age: 125, expected: "500"},
		{name: "empty account", balance: "0", age: 80, expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimalEqual(t, dec(tt.expected), rmd.CalculateRMD(dec(tt.balance), tt.age))
		})
	}
}

func TestCalculateRMD_AtLeastBalanceOverFactor(t *testing.T) {
	rmd := NewRMDCalculator(73)
	balance := dec("987654.32")
	for age := 73; age <= 120; age++ {
		got := rmd.CalculateRMD(balance, float64(age))
		minimum := balance.Div(DistributionPeriod(age))
		assert.True(t, got.GreaterThanOrEqual(minimum), "age %d", age)
		assert.True(t, got.LessThanOrEqual(balance), "age %d", age)
	}
}

func TestDistributionPeriod_Clamps(t *testing.T) {
	assert.True(t, DistributionPeriod(60).Equal(decimal.NewFromFloat(27.4)))
	assert.True(t, DistributionPeriod(130).Equal(decimal.NewFromFloat(2.0)))
}
