package calculation

import (
	"math"
	"testing"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatePayoffMonths(t *testing.T) {
	tests := []struct {
		name     string
		debt     domain.Debt
		expected int
	}{
		{
			name:     "zero APR divides evenly",
			debt:     domain.Debt{Balance: dec("10000"), MonthlyPayment: dec("500"), InterestType: domain.InterestSimple},
			expected: 20,
		},
		{
			name:     "zero APR partial final month",
			debt:     domain.Debt{Balance: dec("10100"), MonthlyPayment: dec("500"), InterestType: domain.InterestSimple},
			expected: 21,
		},
		{
			name:     "18 percent simple",
			debt:     domain.Debt{Balance: dec("10000"), MonthlyPayment: dec("500"), APR: dec("0.18"), InterestType: domain.InterestSimple},
			expected: 24,
		},
		{
			name:     "payment below interest",
			debt:     domain.Debt{Balance: dec("10000"), MonthlyPayment: dec("100"), APR: dec("0.18"), InterestType: domain.InterestSimple},
			expected: PayoffNever,
		},
		{
			name:     "no payment",
			debt:     domain.Debt{Balance: dec("10000"), InterestType: domain.InterestSimple},
			expected: PayoffNever,
		},
		{
			name:     "already paid",
			debt:     domain.Debt{Balance: decimal.Zero, MonthlyPayment: dec("100")},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimatePayoffMonths(tt.debt))
		})
	}
}

func TestEstimatePayoffMonths_InterestLengthensPayoff(t *testing.T) {
	months := EstimatePayoffMonths(domain.Debt{Balance: dec("10000"), MonthlyPayment: dec("500"), APR: dec("0.18"), InterestType: domain.InterestSimple})
	assert.Greater(t, months, 20)
	assert.Less(t, months, 30)
}

func TestMonthlyRate(t *testing.T) {
	assertDecimalEqual(t, dec("0.015"), MonthlyRate(dec("0.18"), domain.InterestSimple, ""))
	assertDecimalEqual(t, dec("0.01"), MonthlyRate(dec("0.12"), domain.InterestCompound, domain.CompoundMonthly))
	assert.InDelta(t, 0.010048507092917047, MonthlyRate(dec("0.12"), domain.InterestCompound, domain.CompoundDaily).InexactFloat64(), 1e-12)
	assert.True(t, MonthlyRate(decimal.Zero, domain.InterestCompound, domain.CompoundDaily).IsZero())
}

func TestMonthlyInflation(t *testing.T) {
	assert.Zero(t, MonthlyInflation(decimal.Zero))
	assert.InDelta(t, 0.03, math.Pow(1+MonthlyInflation(dec("0.03")), 12)-1, 1e-12)
}

func TestRealMonthlyRate(t *testing.T) {
	t.Run("no inflation is the nominal rate", func(t *testing.T) {
		for _, tc := range []struct {
			interest    domain.InterestType
			compounding domain.CompoundingPeriod
		}{
			{domain.InterestSimple, ""},
			{domain.InterestCompound, domain.CompoundMonthly},
			{domain.InterestCompound, domain.CompoundDaily},
		} {
			assertDecimalEqual(t, MonthlyRate(dec("0.12"), tc.interest, tc.compounding), RealMonthlyRate(dec("0.12"), tc.interest, tc.compounding, 0))
		}
	})

	t.Run("inflation is netted out", func(t *testing.T) {
		monthly := MonthlyInflation(dec("0.03"))
		got := RealMonthlyRate(dec("0.06"), domain.InterestSimple, "", monthly)
		assert.InDelta(t, 1.005/(1+monthly)-1, got.InexactFloat64(), 1e-12)

		daily := RealMonthlyRate(dec("0.06"), domain.InterestCompound, domain.CompoundDaily, monthly)
		assert.True(t, daily.LessThan(MonthlyRate(dec("0.06"), domain.InterestCompound, domain.CompoundDaily)))
		assert.True(t, daily.IsPositive())
	})

	t.Run("negative when inflation outpaces the apr", func(t *testing.T) {
		assert.True(t, RealMonthlyRate(dec("0.01"), domain.InterestSimple, "", MonthlyInflation(dec("0.05"))).IsNegative())
	})
}

func TestAmortizingLoan_DeflatesPayment(t *testing.T) {
	loan := newLoanFromDebt(domain.Debt{ID: "note", Balance: dec("100000"), MonthlyPayment: dec("1000"), InterestType: domain.InterestSimple})
	interest, paid := loan.amortizeYear(dec("0.03"))

	assert.InDelta(t, 1000/1.03, loan.payment.InexactFloat64(), 1e-6, "a year of monthly deflation")
	assert.True(t, paid.LessThan(dec("12000")))
	assert.True(t, paid.GreaterThan(dec("11500")))
	assert.True(t, interest.IsNegative(), "a zero-rate loan shrinks in real terms")
	assertDecimalEqual(t, dec("100000").Add(interest).Sub(paid), loan.balance)

	months := EstimatePayoffMonths(domain.Debt{Balance: dec("100000"), MonthlyPayment: dec("1000")})
	assert.Equal(t, 100, months, "payoff estimates stay nominal")
}

func TestLoanPayment(t *testing.T) {
	assertDecimalEqual(t, dec("599.56"), LoanPayment(dec("100000"), dec("0.06"), 360))
	assertDecimalEqual(t, dec("833.34"), LoanPayment(dec("10000"), decimal.Zero, 12))
	assert.True(t, LoanPayment(dec("10000"), dec("0.05"), 0).IsZero())
}

func TestAmortizingLoan_NeverNegative(t *testing.T) {
	loan := newLoanFromDebt(domain.Debt{ID: "car", Balance: dec("1000"), MonthlyPayment: dec("400"), APR: dec("0.06"), InterestType: domain.InterestSimple})
	_, paid := loan.amortizeYear(decimal.Zero)
	assert.True(t, loan.paidOff())
	assert.True(t, loan.balance.IsZero())
	assert.True(t, paid.GreaterThan(dec("1000")), "payments cover principal plus interest")
	assert.True(t, paid.LessThan(dec("1200")), "payments stop at payoff")
}

func TestDebtState_Step(t *testing.T) {
	ctx := testTimeContext(nil)
	state := newDebtState(domain.Debt{
		ID:             "loan",
		Balance:        dec("10000"),
		MonthlyPayment: dec("500"),
		InterestType:   domain.InterestSimple,
		Start:          domain.AtAge(36),
	})

	snap, err := state.step(ctx, 35, decimal.Zero)
	require.NoError(t, err)
	assert.False(t, state.started)
	assert.True(t, snap.Payments.IsZero())

	snap, err = state.step(ctx, 36, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, state.started)
	assertDecimalEqual(t, dec("6000"), snap.Payments)
	assertDecimalEqual(t, dec("4000"), snap.Balance)

	snap, err = state.step(ctx, 37, decimal.Zero)
	require.NoError(t, err)
	assertDecimalEqual(t, dec("4000"), snap.Payments)
	assert.True(t, snap.PaidOff)
}

func TestDebtState_UnresolvedStart(t *testing.T) {
	bad := newDebtState(domain.Debt{ID: "x", Balance: dec("1"), MonthlyPayment: dec("1"), Start: domain.Timepoint{Type: "soon"}})
	_, err := bad.step(testTimeContext(nil), 35, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
