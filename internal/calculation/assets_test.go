package calculation

import (
	"testing"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetState_OwnedAtStart(t *testing.T) {
	ctx := testTimeContext(nil)
	house := domain.PhysicalAsset{
		ID:               "house",
		Name:             "House",
		PurchasePrice:    dec("250000"),
		MarketValue:      decPtr("400000"),
		AppreciationRate: dec("0.03"),
		Purchase:         domain.AtAge(30),
	}
	s, err := newAssetState(house, ctx)
	require.NoError(t, err)
	assert.True(t, s.owned)
	assertDecimalEqual(t, dec("400000"), s.value)

	act, err := s.step(ctx, 35, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, act.outlay.IsZero(), "no outlay for an asset already owned")
	assertDecimalEqual(t, dec("412000"), s.value)
	assertDecimalEqual(t, dec("412000"), s.equity())
}

func TestAssetState_FinancedPurchase(t *testing.T) {
	ctx := testTimeContext(nil)
	house := domain.PhysicalAsset{
		ID:               "house",
		Name:             "House",
		PurchasePrice:    dec("300000"),
		AppreciationRate: dec("0.02"),
		Purchase:         domain.AtAge(36),
		Financing:        &domain.Financing{DownPayment: dec("60000"), LoanAmount: dec("240000"), APR: dec("0.06"), TermMonths: 360},
	}
	s, err := newAssetState(house, ctx)
	require.NoError(t, err)
	assert.False(t, s.owned)

	act, err := s.step(ctx, 35, decimal.Zero)
	require.NoError(t, err)
	assert.False(t, s.visible())
	assert.True(t, act.outlay.IsZero())

	act, err = s.step(ctx, 36, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, s.visible())
	assertDecimalEqual(t, dec("60000"), act.outlay, "only the down payment leaves the household")
	assertDecimalEqual(t, dec("306000"), s.value)
	require.NotNil(t, s.loan)
	assertDecimalEqual(t, dec("1438.93"), s.loan.payment)
	assertDecimalEqual(t, dec("17267.16"), act.loanPayments)
	assert.True(t, s.loanBalance().LessThan(dec("240000")))
	assert.True(t, act.loanInterest.IsPositive())
	assertDecimalEqual(t, s.value.Sub(s.loanBalance()), s.equity())
	assert.Equal(t, "house", s.loan.fromAssetID)
}

func TestAssetState_Sale(t *testing.T) {
	ctx := testTimeContext(nil)
	sale := domain.AtAge(36)
	car := domain.PhysicalAsset{
		ID:               "car",
		Name:             "Car",
		PurchasePrice:    dec("30000"),
		AppreciationRate: dec("-0.10"),
		Purchase:         domain.Now(),
		Sale:             &sale,
		Financing:        &domain.Financing{DownPayment: dec("10000"), LoanAmount: dec("20000"), APR: dec("0"), TermMonths: 40},
	}
	s, err := newAssetState(car, ctx)
	require.NoError(t, err)

	_, err = s.step(ctx, 35, decimal.Zero)
	require.NoError(t, err)
	assertDecimalEqual(t, dec("27000"), s.value)
	assertDecimalEqual(t, dec("14000"), s.loanBalance())

	act, err := s.step(ctx, 36, decimal.Zero)
	require.NoError(t, err)
	assertDecimalEqual(t, dec("13000"), act.saleProceeds, "proceeds are net of the loan payoff")
	assert.True(t, s.sold)
	assert.True(t, s.visible(), "visible in the step it is sold")
	assert.True(t, s.equity().IsZero())
	assert.True(t, s.snapshot().Sold)

	act, err = s.step(ctx, 37, decimal.Zero)
	require.NoError(t, err)
	assert.False(t, s.visible())
	assert.True(t, act.saleProceeds.IsZero())
}

func TestAssetState_PurchaseAtRetirement(t *testing.T) {
	boat := domain.PhysicalAsset{ID: "boat", PurchasePrice: dec("50000"), Purchase: domain.AtRetirement()}

	s, err := newAssetState(boat, testTimeContext(nil))
	require.NoError(t, err)
	assert.False(t, s.owned)

	act, err := s.step(testTimeContext(nil), 40, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, act.outlay.IsZero(), "unknown retirement never triggers the purchase")

	act, err = s.step(testTimeContext(floatPtr(40)), 40, decimal.Zero)
	require.NoError(t, err)
	assertDecimalEqual(t, dec("50000"), act.outlay)
	assert.True(t, s.owned)
}

func TestAssetState_InvalidPurchase(t *testing.T) {
	_, err := newAssetState(domain.PhysicalAsset{ID: "x", Purchase: domain.Timepoint{Type: "eventually"}}, testTimeContext(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssetState_LoanAmortizesInRealTerms(t *testing.T) {
	ctx := testTimeContext(nil)
	car := domain.PhysicalAsset{
		ID:            "car",
		Name:          "Car",
		PurchasePrice: dec("30000"),
		Purchase:      domain.Now(),
		Financing:     &domain.Financing{LoanAmount: dec("24000"), APR: dec("0.06"), TermMonths: 48},
	}
	nominal, err := newAssetState(car, ctx)
	require.NoError(t, err)
	deflated, err := newAssetState(car, ctx)
	require.NoError(t, err)

	nominalAct, err := nominal.step(ctx, 35, decimal.Zero)
	require.NoError(t, err)
	deflatedAct, err := deflated.step(ctx, 35, dec("0.03"))
	require.NoError(t, err)

	assert.True(t, deflatedAct.loanPayments.LessThan(nominalAct.loanPayments))
	assert.True(t, deflatedAct.loanInterest.LessThan(nominalAct.loanInterest))
	assert.InDelta(t, nominal.loan.payment.InexactFloat64()/1.03, deflated.loan.payment.InexactFloat64(), 1e-6)
}
