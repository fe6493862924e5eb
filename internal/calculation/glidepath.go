package calculation

import (
	"errors"
	"math"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// bondFraction is the balance-weighted bond share of the invested (non-savings) accounts
func bondFraction(accounts []*accountState) (fraction, invested decimal.Decimal) {
	bonds := decimal.Zero
	for _, a := range accounts {
		if a.account.Type == domain.AccountSavings {
			continue
		}
		invested = invested.Add(a.balance)
		bonds = bonds.Add(a.balance.Mul(a.allocation.Bonds))
	}
	if invested.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	return bonds.Div(invested), invested
}

// applyGlidePath moves the portfolio's bond fraction one linear step toward the target so
// that the target is reached at the glide path's end age. Tax-advantaged accounts are
// rebalanced first; taxable accounts absorb only what they cannot.
func applyGlidePath(gp *domain.GlidePath, accounts []*accountState, ctx TimeContext, age float64) error {
	if gp == nil || !gp.Enabled {
		return nil
	}
	endAge, err := ResolveTimepoint(gp.End, ctx)
	if errors.Is(err, domain.ErrUnresolvedRetirementAge) {
		return nil
	}
	if err != nil {
		return err
	}

	current, invested := bondFraction(accounts)
	if invested.IsZero() {
		return nil
	}
	stepsLeft := math.Max(1, math.Ceil(endAge-age))
	desired := current.Add(gp.TargetBondAllocation.Sub(current).Div(decimal.NewFromFloat(stepsLeft)))
	shift := desired.Sub(current).Mul(invested).Round(2)
	if shift.IsZero() {
		return nil
	}

	var advantaged, taxable []*accountState
	for _, a := range accounts {
		switch a.category() {
		case domain.TaxCategoryTaxDeferred, domain.TaxCategoryTaxFree:
			advantaged = append(advantaged, a)
		case domain.TaxCategoryTaxable:
			taxable = append(taxable, a)
		}
	}
	for _, a := range append(advantaged, taxable...) {
		if shift.IsZero() {
			break
		}
		shift = rebalanceAccount(a, shift)
	}
	return nil
}

// rebalanceAccount moves up to |shift| dollars between stocks and bonds in one account
// (positive shift buys bonds) and returns the shift still outstanding
func rebalanceAccount(a *accountState, shift decimal.Decimal) decimal.Decimal {
	if a.balance.LessThanOrEqual(decimal.Zero) {
		return shift
	}
	stocks := a.balance.Mul(a.allocation.Stocks)
	bonds := a.balance.Mul(a.allocation.Bonds)

	var moved decimal.Decimal
	if shift.IsPositive() {
		moved = decimal.Min(shift, stocks)
		stocks = stocks.Sub(moved)
	} else {
		moved = decimal.Min(shift.Neg(), bonds)
		stocks = stocks.Add(moved)
		moved = moved.Neg()
	}

	newStocks := stocks.Div(a.balance)
	a.allocation = domain.AssetAllocation{
		Stocks: newStocks,
		Bonds:  decimal.NewFromInt(1).Sub(newStocks).Sub(a.allocation.Cash),
		Cash:   a.allocation.Cash,
	}
	return shift.Sub(moved)
}
