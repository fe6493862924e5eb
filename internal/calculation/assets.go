package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// assetActivity is the cash effect of a physical asset in one step
type assetActivity struct {
	outlay       decimal.Decimal
	saleProceeds decimal.Decimal
	loanPayments decimal.Decimal
	loanInterest decimal.Decimal
}

// assetState tracks a physical asset and its purchase loan through a trial
type assetState struct {
	asset      domain.PhysicalAsset
	value      decimal.Decimal
	loan       *amortizingLoan
	owned      bool
	sold       bool
	soldInStep bool
}

// newAssetState marks assets bought at or before the start age as already owned, with the
// financing loan outstanding at its full amount
func newAssetState(a domain.PhysicalAsset, ctx TimeContext) (*assetState, error) {
	s := &assetState{asset: a}
	if a.Purchase.Type == domain.TimepointAtRetirement {
		return s, nil
	}
	at, err := ResolveTimepoint(a.Purchase, ctx)
	if err != nil {
		return nil, fmt.Errorf("asset %s purchase: %w", a.ID, err)
	}
	if at <= ctx.CurrentAge {
		s.owned = true
		s.value = a.InitialMarketValue()
		s.loan = s.newLoan()
	}
	return s, nil
}

func (s *assetState) newLoan() *amortizingLoan {
	f := s.asset.Financing
	if f == nil || f.LoanAmount.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	loan := newLoan(s.asset.ID+"-loan", s.asset.Name+" loan", f.LoanAmount,
		LoanPayment(f.LoanAmount, f.APR, f.TermMonths), f.APR, domain.InterestSimple, "")
	loan.fromAssetID = s.asset.ID
	return loan
}

func (s *assetState) loanBalance() decimal.Decimal {
	if s.loan == nil {
		return decimal.Zero
	}
	return s.loan.balance
}

// step buys, sells, appreciates and amortizes the asset for the step that begins at age.
// The purchase loan amortizes in real terms at the year's inflation.
func (s *assetState) step(ctx TimeContext, age float64, inflation decimal.Decimal) (assetActivity, error) {
	var act assetActivity
	s.soldInStep = false
	if s.sold {
		return act, nil
	}

	if !s.owned {
		reached, err := TimepointReached(s.asset.Purchase, ctx, age)
		if err != nil {
			return act, fmt.Errorf("asset %s purchase: %w", s.asset.ID, err)
		}
		if !reached {
			return act, nil
		}
		s.owned = true
		s.value = s.asset.PurchasePrice
		s.loan = s.newLoan()
		act.outlay = s.asset.PurchasePrice
		if f := s.asset.Financing; f != nil {
			act.outlay = f.DownPayment
		}
	}

	if s.asset.Sale != nil {
		reached, err := TimepointReached(*s.asset.Sale, ctx, age)
		if err != nil {
			return act, fmt.Errorf("asset %s sale: %w", s.asset.ID, err)
		}
		if reached {
			act.saleProceeds = s.value.Sub(s.loanBalance())
			s.value = decimal.Zero
			if s.loan != nil {
				s.loan.balance = decimal.Zero
			}
			s.owned = false
			s.sold = true
			s.soldInStep = true
			return act, nil
		}
	}

	s.value = s.value.Mul(decimal.NewFromInt(1).Add(s.asset.AppreciationRate)).Round(2)
	if s.loan != nil {
		act.loanInterest, act.loanPayments = s.loan.amortizeYear(inflation)
	}
	return act, nil
}

// visible reports whether the asset belongs in this step's snapshots
func (s *assetState) visible() bool {
	return s.owned || s.soldInStep
}

func (s *assetState) equity() decimal.Decimal {
	if !s.owned {
		return decimal.Zero
	}
	return s.value.Sub(s.loanBalance())
}

func (s *assetState) snapshot() domain.AssetSnapshot {
	return domain.AssetSnapshot{
		ID:          s.asset.ID,
		Name:        s.asset.Name,
		MarketValue: s.value,
		LoanBalance: s.loanBalance(),
		Equity:      s.equity(),
		Sold:        s.sold,
	}
}
