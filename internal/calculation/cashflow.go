package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// flowItem is the working state of one income or expense
type flowItem struct {
	id        string
	amount    decimal.Decimal // per-period amount in today's dollars, after growth so far
	frequency domain.Frequency
	timeframe domain.Timeframe
	growth    *domain.Growth
	kind      domain.IncomeKind
	fired     bool
}

// AnnualAmount converts a per-period amount into a yearly one
func AnnualAmount(amount decimal.Decimal, f domain.Frequency) (decimal.Decimal, error) {
	times, ok := f.TimesPerYear()
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown frequency %q: %w", f, domain.ErrInvalidInput)
	}
	return amount.Mul(decimal.NewFromInt(times)), nil
}

// grow applies one year of real growth and clamps the result at the growth limit.
// A negative rate treats the limit as a floor.
func (f *flowItem) grow(inflation decimal.Decimal) {
	if f.growth == nil || f.growth.Rate.IsZero() {
		return
	}
	next := f.amount.Mul(decimal.NewFromInt(1).Add(RealReturn(f.growth.Rate, inflation))).Round(2)
	if lim := f.growth.Limit; lim != nil {
		if f.growth.Rate.IsPositive() {
			next = decimal.Min(next, *lim)
		} else {
			next = decimal.Max(next, *lim)
		}
	}
	f.amount = next
}

// resolve returns the yearly amount for the step that begins at age, or zero when the item
// is inactive. A oneTime item fires in the first active step only.
func (f *flowItem) resolve(ctx TimeContext, age float64) (decimal.Decimal, error) {
	if f.frequency == domain.FrequencyOneTime && f.fired {
		return decimal.Zero, nil
	}
	active, err := TimeframeActive(f.timeframe, ctx, age)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", f.id, err)
	}
	if !active {
		return decimal.Zero, nil
	}
	f.fired = true
	return AnnualAmount(f.amount, f.frequency)
}

// IncomeTotals sums one year's active income by tax kind
type IncomeTotals struct {
	Wages          decimal.Decimal
	SocialSecurity decimal.Decimal
	TaxFree        decimal.Decimal
	Other          decimal.Decimal
	ByID           map[string]decimal.Decimal
	WagesByID      map[string]decimal.Decimal
}

// Total is all income regardless of kind
func (t IncomeTotals) Total() decimal.Decimal {
	return t.Wages.Add(t.SocialSecurity).Add(t.TaxFree).Add(t.Other)
}

// cashFlows holds every enabled income and expense of a trial
type cashFlows struct {
	incomes  []*flowItem
	expenses []*flowItem
}

func newCashFlows(plan *domain.PlanInputs) *cashFlows {
	cf := &cashFlows{}
	for _, in := range plan.Incomes {
		if in.Disabled {
			continue
		}
		cf.incomes = append(cf.incomes, &flowItem{
			id:        in.ID,
			amount:    in.Amount,
			frequency: in.Frequency,
			timeframe: in.Timeframe,
			growth:    in.Growth,
			kind:      in.EffectiveKind(),
		})
	}
	for _, ex := range plan.Expenses {
		if ex.Disabled {
			continue
		}
		cf.expenses = append(cf.expenses, &flowItem{
			id:        ex.ID,
			amount:    ex.Amount,
			frequency: ex.Frequency,
			timeframe: ex.Timeframe,
			growth:    ex.Growth,
		})
	}
	return cf
}

// advance grows every item by one year
func (cf *cashFlows) advance(inflation decimal.Decimal) {
	for _, f := range cf.incomes {
		f.grow(inflation)
	}
	for _, f := range cf.expenses {
		f.grow(inflation)
	}
}

// resolve totals the incomes and expenses active in the step that begins at age
func (cf *cashFlows) resolve(ctx TimeContext, age float64) (IncomeTotals, decimal.Decimal, error) {
	totals := IncomeTotals{ByID: map[string]decimal.Decimal{}, WagesByID: map[string]decimal.Decimal{}}
	for _, f := range cf.incomes {
		amount, err := f.resolve(ctx, age)
		if err != nil {
			return IncomeTotals{}, decimal.Zero, fmt.Errorf("income %w", err)
		}
		if amount.IsZero() {
			continue
		}
		totals.ByID[f.id] = amount
		switch f.kind {
		case domain.IncomeWage:
			totals.Wages = totals.Wages.Add(amount)
			totals.WagesByID[f.id] = amount
		case domain.IncomeSocialSecurity:
			totals.SocialSecurity = totals.SocialSecurity.Add(amount)
		case domain.IncomeTaxFree:
			totals.TaxFree = totals.TaxFree.Add(amount)
		default:
			totals.Other = totals.Other.Add(amount)
		}
	}

	expenses := decimal.Zero
	for _, f := range cf.expenses {
		amount, err := f.resolve(ctx, age)
		if err != nil {
			return IncomeTotals{}, decimal.Zero, fmt.Errorf("expense %w", err)
		}
		expenses = expenses.Add(amount)
	}
	return totals, expenses, nil
}
