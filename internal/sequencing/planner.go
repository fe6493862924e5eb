package sequencing

import (
	"sort"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// planner draws from working copies of the sources so that a strategy may visit an
// account more than once without overdrawing it
type planner struct {
	plan    WithdrawalPlan
	sources []WithdrawalSource
	slots   map[string]int
}

func newPlanner(name string, sources []WithdrawalSource, ctx StrategyContext) *planner {
	working := make([]WithdrawalSource, len(sources))
	copy(working, sources)
	return &planner{
		plan: WithdrawalPlan{
			Requested:    ctx.NeedAmount,
			StrategyUsed: name,
			Allocations:  []WithdrawalAllocation{},
		},
		sources: working,
		slots:   map[string]int{},
	}
}

func (p *planner) remaining() decimal.Decimal {
	return p.plan.Requested.Sub(p.plan.TotalSourced)
}

// draw withdraws up to limit from the source at index i, bounded by the remaining need
func (p *planner) draw(i int, limit decimal.Decimal) {
	src := &p.sources[i]
	amount := decimal.Min(limit, p.remaining(), src.Balance)
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}

	alloc := decompose(src, amount)
	slot, ok := p.slots[src.AccountID]
	if !ok {
		slot = len(p.plan.Allocations)
		p.slots[src.AccountID] = slot
		p.plan.Allocations = append(p.plan.Allocations, WithdrawalAllocation{AccountID: src.AccountID, Penalty: src.Penalty})
	}
	merged := &p.plan.Allocations[slot]
	merged.Gross = merged.Gross.Add(alloc.Gross)
	merged.OrdinaryPortion = merged.OrdinaryPortion.Add(alloc.OrdinaryPortion)
	merged.CapitalGainsPortion = merged.CapitalGainsPortion.Add(alloc.CapitalGainsPortion)
	merged.TaxFreePortion = merged.TaxFreePortion.Add(alloc.TaxFreePortion)
	merged.BasisUsed = merged.BasisUsed.Add(alloc.BasisUsed)
	merged.PenalizedPortion = merged.PenalizedPortion.Add(alloc.PenalizedPortion)

	p.plan.TotalSourced = p.plan.TotalSourced.Add(alloc.Gross)
	p.plan.EstimatedOrdinaryIncome = p.plan.EstimatedOrdinaryIncome.Add(alloc.OrdinaryPortion)
	p.plan.EstimatedCapitalGains = p.plan.EstimatedCapitalGains.Add(alloc.CapitalGainsPortion)
	switch alloc.Penalty {
	case PenaltyEarly:
		p.plan.EstimatedEarlyPenalized = p.plan.EstimatedEarlyPenalized.Add(alloc.PenalizedPortion)
	case PenaltyHSA:
		p.plan.EstimatedHSAPenalized = p.plan.EstimatedHSAPenalized.Add(alloc.PenalizedPortion)
	}
}

// drawAll visits sources in the given index order, draining each before moving on
func (p *planner) drawAll(order []int) {
	for _, i := range order {
		if p.remaining().LessThanOrEqual(decimal.Zero) {
			break
		}
		p.draw(i, p.sources[i].Balance)
	}
}

func (p *planner) finish() WithdrawalPlan {
	p.plan.RemainingNeed = decimal.Max(decimal.Zero, p.remaining())
	if p.plan.RemainingNeed.GreaterThan(decimal.Zero) {
		p.plan.Notes = append(p.plan.Notes, "insufficient balances to meet request")
	}
	return p.plan
}

// decompose splits a withdrawal into its tax parts and reduces the source's balance and basis
func decompose(src *WithdrawalSource, amount decimal.Decimal) WithdrawalAllocation {
	alloc := WithdrawalAllocation{AccountID: src.AccountID, Gross: amount, Penalty: src.Penalty}

	switch src.TaxTreatment {
	case OrdinaryIncome:
		alloc.OrdinaryPortion = amount
		if src.Penalty != PenaltyNone {
			alloc.PenalizedPortion = amount
		}
	case TaxFree:
		alloc.TaxFreePortion = amount
		alloc.BasisUsed = decimal.Min(amount, decimal.Max(decimal.Zero, src.Basis))
	case CapitalGains:
		// Basis is returned pro rata; the rest of the withdrawal is realized gain
		basisUsed := decimal.Zero
		if src.Balance.GreaterThan(decimal.Zero) && src.Basis.GreaterThan(decimal.Zero) {
			basisUsed = src.Basis.Mul(amount).Div(src.Balance).Round(2)
		}
		alloc.BasisUsed = basisUsed
		alloc.TaxFreePortion = decimal.Min(basisUsed, amount)
		alloc.CapitalGainsPortion = amount.Sub(basisUsed)
	case BasisFirst:
		fromBasis := decimal.Min(amount, decimal.Max(decimal.Zero, src.Basis))
		earnings := amount.Sub(fromBasis)
		alloc.BasisUsed = fromBasis
		alloc.TaxFreePortion = fromBasis
		if src.Penalty != PenaltyNone {
			alloc.OrdinaryPortion = earnings
			alloc.PenalizedPortion = earnings
		} else {
			alloc.TaxFreePortion = amount
		}
	}

	src.Balance = src.Balance.Sub(amount)
	src.Basis = decimal.Max(decimal.Zero, src.Basis.Sub(alloc.BasisUsed))
	return alloc
}

// categoryOrder returns source indexes ordered by category rank, keeping input order
// within a category. Categories missing from ranks are skipped.
func categoryOrder(sources []WithdrawalSource, ranks ...domain.TaxCategory) []int {
	rank := make(map[domain.TaxCategory]int, len(ranks))
	for i, c := range ranks {
		rank[c] = i
	}
	order := make([]int, 0, len(sources))
	for i := range sources {
		if _, ok := rank[sources[i].Category]; ok {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rank[sources[order[a]].Category] < rank[sources[order[b]].Category]
	})
	return order
}
