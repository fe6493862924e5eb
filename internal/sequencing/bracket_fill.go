package sequencing

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// BracketFillStrategy fills the current ordinary bracket with tax-deferred withdrawals,
// then sources any remainder in the standard order.
type BracketFillStrategy struct{}

func NewBracketFillStrategy() *BracketFillStrategy { return &BracketFillStrategy{} }

func (s *BracketFillStrategy) Name() string { return StrategyBracketFill }

func (s *BracketFillStrategy) Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan {
	p := newPlanner(s.Name(), sources, ctx)

	headroom := decimal.Max(decimal.Zero, ctx.OrdinaryHeadroom)
	for _, i := range categoryOrder(p.sources, domain.TaxCategoryTaxDeferred) {
		if headroom.LessThanOrEqual(decimal.Zero) {
			break
		}
		before := p.plan.TotalSourced
		p.draw(i, headroom)
		headroom = headroom.Sub(p.plan.TotalSourced.Sub(before))
	}
	if headroom.LessThanOrEqual(decimal.Zero) && ctx.OrdinaryHeadroom.GreaterThan(decimal.Zero) {
		p.plan.Notes = append(p.plan.Notes, "bracket filled")
	}

	p.drawAll(standardOrder(p.sources))
	return p.finish()
}
