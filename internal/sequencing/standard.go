package sequencing

import "github.com/rgehrsitz/fireplan/internal/domain"

// StandardStrategy: taxable -> tax-deferred -> tax-free -> cash savings
// Spends taxable assets first, keeps tax-free growth for last and holds cash as the final reserve.
type StandardStrategy struct{}

func NewStandardStrategy() *StandardStrategy { return &StandardStrategy{} }

func (s *StandardStrategy) Name() string { return StrategyStandard }

func (s *StandardStrategy) Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan {
	p := newPlanner(s.Name(), sources, ctx)
	p.drawAll(standardOrder(sources))
	return p.finish()
}

func standardOrder(sources []WithdrawalSource) []int {
	return categoryOrder(sources,
		domain.TaxCategoryTaxable,
		domain.TaxCategoryTaxDeferred,
		domain.TaxCategoryTaxFree,
		domain.TaxCategoryCashSavings,
	)
}

// CashFirstStrategy: cash savings -> taxable -> tax-deferred -> tax-free
type CashFirstStrategy struct{}

func NewCashFirstStrategy() *CashFirstStrategy { return &CashFirstStrategy{} }

func (s *CashFirstStrategy) Name() string { return StrategyCashFirst }

func (s *CashFirstStrategy) Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan {
	p := newPlanner(s.Name(), sources, ctx)
	p.drawAll(categoryOrder(sources,
		domain.TaxCategoryCashSavings,
		domain.TaxCategoryTaxable,
		domain.TaxCategoryTaxDeferred,
		domain.TaxCategoryTaxFree,
	))
	return p.finish()
}

// TaxDeferredFirstStrategy: tax-deferred -> taxable -> tax-free -> cash savings
// Draws down 401k/ira balances early to shrink later RMDs.
type TaxDeferredFirstStrategy struct{}

func NewTaxDeferredFirstStrategy() *TaxDeferredFirstStrategy { return &TaxDeferredFirstStrategy{} }

func (s *TaxDeferredFirstStrategy) Name() string { return StrategyTaxDeferredFirst }

func (s *TaxDeferredFirstStrategy) Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan {
	p := newPlanner(s.Name(), sources, ctx)
	p.drawAll(categoryOrder(sources,
		domain.TaxCategoryTaxDeferred,
		domain.TaxCategoryTaxable,
		domain.TaxCategoryTaxFree,
		domain.TaxCategoryCashSavings,
	))
	return p.finish()
}
