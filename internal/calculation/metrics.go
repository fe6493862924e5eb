package calculation

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ExtractKeyMetrics derives the summary scalars of one trajectory. asOfAge is the age at
// which progress is measured, normally the current age.
func ExtractKeyMetrics(result *domain.SimulationResult, asOfAge float64) domain.KeyMetrics {
	m := domain.KeyMetrics{}
	if result == nil || len(result.Data) == 0 {
		return m
	}

	if !result.Bankrupt() {
		m.Success = decimal.NewFromInt(1)
	}

	for _, p := range result.Data {
		if p.Taxes != nil {
			m.LifetimeTaxesAndPenalties = m.LifetimeTaxesAndPenalties.Add(p.Taxes.TotalTaxAndPenalties())
		}
		if m.RetirementAge == nil && p.Phase == domain.PhaseRetired {
			age := p.Age
			value := p.Portfolio.TotalValue
			m.RetirementAge = &age
			m.PortfolioAtRetirement = &value
		}
		if m.BankruptcyAge == nil && p.Phase == domain.PhaseBankrupt {
			age := p.Age
			m.BankruptcyAge = &age
		}
	}

	last, _ := result.Last()
	m.FinalPortfolio = last.Portfolio.TotalValue

	if m.RetirementAge != nil {
		start := result.Context.StartAge
		years := *m.RetirementAge - asOfAge
		if years < 0 {
			years = 0
		}
		m.YearsToRetirement = &years

		progress := decimal.NewFromInt(1)
		if *m.RetirementAge > start {
			progress = clampUnit(decimal.NewFromFloat((asOfAge - start) / (*m.RetirementAge - start)))
		}
		m.ProgressToRetirement = &progress

		if m.PortfolioAtRetirement.IsPositive() {
			initial := result.Data[0].Portfolio.TotalValue
			pp := decimal.Min(initial.Div(*m.PortfolioAtRetirement), decimal.NewFromInt(1))
			m.PortfolioProgress = &pp
		}
	}
	return m
}

// ExtractMonteCarloKeyMetrics averages per-trial metrics. Success is the fraction of
// successful trials; optional metrics are averaged over the trials that have them.
func ExtractMonteCarloKeyMetrics(results []*domain.SimulationResult, asOfAge float64) domain.KeyMetrics {
	m := domain.KeyMetrics{}
	if len(results) == 0 {
		return m
	}

	var success, taxes, final []decimal.Decimal
	var retirementAges, bankruptcyAges, yearsTo []float64
	var atRetirement, progress, portfolioProgress []decimal.Decimal

	for _, r := range results {
		km := ExtractKeyMetrics(r, asOfAge)
		success = append(success, km.Success)
		taxes = append(taxes, km.LifetimeTaxesAndPenalties)
		final = append(final, km.FinalPortfolio)
		if km.RetirementAge != nil {
			retirementAges = append(retirementAges, *km.RetirementAge)
		}
		if km.BankruptcyAge != nil {
			bankruptcyAges = append(bankruptcyAges, *km.BankruptcyAge)
		}
		if km.YearsToRetirement != nil {
			yearsTo = append(yearsTo, *km.YearsToRetirement)
		}
		if km.PortfolioAtRetirement != nil {
			atRetirement = append(atRetirement, *km.PortfolioAtRetirement)
		}
		if km.ProgressToRetirement != nil {
			progress = append(progress, *km.ProgressToRetirement)
		}
		if km.PortfolioProgress != nil {
			portfolioProgress = append(portfolioProgress, *km.PortfolioProgress)
		}
	}

	m.Success = *mean(success)
	m.LifetimeTaxesAndPenalties = *mean(taxes)
	m.FinalPortfolio = *mean(final)
	m.RetirementAge = meanFloat(retirementAges)
	m.BankruptcyAge = meanFloat(bankruptcyAges)
	m.YearsToRetirement = meanFloat(yearsTo)
	m.PortfolioAtRetirement = mean(atRetirement)
	m.ProgressToRetirement = mean(progress)
	m.PortfolioProgress = mean(portfolioProgress)
	return m
}

func meanFloat(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var total float64
	for _, v := range values {
		total += v
	}
	avg := total / float64(len(values))
	return &avg
}

func clampUnit(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d, decimal.NewFromInt(1))
}
