package calculation

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TrailingSpending is the mean of the recorded annual expenses plus debt payments
func TrailingSpending(history []decimal.Decimal) (decimal.Decimal, bool) {
	if len(history) == 0 {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, h := range history {
		total = total.Add(h)
	}
	return total.Div(decimal.NewFromInt(int64(len(history)))), true
}

// SafeWithdrawalReached reports whether the portfolio supports trailing spending at the
// safe withdrawal rate. At least one year of history is required.
func SafeWithdrawalReached(portfolio, rate decimal.Decimal, history []decimal.Decimal) bool {
	spending, ok := TrailingSpending(history)
	if !ok {
		return false
	}
	return portfolio.Mul(rate).GreaterThanOrEqual(spending)
}

// shouldRetire evaluates the retirement trigger at the end of a step
func (s *simulation) shouldRetire(endAge float64, portfolio decimal.Decimal) bool {
	strategy := s.plan.Timeline.RetirementStrategy
	switch strategy.Type {
	case domain.RetirementSWRTarget:
		return SafeWithdrawalReached(portfolio, strategy.SafeWithdrawalRate, s.spendingHistory)
	default:
		return endAge >= strategy.RetirementAge
	}
}

// isBankrupt: after a deficit step liquid assets are gone and a shortfall carried into the
// step is still unpaid
func isBankrupt(deficitStep bool, portfolio, carriedIn, carriedOut decimal.Decimal) bool {
	return deficitStep &&
		portfolio.LessThanOrEqual(decimal.Zero) &&
		carriedIn.IsPositive() &&
		carriedOut.IsPositive()
}

// advancePhase applies the state machine: accumulating -> retired -> bankrupt. Retirement is
// sticky and bankrupt is terminal.
func (s *simulation) advancePhase(endAge float64, portfolio decimal.Decimal, bankrupt bool) {
	if s.phase == domain.PhaseBankrupt {
		return
	}
	if s.phase == domain.PhaseAccumulating && s.shouldRetire(endAge, portfolio) {
		s.phase = domain.PhaseRetired
		if s.time.RetirementAge == nil {
			age := endAge
			s.time.RetirementAge = &age
		}
		s.logger.Infof("retired at age %.2f with portfolio %s", endAge, portfolio.StringFixed(2))
	}
	if bankrupt {
		s.phase = domain.PhaseBankrupt
		s.logger.Infof("bankrupt at age %.2f with shortfall %s", endAge, s.shortfall.StringFixed(2))
	}
}
