package calculation

import (
	"sort"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// contributionResult summarizes one run of the surplus waterfall
type contributionResult struct {
	used        decimal.Decimal // employee dollars taken from the surplus
	adjustments decimal.Decimal // pre-tax contributions (401k, ira, hsa)
	match       decimal.Decimal
}

// orderedRules returns the enabled rules in ascending rank. It runs once per simulation;
// steps walk the returned slice as is.
func orderedRules(rules []domain.ContributionRule) []domain.ContributionRule {
	out := make([]domain.ContributionRule, 0, len(rules))
	for _, r := range rules {
		if !r.Disabled {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// runContributions walks the ranked rules and deposits as much of the surplus as each rule,
// its limit group, its balance cap and its income restriction allow
func (s *simulation) runContributions(surplus decimal.Decimal, income IncomeTotals, age float64) contributionResult {
	var res contributionResult
	remaining := surplus
	earnedLeft := income.Wages
	groupUsed := map[domain.ContributionLimitGroup]decimal.Decimal{}

	for _, rule := range s.rules {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		acct, ok := s.byID[rule.AccountID]
		if !ok {
			s.logger.Warnf("contribution rule %s targets unknown account %s", rule.ID, rule.AccountID)
			continue
		}
		if rule.MaxBalance != nil && acct.balance.GreaterThanOrEqual(*rule.MaxBalance) {
			continue
		}

		restricted, eligibleWages := remaining, income.Wages
		if len(rule.IncomeIDs) > 0 {
			restricted, eligibleWages = decimal.Zero, decimal.Zero
			for _, id := range rule.IncomeIDs {
				restricted = restricted.Add(income.ByID[id])
				eligibleWages = eligibleWages.Add(income.WagesByID[id])
			}
			if restricted.IsZero() {
				continue
			}
		}

		var amount decimal.Decimal
		switch rule.ContributionType {
		case domain.ContributionDollarAmount:
			amount = rule.DollarAmount
		case domain.ContributionPercentRemaining:
			amount = remaining.Mul(rule.PercentRemaining).Div(hundred)
		default:
			amount = remaining
		}
		amount = decimal.Min(amount, remaining, restricted)

		group := acct.account.Type.LimitGroup()
		if limit, limited := domain.AnnualContributionLimit(group, age); limited {
			amount = decimal.Min(amount, limit.Sub(groupUsed[group]))
		}
		if rule.MaxBalance != nil {
			amount = decimal.Min(amount, rule.MaxBalance.Sub(acct.balance))
		}
		if acct.account.Type.IsRetirementWrapper() {
			amount = decimal.Min(amount, earnedLeft)
		}
		amount = amount.Round(2)

		if amount.IsPositive() {
			acct.deposit(amount)
			remaining = remaining.Sub(amount)
			res.used = res.used.Add(amount)
			groupUsed[group] = groupUsed[group].Add(amount)
			if acct.account.Type.IsRetirementWrapper() {
				earnedLeft = earnedLeft.Sub(amount)
			}
			if acct.category() == domain.TaxCategoryTaxDeferred || acct.account.Type == domain.AccountHSA {
				res.adjustments = res.adjustments.Add(amount)
			}

			if match := EmployerMatchAmount(rule.EmployerMatch, acct.account.Type, amount, eligibleWages); match.IsPositive() {
				acct.balance = acct.balance.Add(match)
				acct.employerMatch = acct.employerMatch.Add(match)
				res.match = res.match.Add(match)
			}
		}

		if rule.ContributionType == domain.ContributionUnlimited {
			break
		}
	}
	return res
}

// EmployerMatchAmount is the employer money added on top of an employee contribution.
// It never exceeds the employee contribution.
func EmployerMatchAmount(m *domain.EmployerMatch, t domain.AccountType, contribution, eligibleWages decimal.Decimal) decimal.Decimal {
	if m == nil || !t.SupportsEmployerMatch() || contribution.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var formula decimal.Decimal
	switch m.Type {
	case domain.MatchPercentSalary:
		matchable := decimal.Min(contribution, eligibleWages.Mul(m.PercentSalary))
		formula = matchable.Mul(m.PercentMatch)
	case domain.MatchFixedDollar:
		formula = m.FixedDollar
	default:
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, decimal.Min(contribution, formula)).Round(2)
}

// savingsSink returns the first savings account, creating an implicit one on first use
func (s *simulation) savingsSink() *accountState {
	for _, a := range s.accounts {
		if a.account.Type == domain.AccountSavings {
			return a
		}
	}
	sink := newAccountState(domain.Account{
		ID:   implicitSavingsID,
		Name: "Savings",
		Type: domain.AccountSavings,
	})
	s.accounts = append(s.accounts, sink)
	s.byID[sink.account.ID] = sink
	return sink
}
