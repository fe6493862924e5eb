package calculation

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/sequencing"
	"github.com/shopspring/decimal"
)

// maxWithdrawalPasses bounds the withdraw-then-retax fixed point of a deficit step. Each pass
// closes the gap by the marginal tax and penalty rate, so the series converges well before this.
const maxWithdrawalPasses = 64

var cent = decimal.New(1, -2)

// rmdDue is a required distribution computed from an account's start-of-year balance
type rmdDue struct {
	account *accountState
	amount  decimal.Decimal
}

// requiredDistributions computes RMDs for the step that begins at age
func (s *simulation) requiredDistributions(age float64) []rmdDue {
	if !s.rmd.Applies(age) {
		return nil
	}
	var due []rmdDue
	for _, a := range s.accounts {
		if !a.account.Type.RequiresRMD() {
			continue
		}
		if amount := s.rmd.CalculateRMD(a.balance, age); amount.IsPositive() {
			due = append(due, rmdDue{account: a, amount: amount})
		}
	}
	return due
}

// takeDistributions debits the RMDs, capped at the current balance, and returns the total
func takeDistributions(due []rmdDue) decimal.Decimal {
	total := decimal.Zero
	for _, d := range due {
		amount := decimal.Min(d.amount, d.account.balance)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		d.account.debit(amount, decimal.Zero)
		d.account.rmd = amount
		total = total.Add(amount)
	}
	return total
}

// withdrawalSources lists every funded account as a sequencing source at the owner's age
func (s *simulation) withdrawalSources(age float64) []sequencing.WithdrawalSource {
	ageDec := decimal.NewFromFloat(age)
	sources := make([]sequencing.WithdrawalSource, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		sources = append(sources, sequencing.SourceForAccount(a.account, a.balance, a.basis, ageDec, s.plan.TaxSettings))
	}
	return sources
}

// applyWithdrawals debits every allocation of a plan
func (s *simulation) applyWithdrawals(plan sequencing.WithdrawalPlan) {
	for _, alloc := range plan.Allocations {
		acct := s.byID[alloc.AccountID]
		acct.debit(alloc.Gross, alloc.BasisUsed)
		acct.realizedGains = acct.realizedGains.Add(alloc.CapitalGainsPortion)
	}
}

// withPlan adds a withdrawal plan's taxable parts to a tax input
func withPlan(in TaxInput, plan sequencing.WithdrawalPlan) TaxInput {
	in.RetirementDistributions = in.RetirementDistributions.Add(plan.EstimatedOrdinaryIncome)
	in.CapitalGains = in.CapitalGains.Add(plan.EstimatedCapitalGains)
	in.EarlyWithdrawals = in.EarlyWithdrawals.Add(plan.EstimatedEarlyPenalized)
	in.EarlyHSAWithdrawals = in.EarlyHSAWithdrawals.Add(plan.EstimatedHSAPenalized)
	return in
}

// deficitOutcome is the result of covering a deficit from the portfolio
type deficitOutcome struct {
	plan     sequencing.WithdrawalPlan
	tax      domain.TaxBreakdown
	required decimal.Decimal // deficit + carried shortfall + the withdrawals' own tax
	passes   int
}

// coverDeficit withdraws enough to pay the deficit, the carried shortfall and the extra tax
// the withdrawals themselves cause. It iterates until the gross-up converges to the cent or the
// sources run dry.
func (s *simulation) coverDeficit(deficit decimal.Decimal, base TaxInput, baseTax domain.TaxBreakdown, age float64) deficitOutcome {
	sources := s.withdrawalSources(age)
	headroom := BracketHeadroom(s.plan.TaxSettings.OrdinaryBrackets, baseTax.TaxableOrdinaryIncome)
	baseOwed := baseTax.TotalTaxAndPenalties()

	out := deficitOutcome{required: deficit.Add(s.shortfall), tax: baseTax}
	need := out.required
	for out.passes < maxWithdrawalPasses {
		out.passes++
		out.plan = s.strategy.Plan(sources, sequencing.StrategyContext{NeedAmount: need, OrdinaryHeadroom: headroom})
		out.tax = s.taxes.Calculate(withPlan(base, out.plan))
		out.required = deficit.Add(s.shortfall).Add(out.tax.TotalTaxAndPenalties().Sub(baseOwed)).Round(2)
		if out.plan.RemainingNeed.IsPositive() || out.required.Sub(need).LessThan(cent) {
			break
		}
		need = out.required
	}
	return out
}

// shortfall is what the portfolio could not source. It is zero unless the sources ran dry.
func (o deficitOutcome) shortfall() decimal.Decimal {
	if !o.plan.RemainingNeed.IsPositive() {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, o.required.Sub(o.plan.TotalSourced))
}
