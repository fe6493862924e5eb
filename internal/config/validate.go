package config

import (
	"fmt"

	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/sequencing"
	"github.com/shopspring/decimal"
)

const minimumBirthYear = 1900

var (
	one             = decimal.NewFromInt(1)
	hundred         = decimal.NewFromInt(100)
	allocationSlack = decimal.RequireFromString("0.0001")
)

// validator accumulates every problem found in one pass
type validator struct {
	errs domain.ValidationErrors
}

func (v *validator) add(field, format string, args ...any) {
	v.errs = append(v.errs, domain.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) nonNegative(field string, d decimal.Decimal) {
	if d.IsNegative() {
		v.add(field, "must not be negative, got %s", d.String())
	}
}

func (v *validator) fraction(field string, d decimal.Decimal) {
	if d.IsNegative() || d.GreaterThan(one) {
		v.add(field, "must be between 0 and 1, got %s", d.String())
	}
}

// ValidatePlan checks a plan before any run starts. It returns domain.ValidationErrors,
// which matches domain.ErrInvalidInput with errors.Is.
func ValidatePlan(plan *domain.PlanInputs) error {
	if plan == nil {
		return domain.ValidationErrors{{Field: "plan", Message: "is required"}}
	}

	v := &validator{}
	v.timeline(plan.Timeline)

	accounts := make(map[string]domain.Account, len(plan.Accounts))
	for i, a := range plan.Accounts {
		field := fmt.Sprintf("accounts[%d]", i)
		if a.ID == "" {
			v.add(field+".id", "is required")
		} else if _, dup := accounts[a.ID]; dup {
			v.add(field+".id", "duplicate account id %q", a.ID)
		}
		accounts[a.ID] = a
		v.account(field, a)
	}

	incomes := make(map[string]bool, len(plan.Incomes))
	for i, in := range plan.Incomes {
		field := fmt.Sprintf("incomes[%d]", i)
		v.uniqueID(field, in.ID, incomes)
		v.cashFlow(field, in.Amount, in.Frequency, in.Timeframe, in.Growth)
		switch in.Kind {
		case "", domain.IncomeWage, domain.IncomeSocialSecurity, domain.IncomeTaxFree, domain.IncomeOther:
		default:
			v.add(field+".kind", "unknown income kind %q", in.Kind)
		}
	}

	expenses := make(map[string]bool, len(plan.Expenses))
	for i, ex := range plan.Expenses {
		field := fmt.Sprintf("expenses[%d]", i)
		v.uniqueID(field, ex.ID, expenses)
		v.cashFlow(field, ex.Amount, ex.Frequency, ex.Timeframe, ex.Growth)
	}

	rules := make(map[string]bool, len(plan.ContributionRules))
	ranks := make(map[int]string, len(plan.ContributionRules))
	for i, r := range plan.ContributionRules {
		field := fmt.Sprintf("contribution_rules[%d]", i)
		v.uniqueID(field, r.ID, rules)
		if other, dup := ranks[r.Rank]; dup {
			v.add(field+".rank", "rank %d is already used by rule %q", r.Rank, other)
		} else {
			ranks[r.Rank] = r.ID
		}
		v.contributionRule(field, r, accounts, incomes)
	}

	switch plan.BaseRule {
	case domain.BaseRuleSave, domain.BaseRuleSpend:
	default:
		v.add("base_rule", "must be %q or %q, got %q", domain.BaseRuleSave, domain.BaseRuleSpend, plan.BaseRule)
	}

	debts := make(map[string]bool, len(plan.Debts))
	for i, d := range plan.Debts {
		v.debt(fmt.Sprintf("debts[%d]", i), d, debts)
	}

	assets := make(map[string]bool, len(plan.PhysicalAssets))
	for i, a := range plan.PhysicalAssets {
		v.asset(fmt.Sprintf("physical_assets[%d]", i), a, assets)
	}

	if gp := plan.GlidePath; gp != nil && gp.Enabled {
		v.timepoint("glide_path.end", gp.End)
		v.fraction("glide_path.target_bond_allocation", gp.TargetBondAllocation)
	}

	v.taxSettings(plan.TaxSettings)
	v.market(plan.MarketAssumptions)
	v.simulation(plan.Simulation, accounts)

	if len(v.errs) > 0 {
		return v.errs
	}
	return nil
}

func (v *validator) uniqueID(field, id string, seen map[string]bool) {
	if id == "" {
		v.add(field+".id", "is required")
		return
	}
	if seen[id] {
		v.add(field+".id", "duplicate id %q", id)
	}
	seen[id] = true
}

func (v *validator) timeline(tl domain.Timeline) {
	if tl.BirthMonth < 1 || tl.BirthMonth > 12 {
		v.add("timeline.birth_month", "must be 1-12, got %d", tl.BirthMonth)
	}
	if tl.BirthYear < minimumBirthYear {
		v.add("timeline.birth_year", "must be %d or later, got %d", minimumBirthYear, tl.BirthYear)
	}
	current := tl.CurrentAge()
	if tl.LifeExpectancy <= current {
		v.add("timeline.life_expectancy", "must be greater than the current age %.2f, got %.2f", current, tl.LifeExpectancy)
	}

	rs := tl.RetirementStrategy
	switch rs.Type {
	case domain.RetirementFixedAge:
		if rs.RetirementAge <= 0 {
			v.add("timeline.retirement_strategy.retirement_age", "must be positive")
		} else if rs.RetirementAge > tl.LifeExpectancy {
			v.add("timeline.retirement_strategy.retirement_age", "%.2f is past life expectancy %.2f", rs.RetirementAge, tl.LifeExpectancy)
		}
	case domain.RetirementSWRTarget:
		if !rs.SafeWithdrawalRate.IsPositive() || rs.SafeWithdrawalRate.GreaterThan(one) {
			v.add("timeline.retirement_strategy.safe_withdrawal_rate", "must be in (0, 1], got %s", rs.SafeWithdrawalRate.String())
		}
	default:
		v.add("timeline.retirement_strategy.type", "unknown retirement strategy %q", rs.Type)
	}
}

func (v *validator) account(field string, a domain.Account) {
	if !a.Type.Valid() {
		v.add(field+".type", "unknown account type %q", a.Type)
	}
	v.nonNegative(field+".balance", a.Balance)
	v.nonNegative(field+".cost_basis", a.CostBasis)
	v.nonNegative(field+".contribution_basis", a.ContributionBasis)

	if a.Type == domain.AccountSavings || a.Allocation.Total().IsZero() {
		return
	}
	v.fraction(field+".allocation.stocks", a.Allocation.Stocks)
	v.fraction(field+".allocation.bonds", a.Allocation.Bonds)
	v.fraction(field+".allocation.cash", a.Allocation.Cash)
	if a.Allocation.Total().Sub(one).Abs().GreaterThan(allocationSlack) {
		v.add(field+".allocation", "fractions must sum to 1, got %s", a.Allocation.Total().String())
	}
}

func (v *validator) cashFlow(field string, amount decimal.Decimal, freq domain.Frequency, tf domain.Timeframe, growth *domain.Growth) {
	v.nonNegative(field+".amount", amount)
	if _, ok := freq.TimesPerYear(); !ok {
		v.add(field+".frequency", "unknown frequency %q", freq)
	}
	v.timepoint(field+".timeframe.start", tf.Start)
	if tf.End != nil {
		v.timepoint(field+".timeframe.end", *tf.End)
	}
	if growth != nil && growth.Rate.LessThanOrEqual(one.Neg()) {
		v.add(field+".growth.rate", "must be greater than -1, got %s", growth.Rate.String())
	}
}

func (v *validator) timepoint(field string, tp domain.Timepoint) {
	switch tp.Type {
	case domain.TimepointNow, domain.TimepointAtRetirement, domain.TimepointAtLifeExpectancy:
	case domain.TimepointCustomAge:
		if tp.Age == nil || *tp.Age < 0 {
			v.add(field+".age", "customAge needs a non-negative age")
		}
	case domain.TimepointCustomDate:
		if tp.Month < 1 || tp.Month > 12 {
			v.add(field+".month", "must be 1-12, got %d", tp.Month)
		}
		if tp.Year < minimumBirthYear {
			v.add(field+".year", "must be %d or later, got %d", minimumBirthYear, tp.Year)
		}
	default:
		v.add(field+".type", "unknown timepoint type %q", tp.Type)
	}
}

func (v *validator) contributionRule(field string, r domain.ContributionRule, accounts map[string]domain.Account, incomes map[string]bool) {
	acct, ok := accounts[r.AccountID]
	if !ok {
		v.add(field+".account_id", "unknown account %q", r.AccountID)
	}

	switch r.ContributionType {
	case domain.ContributionDollarAmount:
		v.nonNegative(field+".dollar_amount", r.DollarAmount)
	case domain.ContributionPercentRemaining:
		if r.PercentRemaining.IsNegative() || r.PercentRemaining.GreaterThan(hundred) {
			v.add(field+".percent_remaining", "must be between 0 and 100, got %s", r.PercentRemaining.String())
		}
	case domain.ContributionUnlimited:
	default:
		v.add(field+".contribution_type", "unknown contribution type %q", r.ContributionType)
	}

	if r.MaxBalance != nil {
		v.nonNegative(field+".max_balance", *r.MaxBalance)
	}
	for _, id := range r.IncomeIDs {
		if !incomes[id] {
			v.add(field+".income_ids", "unknown income %q", id)
		}
	}

	m := r.EmployerMatch
	if m == nil || m.Type == domain.MatchNone || m.Type == "" {
		return
	}
	if ok && !acct.Type.SupportsEmployerMatch() {
		v.add(field+".employer_match", "account type %q does not take an employer match", acct.Type)
	}
	switch m.Type {
	case domain.MatchPercentSalary:
		v.nonNegative(field+".employer_match.percent_match", m.PercentMatch)
		v.fraction(field+".employer_match.percent_salary", m.PercentSalary)
	case domain.MatchFixedDollar:
		v.nonNegative(field+".employer_match.fixed_dollar", m.FixedDollar)
	default:
		v.add(field+".employer_match.type", "unknown employer match %q", m.Type)
	}
}

func (v *validator) debt(field string, d domain.Debt, seen map[string]bool) {
	v.uniqueID(field, d.ID, seen)
	v.nonNegative(field+".balance", d.Balance)
	v.nonNegative(field+".monthly_payment", d.MonthlyPayment)
	v.nonNegative(field+".apr", d.APR)
	switch d.InterestType {
	case domain.InterestSimple:
	case domain.InterestCompound:
		switch d.Compounding {
		case domain.CompoundDaily, domain.CompoundMonthly:
		default:
			v.add(field+".compounding", "compound interest needs daily or monthly compounding, got %q", d.Compounding)
		}
	default:
		v.add(field+".interest_type", "unknown interest type %q", d.InterestType)
	}
	v.timepoint(field+".start", d.Start)
}

func (v *validator) asset(field string, a domain.PhysicalAsset, seen map[string]bool) {
	v.uniqueID(field, a.ID, seen)
	v.nonNegative(field+".purchase_price", a.PurchasePrice)
	if a.MarketValue != nil {
		v.nonNegative(field+".market_value", *a.MarketValue)
	}
	if a.AppreciationRate.LessThanOrEqual(one.Neg()) {
		v.add(field+".appreciation_rate", "must be greater than -1, got %s", a.AppreciationRate.String())
	}
	v.timepoint(field+".purchase", a.Purchase)
	if a.Sale != nil {
		v.timepoint(field+".sale", *a.Sale)
	}
	if f := a.Financing; f != nil {
		v.nonNegative(field+".financing.down_payment", f.DownPayment)
		v.nonNegative(field+".financing.loan_amount", f.LoanAmount)
		v.nonNegative(field+".financing.apr", f.APR)
		if f.LoanAmount.IsPositive() && f.TermMonths <= 0 {
			v.add(field+".financing.term_months", "must be positive when a loan is taken")
		}
	}
}

func (v *validator) brackets(field string, brackets []domain.TaxBracket) {
	if len(brackets) == 0 {
		v.add(field, "at least one bracket is required")
		return
	}
	for i, b := range brackets {
		f := fmt.Sprintf("%s[%d]", field, i)
		v.fraction(f+".rate", b.Rate)
		v.nonNegative(f+".min", b.Min)
		if i > 0 && !b.Min.GreaterThan(brackets[i-1].Min) {
			v.add(f+".min", "brackets must be in ascending order")
		}
	}
}

func (v *validator) taxSettings(ts domain.TaxSettings) {
	v.brackets("tax_settings.ordinary_brackets", ts.OrdinaryBrackets)
	v.brackets("tax_settings.capital_gains_brackets", ts.CapitalGainsBrackets)
	v.nonNegative("tax_settings.standard_deduction", ts.StandardDeduction)
	v.nonNegative("tax_settings.capital_loss_limit", ts.CapitalLossLimit)
	v.fraction("tax_settings.social_security_rate", ts.SocialSecurityRate)
	v.fraction("tax_settings.medicare_rate", ts.MedicareRate)
	v.fraction("tax_settings.niit_rate", ts.NIITRate)
	v.fraction("tax_settings.early_withdrawal_penalty_rate", ts.EarlyWithdrawalPenaltyRate)
	v.fraction("tax_settings.hsa_penalty_rate", ts.HSAPenaltyRate)
	v.fraction("tax_settings.ss_max_taxable_fraction", ts.SSMaxTaxableFraction)
	if ts.RMDStartAge <= 0 {
		v.add("tax_settings.rmd_start_age", "must be positive")
	}
}

func (v *validator) market(m domain.MarketAssumptions) {
	if m.InflationRate.LessThanOrEqual(one.Neg()) {
		v.add("market_assumptions.inflation_rate", "must be greater than -1")
	}
	v.nonNegative("market_assumptions.stock_yield", m.StockYield)
	v.nonNegative("market_assumptions.bond_yield", m.BondYield)
	vols := []struct {
		name  string
		value float64
	}{
		{"stocks", m.Volatility.Stocks},
		{"bonds", m.Volatility.Bonds},
		{"cash", m.Volatility.Cash},
		{"inflation", m.Volatility.Inflation},
		{"bond_yield", m.Volatility.BondYield},
		{"stock_yield", m.Volatility.StockYield},
	}
	for _, vol := range vols {
		if vol.value < 0 {
			v.add("market_assumptions.volatility."+vol.name, "must not be negative")
		}
	}
}

func (v *validator) simulation(sim domain.SimulationSettings, accounts map[string]domain.Account) {
	switch sim.Mode {
	case domain.ModeFixed, domain.ModeStochastic, domain.ModeHistorical, domain.ModeHistoricalBacktest:
	default:
		v.add("simulation.mode", "unknown simulation mode %q", sim.Mode)
	}
	if sim.Trials < 0 {
		v.add("simulation.trials", "must not be negative")
	}
	if !sequencing.KnownStrategy(sim.WithdrawalStrategy) {
		v.add("simulation.withdrawal_strategy", "unknown withdrawal strategy %q", sim.WithdrawalStrategy)
	}
	for _, id := range sim.WithdrawalOrder {
		if _, ok := accounts[id]; !ok {
			v.add("simulation.withdrawal_order", "unknown account %q", id)
		}
	}
	if sim.WithdrawalStrategy == sequencing.StrategyCustom && len(sim.WithdrawalOrder) == 0 {
		v.add("simulation.withdrawal_order", "the custom strategy needs an account order")
	}

	if sim.HistoricalStartYear == nil && sim.RetirementStartYear == nil {
		return
	}
	first, last, err := calculation.HistoricalYearRange()
	if err != nil {
		v.add("simulation", "historical data unavailable: %v", err)
		return
	}
	if y := sim.HistoricalStartYear; y != nil && (*y < first || *y > last) {
		v.add("simulation.historical_start_year", "must be within %d-%d, got %d", first, last, *y)
	}
	if y := sim.RetirementStartYear; y != nil && (*y < first || *y > last) {
		v.add("simulation.retirement_start_year", "must be within %d-%d, got %d", first, last, *y)
	}
}
