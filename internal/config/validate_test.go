package config

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorFields(t *testing.T, err error) []string {
	t.Helper()
	var ve domain.ValidationErrors
	require.True(t, errors.As(err, &ve), "expected ValidationErrors, got %v", err)
	fields := make([]string, len(ve))
	for i, e := range ve {
		fields[i] = e.Field
	}
	return fields
}

func TestValidatePlan_Valid(t *testing.T) {
	assert.NoError(t, ValidatePlan(validPlan(t)))
}

func TestValidatePlan_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidatePlan(nil), domain.ErrInvalidInput)
}

func TestValidatePlan_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.PlanInputs)
		field  string
	}{
		{
			name:   "birth month out of range",
			mutate: func(p *domain.PlanInputs) { p.Timeline.BirthMonth = 13 },
			field:  "timeline.birth_month",
		},
		{
			name:   "life expectancy already passed",
			mutate: func(p *domain.PlanInputs) { p.Timeline.LifeExpectancy = 30 },
			field:  "timeline.life_expectancy",
		},
		{
			name:   "retirement after life expectancy",
			mutate: func(p *domain.PlanInputs) { p.Timeline.RetirementStrategy.RetirementAge = 95 },
			field:  "timeline.retirement_strategy.retirement_age",
		},
		{
			name: "swr target without a rate",
			mutate: func(p *domain.PlanInputs) {
				p.Timeline.RetirementStrategy = domain.RetirementStrategy{Type: domain.RetirementSWRTarget}
			},
			field: "timeline.retirement_strategy.safe_withdrawal_rate",
		},
		{
			name:   "duplicate account id",
			mutate: func(p *domain.PlanInputs) { p.Accounts[1].ID = "k" },
			field:  "accounts[1].id",
		},
		{
			name:   "unknown account type",
			mutate: func(p *domain.PlanInputs) { p.Accounts[0].Type = "crypto" },
			field:  "accounts[0].type",
		},
		{
			name:   "negative balance",
			mutate: func(p *domain.PlanInputs) { p.Accounts[1].Balance = dec("-1") },
			field:  "accounts[1].balance",
		},
		{
			name:   "allocation does not sum to one",
			mutate: func(p *domain.PlanInputs) { p.Accounts[0].Allocation.Bonds = dec("0") },
			field:  "accounts[0].allocation",
		},
		{
			name:   "rule for an unknown account",
			mutate: func(p *domain.PlanInputs) { p.ContributionRules[0].AccountID = "nope" },
			field:  "contribution_rules[0].account_id",
		},
		{
			name: "percent remaining over 100",
			mutate: func(p *domain.PlanInputs) {
				p.ContributionRules[0].ContributionType = domain.ContributionPercentRemaining
				p.ContributionRules[0].PercentRemaining = dec("150")
			},
			field: "contribution_rules[0].percent_remaining",
		},
		{
			name:   "employer match on savings",
			mutate: func(p *domain.PlanInputs) { p.ContributionRules[0].AccountID = "sav" },
			field:  "contribution_rules[0].employer_match",
		},
		{
			name:   "rule funded by an unknown income",
			mutate: func(p *domain.PlanInputs) { p.ContributionRules[0].IncomeIDs = []string{"bonus"} },
			field:  "contribution_rules[0].income_ids",
		},
		{
			name: "duplicate rule rank",
			mutate: func(p *domain.PlanInputs) {
				extra := p.ContributionRules[0]
				extra.ID = "r2"
				extra.EmployerMatch = nil
				p.ContributionRules = append(p.ContributionRules, extra)
			},
			field: "contribution_rules[1].rank",
		},
		{
			name: "duplicate rule id",
			mutate: func(p *domain.PlanInputs) {
				extra := p.ContributionRules[0]
				extra.Rank = 2
				extra.EmployerMatch = nil
				p.ContributionRules = append(p.ContributionRules, extra)
			},
			field: "contribution_rules[1].id",
		},
		{
			name:   "unknown base rule",
			mutate: func(p *domain.PlanInputs) { p.BaseRule = "hoard" },
			field:  "base_rule",
		},
		{
			name:   "unknown frequency",
			mutate: func(p *domain.PlanInputs) { p.Expenses[0].Frequency = "fortnightly" },
			field:  "expenses[0].frequency",
		},
		{
			name: "custom date with a bad month",
			mutate: func(p *domain.PlanInputs) {
				end := domain.AtDate(0, 2040)
				p.Incomes[0].Timeframe.End = &end
			},
			field: "incomes[0].timeframe.end.month",
		},
		{
			name: "custom age without an age",
			mutate: func(p *domain.PlanInputs) {
				p.Expenses[0].Timeframe.Start = domain.Timepoint{Type: domain.TimepointCustomAge}
			},
			field: "expenses[0].timeframe.start.age",
		},
		{
			name: "compound debt without compounding",
			mutate: func(p *domain.PlanInputs) {
				p.Debts = []domain.Debt{{ID: "card", Balance: dec("5000"), MonthlyPayment: dec("200"), APR: dec("0.2"),
					InterestType: domain.InterestCompound, Start: domain.Now()}}
			},
			field: "debts[0].compounding",
		},
		{
			name: "financed asset without a term",
			mutate: func(p *domain.PlanInputs) {
				p.PhysicalAssets = []domain.PhysicalAsset{{ID: "car", PurchasePrice: dec("30000"), Purchase: domain.Now(),
					Financing: &domain.Financing{LoanAmount: dec("25000"), APR: dec("0.06")}}}
			},
			field: "physical_assets[0].financing.term_months",
		},
		{
			name: "glide path target above one",
			mutate: func(p *domain.PlanInputs) {
				p.GlidePath = &domain.GlidePath{Enabled: true, End: domain.AtRetirement(), TargetBondAllocation: dec("1.5")}
			},
			field: "glide_path.target_bond_allocation",
		},
		{
			name:   "unknown withdrawal strategy",
			mutate: func(p *domain.PlanInputs) { p.Simulation.WithdrawalStrategy = "yolo" },
			field:  "simulation.withdrawal_strategy",
		},
		{
			name:   "custom strategy without an order",
			mutate: func(p *domain.PlanInputs) { p.Simulation.WithdrawalStrategy = "custom" },
			field:  "simulation.withdrawal_order",
		},
		{
			name: "historical start year before the data",
			mutate: func(p *domain.PlanInputs) {
				year := 1800
				p.Simulation.HistoricalStartYear = &year
			},
			field: "simulation.historical_start_year",
		},
		{
			name:   "unknown mode",
			mutate: func(p *domain.PlanInputs) { p.Simulation.Mode = "quantum" },
			field:  "simulation.mode",
		},
		{
			name:   "unordered tax brackets",
			mutate: func(p *domain.PlanInputs) { p.TaxSettings.OrdinaryBrackets[2].Min = dec("100") },
			field:  "tax_settings.ordinary_brackets[2].min",
		},
		{
			name:   "negative volatility",
			mutate: func(p *domain.PlanInputs) { p.MarketAssumptions.Volatility.Stocks = -0.1 },
			field:  "market_assumptions.volatility.stocks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan(t)
			tt.mutate(plan)

			err := ValidatePlan(plan)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, errorFields(t, err), tt.field)
		})
	}
}

func TestValidatePlan_CollectsEveryError(t *testing.T) {
	plan := validPlan(t)
	plan.Timeline.BirthMonth = 0
	plan.BaseRule = "hoard"
	plan.Accounts[0].Type = "crypto"

	fields := errorFields(t, ValidatePlan(plan))
	assert.Subset(t, fields, []string{"timeline.birth_month", "base_rule", "accounts[0].type"})
	assert.Contains(t, ValidatePlan(plan).Error(), "base_rule: must be")
}
