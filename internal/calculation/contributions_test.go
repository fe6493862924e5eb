package calculation

import (
	"testing"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contributionAccounts() []domain.Account {
	return []domain.Account{
		account("k", domain.Account401k, "0"),
		account("r401k", domain.AccountRoth401k, "0"),
		account("ira", domain.AccountIRA, "0"),
		account("hsa", domain.AccountHSA, "0"),
		account("brk", domain.AccountTaxableBrokerage, "0"),
		account("sav", domain.AccountSavings, "0"),
	}
}

func TestRunContributions(t *testing.T) {
	unlimited := func(acct string, rank int) domain.ContributionRule {
		return domain.ContributionRule{ID: acct, AccountID: acct, Rank: rank, ContributionType: domain.ContributionUnlimited}
	}
	dollars := func(acct string, rank int, amount string) domain.ContributionRule {
		return domain.ContributionRule{ID: acct, AccountID: acct, Rank: rank, ContributionType: domain.ContributionDollarAmount, DollarAmount: dec(amount)}
	}

	tests := []struct {
		name                string
		rules               []domain.ContributionRule
		balances            map[string]string
		surplus             string
		wages               string
		bonus               string
		age                 float64
		expectedDeposits    map[string]string
		expectedUsed        string
		expectedAdjustments string
	}{
		{
			name:                "401k capped at the annual limit",
			rules:               []domain.ContributionRule{unlimited("k", 1)},
			surplus:             "50000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"k": "23500"},
			expectedUsed:        "23500",
			expectedAdjustments: "23500",
		},
		{
			name:                "catch-up limit from 50",
			rules:               []domain.ContributionRule{unlimited("k", 1)},
			surplus:             "50000",
			wages:               "100000",
			age:                 50,
			expectedDeposits:    map[string]string{"k": "31000"},
			expectedUsed:        "31000",
			expectedAdjustments: "31000",
		},
		{
			name:                "ira capped by earned income",
			rules:               []domain.ContributionRule{unlimited("ira", 1)},
			surplus:             "20000",
			wages:               "5000",
			age:                 35,
			expectedDeposits:    map[string]string{"ira": "5000"},
			expectedUsed:        "5000",
			expectedAdjustments: "5000",
		},
		{
			name:                "traditional and roth 401k share a limit",
			rules:               []domain.ContributionRule{dollars("k", 1, "20000"), dollars("r401k", 2, "10000")},
			surplus:             "50000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"k": "20000", "r401k": "3500"},
			expectedUsed:        "23500",
			expectedAdjustments: "20000",
		},
		{
			name: "percent of remaining then unlimited savings",
			rules: []domain.ContributionRule{
				{ID: "half", AccountID: "brk", Rank: 1, ContributionType: domain.ContributionPercentRemaining, PercentRemaining: dec("50")},
				unlimited("sav", 2),
			},
			surplus:             "10000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"brk": "5000", "sav": "5000"},
			expectedUsed:        "10000",
			expectedAdjustments: "0",
		},
		{
			name: "max balance caps the deposit",
			rules: []domain.ContributionRule{
				{ID: "cap", AccountID: "brk", Rank: 1, ContributionType: domain.ContributionDollarAmount, DollarAmount: dec("5000"), MaxBalance: decPtr("10000")},
			},
			balances:            map[string]string{"brk": "9000"},
			surplus:             "10000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"brk": "1000"},
			expectedUsed:        "1000",
			expectedAdjustments: "0",
		},
		{
			name:                "unlimited rule ends evaluation",
			rules:               []domain.ContributionRule{unlimited("k", 1), dollars("brk", 2, "1000")},
			surplus:             "50000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"k": "23500", "brk": "0"},
			expectedUsed:        "23500",
			expectedAdjustments: "23500",
		},
		{
			name: "income restricted rule",
			rules: []domain.ContributionRule{
				{ID: "bonus", AccountID: "brk", Rank: 1, ContributionType: domain.ContributionDollarAmount, DollarAmount: dec("5000"), IncomeIDs: []string{"bonus"}},
			},
			surplus:             "10000",
			wages:               "100000",
			bonus:               "2000",
			age:                 35,
			expectedDeposits:    map[string]string{"brk": "2000"},
			expectedUsed:        "2000",
			expectedAdjustments: "0",
		},
		{
			name:                "rank order wins over slice order",
			rules:               []domain.ContributionRule{unlimited("brk", 2), dollars("sav", 1, "3000")},
			surplus:             "10000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"sav": "3000", "brk": "7000"},
			expectedUsed:        "10000",
			expectedAdjustments: "0",
		},
		{
			name: "disabled rule is skipped",
			rules: []domain.ContributionRule{
				{ID: "off", AccountID: "k", Rank: 1, ContributionType: domain.ContributionUnlimited, Disabled: true},
				unlimited("sav", 2),
			},
			surplus:             "10000",
			wages:               "100000",
			age:                 35,
			expectedDeposits:    map[string]string{"k": "0", "sav": "10000"},
			expectedUsed:        "10000",
			expectedAdjustments: "0",
		},
		{
			name:                "hsa contributions are pre-tax",
			rules:               []domain.ContributionRule{unlimited("hsa", 1)},
			surplus:             "10000",
			wages:               "50000",
			age:                 40,
			expectedDeposits:    map[string]string{"hsa": "4300"},
			expectedUsed:        "4300",
			expectedAdjustments: "4300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := testPlan()
			plan.Accounts = contributionAccounts()
			for i := range plan.Accounts {
				if b, ok := tt.balances[plan.Accounts[i].ID]; ok {
					plan.Accounts[i].Balance = dec(b)
				}
			}
			plan.ContributionRules = tt.rules
			s := newTestSimulation(t, plan)

			income := IncomeTotals{
				Wages:     dec(tt.wages),
				ByID:      map[string]decimal.Decimal{"salary": dec(tt.wages)},
				WagesByID: map[string]decimal.Decimal{"salary": dec(tt.wages)},
			}
			if tt.bonus != "" {
				income.Other = dec(tt.bonus)
				income.ByID["bonus"] = dec(tt.bonus)
			}

			res := s.runContributions(dec(tt.surplus), income, tt.age)
			assertDecimalEqual(t, dec(tt.expectedUsed), res.used)
			assertDecimalEqual(t, dec(tt.expectedAdjustments), res.adjustments)
			for id, want := range tt.expectedDeposits {
				assertDecimalEqual(t, dec(want), s.byID[id].contributions, "account %s", id)
			}
		})
	}
}

func TestRunContributions_EmployerMatch(t *testing.T) {
	plan := testPlan()
	plan.Accounts = contributionAccounts()
	plan.ContributionRules = []domain.ContributionRule{{
		ID:               "k",
		AccountID:        "k",
		Rank:             1,
		ContributionType: domain.ContributionDollarAmount,
		DollarAmount:     dec("10000"),
		EmployerMatch:    &domain.EmployerMatch{Type: domain.MatchPercentSalary, PercentMatch: dec("0.5"), PercentSalary: dec("0.06")},
	}}
	s := newTestSimulation(t, plan)
	income := IncomeTotals{Wages: dec("100000"), ByID: map[string]decimal.Decimal{}, WagesByID: map[string]decimal.Decimal{}}

	res := s.runContributions(dec("20000"), income, 35)
	k := s.byID["k"]
	assertDecimalEqual(t, dec("10000"), res.used, "match is not taken from the surplus")
	assertDecimalEqual(t, dec("3000"), res.match)
	assertDecimalEqual(t, dec("3000"), k.employerMatch)
	assertDecimalEqual(t, dec("13000"), k.balance)
	assertDecimalEqual(t, dec("10000"), k.contributions)
}

func TestEmployerMatchAmount(t *testing.T) {
	tests := []struct {
		name         string
		match        *domain.EmployerMatch
		accountType  domain.AccountType
		contribution string
		wages        string
		expected     string
	}{
		{name: "no match", match: nil, accountType: domain.Account401k, contribution: "10000", wages: "100000", expected: "0"},
		{name: "percent of salary", match: &domain.EmployerMatch{Type: domain.MatchPercentSalary, PercentMatch: dec("0.5"), PercentSalary: dec("0.06")}, accountType: domain.Account401k, contribution: "10000", wages: "100000", expected: "3000"},
		{name: "full match below salary cap", match: &domain.EmployerMatch{Type: domain.MatchPercentSalary, PercentMatch: dec("1"), PercentSalary: dec("0.06")}, accountType: domain.Account401k, contribution: "4000", wages: "100000", expected: "4000"},
		{name: "fixed dollar capped at contribution", match: &domain.EmployerMatch{Type: domain.MatchFixedDollar, FixedDollar: dec("5000")}, accountType: domain.AccountHSA, contribution: "2000", wages: "100000", expected: "2000"},
		{name: "fixed dollar", match: &domain.EmployerMatch{Type: domain.MatchFixedDollar, FixedDollar: dec("1500")}, accountType: domain.AccountRoth401k, contribution: "2000", wages: "100000", expected: "1500"},
		{name: "ira has no match", match: &domain.EmployerMatch{Type: domain.MatchFixedDollar, FixedDollar: dec("1500")}, accountType: domain.AccountIRA, contribution: "2000", wages: "100000", expected: "0"},
		{name: "none type", match: &domain.EmployerMatch{Type: domain.MatchNone}, accountType: domain.Account401k, contribution: "2000", wages: "100000", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmployerMatchAmount(tt.match, tt.accountType, dec(tt.contribution), dec(tt.wages))
			assertDecimalEqual(t, dec(tt.expected), got)
		})
	}
}

func TestSavingsSink(t *testing.T) {
	plan := testPlan()
	plan.Accounts = []domain.Account{account("brk", domain.AccountTaxableBrokerage, "100")}
	s := newTestSimulation(t, plan)

	sink := s.savingsSink()
	assert.Equal(t, implicitSavingsID, sink.account.ID)
	assert.Len(t, s.accounts, 2)
	assert.Same(t, sink, s.savingsSink(), "the implicit account is created once")

	plan.Accounts = append(plan.Accounts, account("sav", domain.AccountSavings, "0"))
	s = newTestSimulation(t, plan)
	assert.Equal(t, "sav", s.savingsSink().account.ID)
}

func TestOrderedRules(t *testing.T) {
	rules := []domain.ContributionRule{
		{ID: "c", Rank: 3},
		{ID: "off", Rank: 0, Disabled: true},
		{ID: "a", Rank: 1},
		{ID: "b", Rank: 2},
	}
	ordered := orderedRules(rules)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ordered[0].ID, ordered[1].ID, ordered[2].ID})
	assert.Equal(t, "c", rules[0].ID, "the plan's slice is left alone")
}
