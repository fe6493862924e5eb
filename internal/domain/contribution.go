package domain

import "github.com/shopspring/decimal"

// ContributionType is the tag of a contribution rule's cap
type ContributionType string

const (
	ContributionDollarAmount     ContributionType = "dollarAmount"
	ContributionPercentRemaining ContributionType = "percentRemaining"
	ContributionUnlimited        ContributionType = "unlimited"
)

// EmployerMatchType is the tag of an employer match formula
type EmployerMatchType string

const (
	MatchNone          EmployerMatchType = "none"
	MatchPercentSalary EmployerMatchType = "percentSalary"
	MatchFixedDollar   EmployerMatchType = "fixedDollar"
)

// EmployerMatch describes employer money added on top of an employee contribution.
// percentSalary matches PercentMatch of contributions up to PercentSalary of eligible wages.
type EmployerMatch struct {
	Type          EmployerMatchType `yaml:"type" json:"type"`
	PercentMatch  decimal.Decimal   `yaml:"percent_match,omitempty" json:"percent_match,omitempty"`
	PercentSalary decimal.Decimal   `yaml:"percent_salary,omitempty" json:"percent_salary,omitempty"`
	FixedDollar   decimal.Decimal   `yaml:"fixed_dollar,omitempty" json:"fixed_dollar,omitempty"`
}

// ContributionRule routes surplus cash into one account.
// Rules are evaluated in ascending Rank, which is unique per plan.
type ContributionRule struct {
	ID               string           `yaml:"id" json:"id"`
	AccountID        string           `yaml:"account_id" json:"account_id"`
	Rank             int              `yaml:"rank" json:"rank"`
	ContributionType ContributionType `yaml:"contribution_type" json:"contribution_type"`
	DollarAmount     decimal.Decimal  `yaml:"dollar_amount,omitempty" json:"dollar_amount,omitempty"`
	PercentRemaining decimal.Decimal  `yaml:"percent_remaining,omitempty" json:"percent_remaining,omitempty"` // 0-100
	MaxBalance       *decimal.Decimal `yaml:"max_balance,omitempty" json:"max_balance,omitempty"`
	EmployerMatch    *EmployerMatch   `yaml:"employer_match,omitempty" json:"employer_match,omitempty"`
	IncomeIDs        []string         `yaml:"income_ids,omitempty" json:"income_ids,omitempty"`
	Disabled         bool             `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// BaseContributionRule decides what happens to surplus left after every ranked rule
type BaseContributionRule string

const (
	BaseRuleSpend BaseContributionRule = "spend"
	BaseRuleSave  BaseContributionRule = "save"
)
