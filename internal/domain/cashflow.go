package domain

import "github.com/shopspring/decimal"

// Frequency describes how often an income or expense amount recurs
type Frequency string

const (
	FrequencyOneTime   Frequency = "oneTime"
	FrequencyYearly    Frequency = "yearly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyWeekly    Frequency = "weekly"
)

// TimesPerYear returns the annual multiplier for a recurring amount.
// One-time items count once in the year they occur.
func (f Frequency) TimesPerYear() (int64, bool) {
	switch f {
	case FrequencyOneTime, FrequencyYearly:
		return 1, true
	case FrequencyQuarterly:
		return 4, true
	case FrequencyMonthly:
		return 12, true
	case FrequencyBiweekly:
		return 26, true
	case FrequencyWeekly:
		return 52, true
	}
	return 0, false
}

// Growth is an optional nominal growth rate with an optional cap (or floor, for negative rates)
type Growth struct {
	Rate  decimal.Decimal  `yaml:"rate" json:"rate"`
	Limit *decimal.Decimal `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// IncomeKind selects the tax treatment of an income stream
type IncomeKind string

const (
	IncomeWage           IncomeKind = "wage"
	IncomeSocialSecurity IncomeKind = "socialSecurity"
	IncomeTaxFree        IncomeKind = "taxFree"
	IncomeOther          IncomeKind = "other" // pensions, rental, annuities: ordinary income without FICA
)

// Income is a recurring or one-time inflow
type Income struct {
	ID        string          `yaml:"id" json:"id"`
	Name      string          `yaml:"name" json:"name"`
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Frequency Frequency       `yaml:"frequency" json:"frequency"`
	Timeframe Timeframe       `yaml:"timeframe" json:"timeframe"`
	Growth    *Growth         `yaml:"growth,omitempty" json:"growth,omitempty"`
	Kind      IncomeKind      `yaml:"kind,omitempty" json:"kind,omitempty"`
	Disabled  bool            `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// EffectiveKind defaults an empty kind to wage income
func (i Income) EffectiveKind() IncomeKind {
	if i.Kind == "" {
		return IncomeWage
	}
	return i.Kind
}

// Expense is a recurring or one-time outflow
type Expense struct {
	ID        string          `yaml:"id" json:"id"`
	Name      string          `yaml:"name" json:"name"`
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Frequency Frequency       `yaml:"frequency" json:"frequency"`
	Timeframe Timeframe       `yaml:"timeframe" json:"timeframe"`
	Growth    *Growth         `yaml:"growth,omitempty" json:"growth,omitempty"`
	Disabled  bool            `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}
