package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RetirementStrategyType is the tag of the retirement trigger
type RetirementStrategyType string

const (
	RetirementFixedAge  RetirementStrategyType = "fixedAge"
	RetirementSWRTarget RetirementStrategyType = "swrTarget"
)

// RetirementStrategy decides when the household stops accumulating.
// RetirementAge is used by fixedAge, SafeWithdrawalRate (fraction) by swrTarget.
type RetirementStrategy struct {
	Type               RetirementStrategyType `yaml:"type" json:"type"`
	RetirementAge      float64                `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty"`
	SafeWithdrawalRate decimal.Decimal        `yaml:"safe_withdrawal_rate,omitempty" json:"safe_withdrawal_rate,omitempty"`
}

// Timeline places the household in time
type Timeline struct {
	BirthMonth         int                `yaml:"birth_month" json:"birth_month"`
	BirthYear          int                `yaml:"birth_year" json:"birth_year"`
	LifeExpectancy     float64            `yaml:"life_expectancy" json:"life_expectancy"`
	RetirementStrategy RetirementStrategy `yaml:"retirement_strategy" json:"retirement_strategy"`

	// AsOf pins "today" so that runs are reproducible. Defaults to the load time.
	AsOf *time.Time `yaml:"as_of,omitempty" json:"as_of,omitempty"`
}

// CurrentAge returns the household's precise age (years plus months/12) at AsOf
func (t Timeline) CurrentAge() float64 {
	asOf := time.Now()
	if t.AsOf != nil {
		asOf = *t.AsOf
	}
	age := float64(asOf.Year()-t.BirthYear) + float64(int(asOf.Month())-t.BirthMonth)/12
	if age < 0 {
		return 0
	}
	return age
}

// MarketAssumptions holds nominal expected returns, yields and volatilities (all fractions)
type MarketAssumptions struct {
	StockReturn   decimal.Decimal `yaml:"stock_return" json:"stock_return"`
	BondReturn    decimal.Decimal `yaml:"bond_return" json:"bond_return"`
	CashReturn    decimal.Decimal `yaml:"cash_return" json:"cash_return"`
	InflationRate decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
	StockYield    decimal.Decimal `yaml:"stock_yield" json:"stock_yield"`
	BondYield     decimal.Decimal `yaml:"bond_yield" json:"bond_yield"`

	Volatility Volatility `yaml:"volatility" json:"volatility"`
}

// Volatility is the annual standard deviation of each stochastic series
type Volatility struct {
	Stocks     float64 `yaml:"stocks" json:"stocks"`
	Bonds      float64 `yaml:"bonds" json:"bonds"`
	Cash       float64 `yaml:"cash" json:"cash"`
	Inflation  float64 `yaml:"inflation" json:"inflation"`
	BondYield  float64 `yaml:"bond_yield" json:"bond_yield"`
	StockYield float64 `yaml:"stock_yield" json:"stock_yield"`
}

// DefaultMarketAssumptions mirrors long-run US averages
func DefaultMarketAssumptions() MarketAssumptions {
	return MarketAssumptions{
		StockReturn:   decimal.RequireFromString("0.10"),
		BondReturn:    decimal.RequireFromString("0.05"),
		CashReturn:    decimal.RequireFromString("0.03"),
		InflationRate: decimal.RequireFromString("0.03"),
		StockYield:    decimal.RequireFromString("0.035"),
		BondYield:     decimal.RequireFromString("0.045"),
		Volatility: Volatility{
			Stocks:     0.18,
			Bonds:      0.06,
			Cash:       0.03,
			Inflation:  0.04,
			BondYield:  0.015,
			StockYield: 0.01,
		},
	}
}

// SimulationMode selects the return model
type SimulationMode string

const (
	ModeFixed              SimulationMode = "fixed"
	ModeStochastic         SimulationMode = "stochastic"
	ModeHistorical         SimulationMode = "historical"
	ModeHistoricalBacktest SimulationMode = "historicalBacktest"
)

// SimulationSettings controls how a plan is run
type SimulationSettings struct {
	Mode   SimulationMode `yaml:"mode" json:"mode"`
	Seed   int64          `yaml:"seed" json:"seed"`
	Trials int            `yaml:"trials" json:"trials"`

	// WithdrawalStrategy names a sequencing strategy: standard, cash_first,
	// tax_deferred_first, bracket_fill or custom
	WithdrawalStrategy string   `yaml:"withdrawal_strategy,omitempty" json:"withdrawal_strategy,omitempty"`
	WithdrawalOrder    []string `yaml:"withdrawal_order,omitempty" json:"withdrawal_order,omitempty"` // account IDs, custom only

	// HistoricalStartYear pins the first historical year; RetirementStartYear jumps the
	// sequence to a chosen year once the household retires (sequence-of-returns stress).
	HistoricalStartYear *int `yaml:"historical_start_year,omitempty" json:"historical_start_year,omitempty"`
	RetirementStartYear *int `yaml:"retirement_start_year,omitempty" json:"retirement_start_year,omitempty"`
}

// PlanInputs is the complete, read-only snapshot handed to the engine
type PlanInputs struct {
	Name              string               `yaml:"name" json:"name"`
	Timeline          Timeline             `yaml:"timeline" json:"timeline"`
	Accounts          []Account            `yaml:"accounts" json:"accounts"`
	ContributionRules []ContributionRule   `yaml:"contribution_rules" json:"contribution_rules"`
	BaseRule          BaseContributionRule `yaml:"base_rule" json:"base_rule"`
	Incomes           []Income             `yaml:"incomes" json:"incomes"`
	Expenses          []Expense            `yaml:"expenses" json:"expenses"`
	Debts             []Debt               `yaml:"debts" json:"debts"`
	PhysicalAssets    []PhysicalAsset      `yaml:"physical_assets" json:"physical_assets"`
	GlidePath         *GlidePath           `yaml:"glide_path,omitempty" json:"glide_path,omitempty"`
	TaxSettings       TaxSettings          `yaml:"tax_settings" json:"tax_settings"`
	MarketAssumptions MarketAssumptions    `yaml:"market_assumptions" json:"market_assumptions"`
	Simulation        SimulationSettings   `yaml:"simulation" json:"simulation"`
}

// FindAccount returns the account with the given ID
func (p *PlanInputs) FindAccount(id string) (*Account, bool) {
	for i := range p.Accounts {
		if p.Accounts[i].ID == id {
			return &p.Accounts[i], true
		}
	}
	return nil, false
}
