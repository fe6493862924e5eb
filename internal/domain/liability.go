package domain

import "github.com/shopspring/decimal"

// InterestType is the tag for how a debt accrues interest
type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
)

// CompoundingPeriod applies to compound interest only
type CompoundingPeriod string

const (
	CompoundDaily   CompoundingPeriod = "daily"
	CompoundMonthly CompoundingPeriod = "monthly"
)

// Debt is an amortizing liability paid monthly
type Debt struct {
	ID             string            `yaml:"id" json:"id"`
	Name           string            `yaml:"name" json:"name"`
	Balance        decimal.Decimal   `yaml:"balance" json:"balance"`
	MonthlyPayment decimal.Decimal   `yaml:"monthly_payment" json:"monthly_payment"`
	APR            decimal.Decimal   `yaml:"apr" json:"apr"` // fraction, 0.18 = 18%
	InterestType   InterestType      `yaml:"interest_type" json:"interest_type"`
	Compounding    CompoundingPeriod `yaml:"compounding,omitempty" json:"compounding,omitempty"`
	Start          Timepoint         `yaml:"start" json:"start"`
	Disabled       bool              `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// Financing describes the loan used to buy a physical asset
type Financing struct {
	DownPayment decimal.Decimal `yaml:"down_payment" json:"down_payment"`
	LoanAmount  decimal.Decimal `yaml:"loan_amount" json:"loan_amount"`
	APR         decimal.Decimal `yaml:"apr" json:"apr"`
	TermMonths  int             `yaml:"term_months" json:"term_months"`
}

// PhysicalAsset is a house, car or other appreciating/depreciating holding
type PhysicalAsset struct {
	ID               string           `yaml:"id" json:"id"`
	Name             string           `yaml:"name" json:"name"`
	PurchasePrice    decimal.Decimal  `yaml:"purchase_price" json:"purchase_price"`
	MarketValue      *decimal.Decimal `yaml:"market_value,omitempty" json:"market_value,omitempty"`
	AppreciationRate decimal.Decimal  `yaml:"appreciation_rate" json:"appreciation_rate"`
	Purchase         Timepoint        `yaml:"purchase" json:"purchase"`
	Sale             *Timepoint       `yaml:"sale,omitempty" json:"sale,omitempty"`
	Financing        *Financing       `yaml:"financing,omitempty" json:"financing,omitempty"`
}

// InitialMarketValue falls back to the purchase price when no market value is given
func (a PhysicalAsset) InitialMarketValue() decimal.Decimal {
	if a.MarketValue != nil {
		return *a.MarketValue
	}
	return a.PurchasePrice
}

// GlidePath shifts the portfolio-wide bond fraction toward a target by an end timepoint
type GlidePath struct {
	Enabled              bool            `yaml:"enabled" json:"enabled"`
	End                  Timepoint       `yaml:"end" json:"end"`
	TargetBondAllocation decimal.Decimal `yaml:"target_bond_allocation" json:"target_bond_allocation"`
}
