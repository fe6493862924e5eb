package domain

import "github.com/shopspring/decimal"

// TaxBracket is one band of a progressive schedule. Brackets are ordered ascending by Min;
// each band ends where the next one begins.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// TaxSettings carries every table and threshold the tax calculator reads
type TaxSettings struct {
	OrdinaryBrackets     []TaxBracket    `yaml:"ordinary_brackets" json:"ordinary_brackets"`
	CapitalGainsBrackets []TaxBracket    `yaml:"capital_gains_brackets" json:"capital_gains_brackets"`
	StandardDeduction    decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"`
	CapitalLossLimit     decimal.Decimal `yaml:"capital_loss_limit" json:"capital_loss_limit"`

	SocialSecurityRate decimal.Decimal `yaml:"social_security_rate" json:"social_security_rate"`
	SocialSecurityBase decimal.Decimal `yaml:"social_security_wage_base" json:"social_security_wage_base"`
	MedicareRate       decimal.Decimal `yaml:"medicare_rate" json:"medicare_rate"`

	NIITThreshold decimal.Decimal `yaml:"niit_threshold" json:"niit_threshold"`
	NIITRate      decimal.Decimal `yaml:"niit_rate" json:"niit_rate"`

	EarlyWithdrawalPenaltyRate decimal.Decimal `yaml:"early_withdrawal_penalty_rate" json:"early_withdrawal_penalty_rate"`
	EarlyWithdrawalAge         decimal.Decimal `yaml:"early_withdrawal_age" json:"early_withdrawal_age"`
	HSAPenaltyRate             decimal.Decimal `yaml:"hsa_penalty_rate" json:"hsa_penalty_rate"`
	HSAPenaltyAge              decimal.Decimal `yaml:"hsa_penalty_age" json:"hsa_penalty_age"`

	SSProvisionalThreshold1 decimal.Decimal `yaml:"ss_provisional_threshold_1" json:"ss_provisional_threshold_1"`
	SSProvisionalThreshold2 decimal.Decimal `yaml:"ss_provisional_threshold_2" json:"ss_provisional_threshold_2"`
	SSMaxTaxableFraction    decimal.Decimal `yaml:"ss_max_taxable_fraction" json:"ss_max_taxable_fraction"`

	RMDStartAge int `yaml:"rmd_start_age" json:"rmd_start_age"`
}

func bracket(min int64, rate string) TaxBracket {
	return TaxBracket{Min: decimal.NewFromInt(min), Rate: decimal.RequireFromString(rate)}
}

// DefaultTaxSettings returns the single-filer 2025 federal tables
func DefaultTaxSettings() TaxSettings {
	return TaxSettings{
		OrdinaryBrackets: []TaxBracket{
			bracket(0, "0.10"),
			bracket(11925, "0.12"),
			bracket(48475, "0.22"),
			bracket(103350, "0.24"),
			bracket(197300, "0.32"),
			bracket(250525, "0.35"),
			bracket(626350, "0.37"),
		},
		CapitalGainsBrackets: []TaxBracket{
			bracket(0, "0"),
			bracket(47025, "0.15"),
			bracket(518900, "0.20"),
		},
		StandardDeduction:          decimal.NewFromInt(15000),
		CapitalLossLimit:           decimal.NewFromInt(3000),
		SocialSecurityRate:         decimal.RequireFromString("0.062"),
		SocialSecurityBase:         decimal.NewFromInt(176100),
		MedicareRate:               decimal.RequireFromString("0.0145"),
		NIITThreshold:              decimal.NewFromInt(200000),
		NIITRate:                   decimal.RequireFromString("0.038"),
		EarlyWithdrawalPenaltyRate: decimal.RequireFromString("0.10"),
		EarlyWithdrawalAge:         decimal.RequireFromString("59.5"),
		HSAPenaltyRate:             decimal.RequireFromString("0.20"),
		HSAPenaltyAge:              decimal.NewFromInt(65),
		SSProvisionalThreshold1:    decimal.NewFromInt(25000),
		SSProvisionalThreshold2:    decimal.NewFromInt(34000),
		SSMaxTaxableFraction:       decimal.RequireFromString("0.85"),
		RMDStartAge:                73,
	}
}

// TaxBreakdown is the full result of one year's tax calculation
type TaxBreakdown struct {
	GrossIncome              decimal.Decimal `json:"gross_income"`
	AGI                      decimal.Decimal `json:"agi"`
	TaxableOrdinaryIncome    decimal.Decimal `json:"taxable_ordinary_income"`
	TaxableCapitalGains      decimal.Decimal `json:"taxable_capital_gains"`
	TaxableIncome            decimal.Decimal `json:"taxable_income"`
	TaxableSocialSecurity    decimal.Decimal `json:"taxable_social_security"`
	OrdinaryIncomeTax        decimal.Decimal `json:"ordinary_income_tax"`
	CapitalGainsTax          decimal.Decimal `json:"capital_gains_tax"`
	FICA                     decimal.Decimal `json:"fica"`
	NIIT                     decimal.Decimal `json:"niit"`
	EarlyWithdrawalPenalties decimal.Decimal `json:"early_withdrawal_penalties"`
	MarginalRate             decimal.Decimal `json:"marginal_rate"`
	EffectiveRate            decimal.Decimal `json:"effective_rate"`
	TotalTax                 decimal.Decimal `json:"total_tax"`
	CapitalLossCarryover     decimal.Decimal `json:"capital_loss_carryover"`
}

// TotalTaxAndPenalties is what the household pays for the year
func (t TaxBreakdown) TotalTaxAndPenalties() decimal.Decimal {
	return t.TotalTax.Add(t.EarlyWithdrawalPenalties)
}
