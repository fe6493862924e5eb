package domain

import "github.com/shopspring/decimal"

// AccountType identifies the legal wrapper of an investment account
type AccountType string

const (
	AccountTaxableBrokerage AccountType = "taxableBrokerage"
	Account401k             AccountType = "401k"
	AccountIRA              AccountType = "ira"
	AccountRoth401k         AccountType = "roth401k"
	AccountRothIRA          AccountType = "rothIra"
	AccountHSA              AccountType = "hsa"
	AccountSavings          AccountType = "savings"
)

// TaxCategory governs contribution, growth and withdrawal treatment
type TaxCategory string

const (
	TaxCategoryTaxable     TaxCategory = "taxable"
	TaxCategoryTaxDeferred TaxCategory = "taxDeferred"
	TaxCategoryTaxFree     TaxCategory = "taxFree"
	TaxCategoryCashSavings TaxCategory = "cashSavings"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case AccountTaxableBrokerage, Account401k, AccountIRA, AccountRoth401k, AccountRothIRA, AccountHSA, AccountSavings:
		return true
	}
	return false
}

// TaxCategory is a pure function of the account type
func (t AccountType) TaxCategory() TaxCategory {
	switch t {
	case AccountTaxableBrokerage:
		return TaxCategoryTaxable
	case Account401k, AccountIRA:
		return TaxCategoryTaxDeferred
	case AccountRoth401k, AccountRothIRA, AccountHSA:
		return TaxCategoryTaxFree
	default:
		return TaxCategoryCashSavings
	}
}

// IsRoth reports whether withdrawals return contribution basis before earnings
func (t AccountType) IsRoth() bool {
	return t == AccountRoth401k || t == AccountRothIRA
}

// RequiresRMD reports whether the account is subject to required minimum distributions
func (t AccountType) RequiresRMD() bool {
	return t == Account401k || t == AccountIRA
}

// SupportsEmployerMatch reports whether an employer may match contributions to the account
func (t AccountType) SupportsEmployerMatch() bool {
	return t == Account401k || t == AccountRoth401k || t == AccountHSA
}

// IsRetirementWrapper reports whether contributions require earned income
func (t AccountType) IsRetirementWrapper() bool {
	switch t {
	case Account401k, AccountIRA, AccountRoth401k, AccountRothIRA, AccountHSA:
		return true
	}
	return false
}

// ContributionLimitGroup names the statutory limit shared by a set of account types.
type ContributionLimitGroup string

const (
	LimitGroup401k ContributionLimitGroup = "401kCombined"
	LimitGroupIRA  ContributionLimitGroup = "iraCombined"
	LimitGroupHSA  ContributionLimitGroup = "hsa"
	LimitGroupNone ContributionLimitGroup = ""
)

// LimitGroup returns the statutory limit group for the account type
func (t AccountType) LimitGroup() ContributionLimitGroup {
	switch t {
	case Account401k, AccountRoth401k:
		return LimitGroup401k
	case AccountIRA, AccountRothIRA:
		return LimitGroupIRA
	case AccountHSA:
		return LimitGroupHSA
	default:
		return LimitGroupNone
	}
}

// AnnualContributionLimit returns the employee limit for a group at the given age.
// The second return value is false when the group is unlimited.
func AnnualContributionLimit(group ContributionLimitGroup, age float64) (decimal.Decimal, bool) {
	switch group {
	case LimitGroup401k:
		if age < 50 {
			return decimal.NewFromInt(23500), true
		}
		return decimal.NewFromInt(31000), true
	case LimitGroupIRA:
		if age < 50 {
			return decimal.NewFromInt(7000), true
		}
		return decimal.NewFromInt(8000), true
	case LimitGroupHSA:
		if age < 55 {
			return decimal.NewFromInt(4300), true
		}
		return decimal.NewFromInt(5300), true
	default:
		return decimal.Zero, false
	}
}

// AssetAllocation holds fractions of an account's balance in each asset class
type AssetAllocation struct {
	Stocks decimal.Decimal `yaml:"stocks" json:"stocks"`
	Bonds  decimal.Decimal `yaml:"bonds" json:"bonds"`
	Cash   decimal.Decimal `yaml:"cash" json:"cash"`
}

// Total returns the sum of the three fractions
func (a AssetAllocation) Total() decimal.Decimal {
	return a.Stocks.Add(a.Bonds).Add(a.Cash)
}

// AllCash is the allocation applied to savings accounts
func AllCash() AssetAllocation {
	return AssetAllocation{Stocks: decimal.Zero, Bonds: decimal.Zero, Cash: decimal.NewFromInt(1)}
}

// Account is one investment or savings account in the plan
type Account struct {
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	Type              AccountType     `yaml:"type" json:"type"`
	Balance           decimal.Decimal `yaml:"balance" json:"balance"`
	CostBasis         decimal.Decimal `yaml:"cost_basis,omitempty" json:"cost_basis,omitempty"`                 // taxable accounts
	ContributionBasis decimal.Decimal `yaml:"contribution_basis,omitempty" json:"contribution_basis,omitempty"` // Roth accounts
	Allocation        AssetAllocation `yaml:"allocation" json:"allocation"`
}

// EffectiveAllocation treats savings as all cash and an empty allocation as all cash
func (a Account) EffectiveAllocation() AssetAllocation {
	if a.Type == AccountSavings || a.Allocation.Total().IsZero() {
		return AllCash()
	}
	return a.Allocation
}
