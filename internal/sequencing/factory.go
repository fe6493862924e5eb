package sequencing

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Strategy names accepted by CreateStrategy
const (
	StrategyStandard         = "standard"
	StrategyCashFirst        = "cash_first"
	StrategyTaxDeferredFirst = "tax_deferred_first"
	StrategyBracketFill      = "bracket_fill"
	StrategyCustom           = "custom"
)

// KnownStrategy reports whether name selects a strategy. The empty name selects standard.
func KnownStrategy(name string) bool {
	switch name {
	case "", StrategyStandard, StrategyCashFirst, StrategyTaxDeferredFirst, StrategyBracketFill, StrategyCustom:
		return true
	}
	return false
}

// CreateStrategy creates a sequencing strategy by name. Order is only read by custom.
func CreateStrategy(name string, order []string) SequencingStrategy {
	switch name {
	case StrategyCashFirst:
		return NewCashFirstStrategy()
	case StrategyTaxDeferredFirst:
		return NewTaxDeferredFirstStrategy()
	case StrategyBracketFill:
		return NewBracketFillStrategy()
	case StrategyCustom:
		return NewCustomStrategy(order)
	default:
		// Fallback to standard if unknown strategy
		return NewStandardStrategy()
	}
}

// SourceForAccount creates the WithdrawalSource for an account at the owner's age.
// Penalty ages come from the tax settings.
func SourceForAccount(acct domain.Account, balance, basis decimal.Decimal, age decimal.Decimal, tax domain.TaxSettings) WithdrawalSource {
	src := WithdrawalSource{
		AccountID: acct.ID,
		Category:  acct.Type.TaxCategory(),
		Balance:   balance,
		Basis:     basis,
	}
	early := age.LessThan(tax.EarlyWithdrawalAge)

	switch {
	case acct.Type == domain.AccountTaxableBrokerage:
		src.TaxTreatment = CapitalGains
	case acct.Type.RequiresRMD():
		src.TaxTreatment = OrdinaryIncome
		if early {
			src.Penalty = PenaltyEarly
		}
	case acct.Type.IsRoth():
		src.TaxTreatment = BasisFirst
		if early {
			src.Penalty = PenaltyEarly
		}
	case acct.Type == domain.AccountHSA:
		src.TaxTreatment = TaxFree
		if age.LessThan(tax.HSAPenaltyAge) {
			src.TaxTreatment = OrdinaryIncome
			src.Penalty = PenaltyHSA
		}
	default:
		src.TaxTreatment = TaxFree
	}
	return src
}
