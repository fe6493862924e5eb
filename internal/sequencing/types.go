package sequencing

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxTreatment represents tax characteristics of a withdrawal source
// OrdinaryIncome: fully taxable as ordinary income (401k, ira, early HSA)
// TaxFree: no current year tax impact (qualified HSA)
// CapitalGains: only gains portion taxed, basis returned pro rata (taxable brokerage)
// BasisFirst: contribution basis returned before earnings (Roth)
type TaxTreatment int

const (
	TaxFree TaxTreatment = iota
	OrdinaryIncome
	CapitalGains
	BasisFirst
)

func (tt TaxTreatment) String() string {
	switch tt {
	case TaxFree:
		return "tax_free"
	case OrdinaryIncome:
		return "ordinary"
	case CapitalGains:
		return "capital_gains"
	case BasisFirst:
		return "basis_first"
	default:
		return "unknown"
	}
}

// PenaltyKind identifies which early-withdrawal penalty applies to the taxable part of a
// withdrawal
type PenaltyKind int

const (
	PenaltyNone PenaltyKind = iota
	PenaltyEarly
	PenaltyHSA
)

func (pk PenaltyKind) String() string {
	switch pk {
	case PenaltyNone:
		return "none"
	case PenaltyEarly:
		return "early"
	case PenaltyHSA:
		return "hsa"
	default:
		return "unknown"
	}
}

// WithdrawalSource represents one account available for withdrawals
// AccountID: the plan account this source draws from
// Category: tax category used by category-ordered strategies
// Basis: cost basis (taxable) or contribution basis (Roth)
// Penalty: penalty applied to the taxable part, set by the caller from the owner's age
type WithdrawalSource struct {
	AccountID    string
	Category     domain.TaxCategory
	Balance      decimal.Decimal
	Basis        decimal.Decimal
	TaxTreatment TaxTreatment
	Penalty      PenaltyKind
}

// WithdrawalAllocation captures actual withdrawal from a source and its tax decomposition
// Gross: total dollars withdrawn from the source
// OrdinaryPortion: amount treated as ordinary income
// CapitalGainsPortion: gain recognized on a taxable withdrawal (negative for a loss)
// TaxFreePortion: basis recovery and qualified tax-free dollars
// BasisUsed: basis consumed by the withdrawal
// PenalizedPortion: dollars subject to Penalty
type WithdrawalAllocation struct {
	AccountID           string
	Gross               decimal.Decimal
	OrdinaryPortion     decimal.Decimal
	CapitalGainsPortion decimal.Decimal
	TaxFreePortion      decimal.Decimal
	BasisUsed           decimal.Decimal
	PenalizedPortion    decimal.Decimal
	Penalty             PenaltyKind
}

// WithdrawalPlan aggregates the full plan for meeting a target amount
// Requested: amount the strategy was asked to source
// TotalSourced: sum of Gross across allocations
// RemainingNeed: unmet portion if balances are insufficient
// EstimatedEarlyPenalized / EstimatedHSAPenalized: penalized dollars by penalty kind
// StrategyUsed: resolved strategy after fallbacks
type WithdrawalPlan struct {
	Requested               decimal.Decimal
	Allocations             []WithdrawalAllocation
	TotalSourced            decimal.Decimal
	RemainingNeed           decimal.Decimal
	EstimatedOrdinaryIncome decimal.Decimal
	EstimatedCapitalGains   decimal.Decimal
	EstimatedEarlyPenalized decimal.Decimal
	EstimatedHSAPenalized   decimal.Decimal
	Notes                   []string
	StrategyUsed            string
}

// Allocation returns the allocation for an account, if the plan draws from it
func (p WithdrawalPlan) Allocation(accountID string) (WithdrawalAllocation, bool) {
	for _, a := range p.Allocations {
		if a.AccountID == accountID {
			return a, true
		}
	}
	return WithdrawalAllocation{}, false
}

// StrategyContext provides inputs required by sequencing strategies
// NeedAmount: gross amount the strategy should attempt to source
// OrdinaryHeadroom: ordinary income that still fits in the current bracket (bracket_fill)
type StrategyContext struct {
	NeedAmount       decimal.Decimal
	OrdinaryHeadroom decimal.Decimal
}

// SequencingStrategy defines interface for all withdrawal sequencing algorithms
type SequencingStrategy interface {
	Name() string
	Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan
}
