package calculation

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// implicitSavingsID names the savings sink created when a plan has no savings account
const implicitSavingsID = "implicit-savings"

// accountState is one account's working balance for a trial plus the current step's activity
type accountState struct {
	account    domain.Account
	balance    decimal.Decimal
	basis      decimal.Decimal // cost basis (taxable) or contribution basis (Roth)
	allocation domain.AssetAllocation

	contributions decimal.Decimal
	employerMatch decimal.Decimal
	withdrawals   decimal.Decimal
	realizedGains decimal.Decimal
	rmd           decimal.Decimal
	growth        decimal.Decimal
}

func newAccountState(a domain.Account) *accountState {
	basis := decimal.Zero
	switch {
	case a.Type == domain.AccountTaxableBrokerage:
		basis = a.CostBasis
	case a.Type.IsRoth():
		basis = a.ContributionBasis
	}
	return &accountState{
		account:    a,
		balance:    a.Balance.Round(2),
		basis:      basis,
		allocation: a.EffectiveAllocation(),
	}
}

func (s *accountState) resetActivity() {
	s.contributions = decimal.Zero
	s.employerMatch = decimal.Zero
	s.withdrawals = decimal.Zero
	s.realizedGains = decimal.Zero
	s.rmd = decimal.Zero
	s.growth = decimal.Zero
}

func (s *accountState) category() domain.TaxCategory {
	return s.account.Type.TaxCategory()
}

// deposit adds employee money. Taxable and Roth deposits raise basis.
func (s *accountState) deposit(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	s.balance = s.balance.Add(amount)
	s.contributions = s.contributions.Add(amount)
	if s.account.Type == domain.AccountTaxableBrokerage || s.account.Type.IsRoth() {
		s.basis = s.basis.Add(amount)
	}
}

// debit removes money and panics with a NegativeBalanceError if it would overdraw the
// account. SimulationEngine.Run converts the panic into an error.
func (s *accountState) debit(amount, basisUsed decimal.Decimal) {
	if amount.GreaterThan(s.balance) {
		panic(&domain.NegativeBalanceError{Entity: "account", ID: s.account.ID, Amount: s.balance.Sub(amount).StringFixed(2)})
	}
	s.balance = s.balance.Sub(amount)
	s.withdrawals = s.withdrawals.Add(amount)
	s.basis = decimal.Max(decimal.Zero, s.basis.Sub(basisUsed))
}

// applyReturns grows the balance by the allocation-weighted real return, floored at zero
func (s *accountState) applyReturns(r domain.ReturnsSample) {
	if s.balance.LessThanOrEqual(decimal.Zero) {
		return
	}
	rate := s.allocation.Stocks.Mul(r.RealStocks).
		Add(s.allocation.Bonds.Mul(r.RealBonds)).
		Add(s.allocation.Cash.Mul(r.RealCash))
	next := decimal.Max(decimal.Zero, s.balance.Mul(decimal.NewFromInt(1).Add(rate))).Round(2)
	s.growth = next.Sub(s.balance)
	s.balance = next
}

// investmentIncome is the taxable yield a taxable or savings account throws off in a year.
// Dividends and interest are reinvested, so brokerage basis rises by the same amount.
func (s *accountState) investmentIncome(r domain.ReturnsSample) (interest, qualifiedDividends decimal.Decimal) {
	if s.balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	cashRate := decimal.Max(decimal.Zero, r.NominalCash)
	switch s.account.Type {
	case domain.AccountSavings:
		interest = s.balance.Mul(cashRate).Round(2)
	case domain.AccountTaxableBrokerage:
		qualifiedDividends = s.balance.Mul(s.allocation.Stocks).Mul(r.StockYield).Round(2)
		interest = s.balance.Mul(s.allocation.Bonds).Mul(r.BondYield).
			Add(s.balance.Mul(s.allocation.Cash).Mul(cashRate)).Round(2)
		s.basis = s.basis.Add(interest).Add(qualifiedDividends)
	}
	return interest, qualifiedDividends
}

func (s *accountState) snapshot() domain.AccountSnapshot {
	return domain.AccountSnapshot{
		ID:            s.account.ID,
		Name:          s.account.Name,
		Type:          s.account.Type,
		Balance:       s.balance,
		CostBasis:     s.basis,
		Contributions: s.contributions,
		EmployerMatch: s.employerMatch,
		Withdrawals:   s.withdrawals,
		RealizedGains: s.realizedGains,
		RMD:           s.rmd,
		Growth:        s.growth,
	}
}

// portfolioSnapshot totals a set of accounts and weights their allocations by balance
func portfolioSnapshot(accounts []*accountState) domain.PortfolioSnapshot {
	snap := domain.PortfolioSnapshot{Accounts: make([]domain.AccountSnapshot, 0, len(accounts))}
	var stocks, bonds, cash decimal.Decimal
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, a.snapshot())
		snap.TotalValue = snap.TotalValue.Add(a.balance)
		snap.TotalContributions = snap.TotalContributions.Add(a.contributions)
		snap.TotalEmployerMatch = snap.TotalEmployerMatch.Add(a.employerMatch)
		snap.TotalWithdrawals = snap.TotalWithdrawals.Add(a.withdrawals)
		snap.TotalRMD = snap.TotalRMD.Add(a.rmd)
		stocks = stocks.Add(a.balance.Mul(a.allocation.Stocks))
		bonds = bonds.Add(a.balance.Mul(a.allocation.Bonds))
		cash = cash.Add(a.balance.Mul(a.allocation.Cash))
	}
	if snap.TotalValue.GreaterThan(decimal.Zero) {
		snap.AssetAllocation = domain.AssetAllocation{
			Stocks: stocks.Div(snap.TotalValue).Round(4),
			Bonds:  bonds.Div(snap.TotalValue).Round(4),
			Cash:   cash.Div(snap.TotalValue).Round(4),
		}
	}
	return snap
}

func totalBalance(accounts []*accountState) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.balance)
	}
	return total
}
