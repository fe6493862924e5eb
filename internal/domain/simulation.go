package domain

import "github.com/shopspring/decimal"

// Phase is the trajectory state of the household
type Phase string

const (
	PhaseAccumulating Phase = "accumulating"
	PhaseRetired      Phase = "retired"
	PhaseBankrupt     Phase = "bankrupt"
)

// AccountSnapshot is one account's state and activity for a step
type AccountSnapshot struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	Contributions decimal.Decimal `json:"contributions"`
	EmployerMatch decimal.Decimal `json:"employer_match"`
	Withdrawals   decimal.Decimal `json:"withdrawals"`
	RealizedGains decimal.Decimal `json:"realized_gains"`
	RMD           decimal.Decimal `json:"rmd"`
	Growth        decimal.Decimal `json:"growth"`
}

// PortfolioSnapshot aggregates every account for a step
type PortfolioSnapshot struct {
	TotalValue         decimal.Decimal   `json:"total_value"`
	TotalContributions decimal.Decimal   `json:"total_contributions"`
	TotalEmployerMatch decimal.Decimal   `json:"total_employer_match"`
	TotalWithdrawals   decimal.Decimal   `json:"total_withdrawals"`
	TotalRMD           decimal.Decimal   `json:"total_rmd"`
	AssetAllocation    AssetAllocation   `json:"asset_allocation"`
	Accounts           []AccountSnapshot `json:"accounts"`
}

// CashFlowBreakdown records where the year's money came from and went
type CashFlowBreakdown struct {
	WageIncome           decimal.Decimal `json:"wage_income"`
	SocialSecurityIncome decimal.Decimal `json:"social_security_income"`
	TaxFreeIncome        decimal.Decimal `json:"tax_free_income"`
	OtherIncome          decimal.Decimal `json:"other_income"`
	TotalIncome          decimal.Decimal `json:"total_income"`
	Expenses             decimal.Decimal `json:"expenses"`
	DebtPayments         decimal.Decimal `json:"debt_payments"`
	AssetPurchaseOutlay  decimal.Decimal `json:"asset_purchase_outlay"`
	AssetSaleProceeds    decimal.Decimal `json:"asset_sale_proceeds"`
	TaxesAndPenalties    decimal.Decimal `json:"taxes_and_penalties"`
	SurplusDeficit       decimal.Decimal `json:"surplus_deficit"`
	ShortfallRepaid      decimal.Decimal `json:"shortfall_repaid"`
	Spent                decimal.Decimal `json:"spent"` // surplus discarded by the spend base rule
	OutstandingShortfall decimal.Decimal `json:"outstanding_shortfall"`
}

// ReturnsSample is the return model output applied in a step
type ReturnsSample struct {
	NominalStocks  decimal.Decimal `json:"nominal_stocks"`
	NominalBonds   decimal.Decimal `json:"nominal_bonds"`
	NominalCash    decimal.Decimal `json:"nominal_cash"`
	RealStocks     decimal.Decimal `json:"real_stocks"`
	RealBonds      decimal.Decimal `json:"real_bonds"`
	RealCash       decimal.Decimal `json:"real_cash"`
	Inflation      decimal.Decimal `json:"inflation"`
	StockYield     decimal.Decimal `json:"stock_yield"`
	BondYield      decimal.Decimal `json:"bond_yield"`
	HistoricalYear int             `json:"historical_year,omitempty"`
}

// DebtSnapshot is one debt at the end of a step
type DebtSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
	Interest    decimal.Decimal `json:"interest"`
	Payments    decimal.Decimal `json:"payments"`
	PaidOff     bool            `json:"paid_off"`
	FromAssetID string          `json:"from_asset_id,omitempty"`
}

// AssetSnapshot is one physical asset at the end of a step
type AssetSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	MarketValue decimal.Decimal `json:"market_value"`
	LoanBalance decimal.Decimal `json:"loan_balance"`
	Equity      decimal.Decimal `json:"equity"`
	Sold        bool            `json:"sold"`
}

// SimulationDataPoint is an immutable snapshot of one simulated age
type SimulationDataPoint struct {
	Year           int                `json:"year"`
	Age            float64            `json:"age"`
	Phase          Phase              `json:"phase"`
	Portfolio      PortfolioSnapshot  `json:"portfolio"`
	Taxes          *TaxBreakdown      `json:"taxes,omitempty"`
	CashFlow       *CashFlowBreakdown `json:"cash_flow,omitempty"`
	Returns        *ReturnsSample     `json:"returns,omitempty"`
	Debts          []DebtSnapshot     `json:"debts"`
	PhysicalAssets []AssetSnapshot    `json:"physical_assets"`
	NetWorth       decimal.Decimal    `json:"net_worth"`
}

// HistoricalRange is a contiguous run of historical years replayed by a trial
type HistoricalRange struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// SimulationContext describes the run that produced a result
type SimulationContext struct {
	StartAge           float64            `json:"start_age"`
	EndAge             float64            `json:"end_age"`
	YearsToSimulate    int                `json:"years_to_simulate"`
	RetirementStrategy RetirementStrategy `json:"retirement_strategy"`
	Mode               SimulationMode     `json:"mode"`
	Seed               int64              `json:"seed"`
	WithdrawalStrategy string             `json:"withdrawal_strategy"`
}

// SimulationResult is one full trajectory, one data point per age (index 0 is the start)
type SimulationResult struct {
	Context          SimulationContext     `json:"context"`
	Data             []SimulationDataPoint `json:"data"`
	HistoricalRanges []HistoricalRange     `json:"historical_ranges,omitempty"`
}

// Last returns the final data point
func (r *SimulationResult) Last() (SimulationDataPoint, bool) {
	if r == nil || len(r.Data) == 0 {
		return SimulationDataPoint{}, false
	}
	return r.Data[len(r.Data)-1], true
}

// Bankrupt reports whether the trajectory ended in the bankrupt state
func (r *SimulationResult) Bankrupt() bool {
	last, ok := r.Last()
	return ok && last.Phase == PhaseBankrupt
}
