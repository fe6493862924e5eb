package domain

import "github.com/shopspring/decimal"

// KeyMetrics are summary scalars derived from one or many trajectories.
// They are recomputed on demand and never stored as authoritative state.
type KeyMetrics struct {
	Success                   decimal.Decimal  `json:"success"`
	RetirementAge             *float64         `json:"retirement_age"`
	BankruptcyAge             *float64         `json:"bankruptcy_age"`
	YearsToRetirement         *float64         `json:"years_to_retirement"`
	PortfolioAtRetirement     *decimal.Decimal `json:"portfolio_at_retirement"`
	LifetimeTaxesAndPenalties decimal.Decimal  `json:"lifetime_taxes_and_penalties"`
	FinalPortfolio            decimal.Decimal  `json:"final_portfolio"`
	ProgressToRetirement      *decimal.Decimal `json:"progress_to_retirement"`
	PortfolioProgress         *decimal.Decimal `json:"portfolio_progress"`
}

// TrialOutcome is one Monte Carlo trial. Failed trials carry no result.
type TrialOutcome struct {
	Index         int               `json:"index"`
	Seed          int64             `json:"seed"`
	Result        *SimulationResult `json:"result,omitempty"`
	Failed        bool              `json:"failed"`
	FailureReason string            `json:"failure_reason,omitempty"`
}

// Percentiles is the p10..p90 spread of one series at one step
type Percentiles struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// PercentilePoint is the cross-trial distribution at one step index
type PercentilePoint struct {
	Year            int         `json:"year"`
	Age             float64     `json:"age"`
	PortfolioValue  Percentiles `json:"portfolio_value"`
	NetWorth        Percentiles `json:"net_worth"`
	TotalTax        Percentiles `json:"total_tax"`
	TotalWithdrawal Percentiles `json:"total_withdrawal"`
	RetiredFraction Percentiles `json:"retired_fraction"` // phase indicator: 1 when retired or bankrupt
}

// TrialSummaryRow is the per-seed table row
type TrialSummaryRow struct {
	Seed                 int64             `json:"seed"`
	Success              bool              `json:"success"`
	RetirementAge        *float64          `json:"retirement_age"`
	BankruptcyAge        *float64          `json:"bankruptcy_age"`
	FinalPhase           Phase             `json:"final_phase"`
	FinalPortfolioValue  decimal.Decimal   `json:"final_portfolio_value"`
	AverageStockReturn   *decimal.Decimal  `json:"average_stock_return"`
	AverageBondReturn    *decimal.Decimal  `json:"average_bond_return"`
	AverageCashReturn    *decimal.Decimal  `json:"average_cash_return"`
	AverageInflationRate *decimal.Decimal  `json:"average_inflation_rate"`
	HistoricalRanges     []HistoricalRange `json:"historical_ranges,omitempty"`
}

// YearlyAggregateRow is the per-year table row across all trials
type YearlyAggregateRow struct {
	Year                int              `json:"year"`
	Age                 float64          `json:"age"`
	PercentAccumulation decimal.Decimal  `json:"percent_accumulation"`
	PercentRetirement   decimal.Decimal  `json:"percent_retirement"`
	PercentBankrupt     decimal.Decimal  `json:"percent_bankrupt"`
	P10Portfolio        decimal.Decimal  `json:"p10_portfolio"`
	P25Portfolio        decimal.Decimal  `json:"p25_portfolio"`
	P50Portfolio        decimal.Decimal  `json:"p50_portfolio"`
	P75Portfolio        decimal.Decimal  `json:"p75_portfolio"`
	P90Portfolio        decimal.Decimal  `json:"p90_portfolio"`
	MinPortfolio        *decimal.Decimal `json:"min_portfolio"`
	MaxPortfolio        *decimal.Decimal `json:"max_portfolio"`
}

// MonteCarloResult is the completed output of a batch. It is only built after every
// trial has finished; a cancelled batch returns no result.
type MonteCarloResult struct {
	RunID           string               `json:"run_id"`
	Mode            SimulationMode       `json:"mode"`
	BaseSeed        int64                `json:"base_seed"`
	TotalTrials     int                  `json:"total_trials"`
	CompletedTrials int                  `json:"completed_trials"`
	FailedTrials    int                  `json:"failed_trials"`
	SuccessRate     decimal.Decimal      `json:"success_rate"`
	Percentiles     []PercentilePoint    `json:"percentiles"`
	TrialRows       []TrialSummaryRow    `json:"trial_rows"`
	YearlyRows      []YearlyAggregateRow `json:"yearly_rows"`
	KeyMetrics      KeyMetrics           `json:"key_metrics"`
	FinalPortfolio  Percentiles          `json:"final_portfolio"`
	Trials          []TrialOutcome       `json:"-"`
}
