package output

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

const rule = "================================================================================="

// ConsoleFormatter renders a plain-text report with tables
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	switch {
	case r.MonteCarlo != nil:
		writeHeader(&buf, "MONTE CARLO ANALYSIS", r.PlanName)
		writeMonteCarloSummary(&buf, r.MonteCarlo)
		writeKeyMetrics(&buf, r.Metrics, "KEY METRICS (trial averages)")
		writeYearlyAggregate(&buf, r.MonteCarlo.YearlyRows)
	case r.Simulation != nil:
		writeHeader(&buf, "FINANCIAL PROJECTION", r.PlanName)
		writeContext(&buf, r.Simulation)
		writeKeyMetrics(&buf, r.Metrics, "KEY METRICS")
		writeTrajectory(&buf, r.Simulation.Data)
	default:
		return nil, errors.New("report has no results")
	}
	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, title, plan string) {
	fmt.Fprintln(buf, rule)
	if plan != "" {
		title += ": " + plan
	}
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, rule)
	fmt.Fprintln(buf)
}

func writeContext(buf *bytes.Buffer, r *domain.SimulationResult) {
	c := r.Context
	fmt.Fprintf(buf, "Mode:                %s\n", c.Mode)
	if c.Mode != domain.ModeFixed {
		fmt.Fprintf(buf, "Seed:                %d\n", c.Seed)
	}
	fmt.Fprintf(buf, "Ages:                %.2f to %.2f (%d years)\n", c.StartAge, c.EndAge, c.YearsToSimulate)
	fmt.Fprintf(buf, "Retirement strategy: %s\n", c.RetirementStrategy.Type)
	fmt.Fprintf(buf, "Withdrawals:         %s\n", c.WithdrawalStrategy)
	for _, hr := range r.HistoricalRanges {
		fmt.Fprintf(buf, "Historical years:    %d-%d\n", hr.StartYear, hr.EndYear)
	}
	fmt.Fprintln(buf)
}

func writeMonteCarloSummary(buf *bytes.Buffer, mc *domain.MonteCarloResult) {
	fmt.Fprintf(buf, "Run ID:       %s\n", mc.RunID)
	fmt.Fprintf(buf, "Mode:         %s\n", mc.Mode)
	fmt.Fprintf(buf, "Base seed:    %d\n", mc.BaseSeed)
	fmt.Fprintf(buf, "Trials:       %d (%d completed, %d failed)\n", mc.TotalTrials, mc.CompletedTrials, mc.FailedTrials)
	fmt.Fprintf(buf, "Success rate: %s\n", FormatFraction(mc.SuccessRate))
	if mc.CompletedTrials > 0 {
		fp := mc.FinalPortfolio
		fmt.Fprintf(buf, "Final portfolio p10 / p50 / p90: %s / %s / %s\n",
			FormatCurrency(fp.P10), FormatCurrency(fp.P50), FormatCurrency(fp.P90))
	}
	fmt.Fprintln(buf)
}

func writeKeyMetrics(buf *bytes.Buffer, m domain.KeyMetrics, title string) {
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, strings.Repeat("-", len(title)))
	fmt.Fprintf(buf, "Success:                  %s\n", FormatFraction(m.Success))
	fmt.Fprintf(buf, "Retirement age:           %s\n", formatAge(m.RetirementAge))
	fmt.Fprintf(buf, "Years to retirement:      %s\n", formatAge(m.YearsToRetirement))
	fmt.Fprintf(buf, "Bankruptcy age:           %s\n", formatAge(m.BankruptcyAge))
	fmt.Fprintf(buf, "Portfolio at retirement:  %s\n", formatOptionalCurrency(m.PortfolioAtRetirement))
	fmt.Fprintf(buf, "Final portfolio:          %s\n", FormatCurrency(m.FinalPortfolio))
	fmt.Fprintf(buf, "Lifetime taxes:           %s\n", FormatCurrency(m.LifetimeTaxesAndPenalties))
	fmt.Fprintf(buf, "Progress to retirement:   %s\n", formatOptionalFraction(m.ProgressToRetirement))
	fmt.Fprintf(buf, "Portfolio progress:       %s\n", formatOptionalFraction(m.PortfolioProgress))
	fmt.Fprintln(buf)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func writeTrajectory(buf *bytes.Buffer, data []domain.SimulationDataPoint) {
	fmt.Fprintln(buf, "YEARLY TRAJECTORY (today's dollars)")
	t := newTable("Age", "Phase", "Income", "Expenses", "Taxes", "Surplus/Deficit", "Portfolio", "Net Worth")
	for _, p := range data {
		income, expenses, taxes, surplus := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		if cf := p.CashFlow; cf != nil {
			income = cf.TotalIncome
			expenses = cf.Expenses.Add(cf.DebtPayments)
			surplus = cf.SurplusDeficit
		}
		if p.Taxes != nil {
			taxes = p.Taxes.TotalTaxAndPenalties()
		}
		t.Row(
			fmt.Sprintf("%.1f", p.Age),
			string(p.Phase),
			FormatCurrency(income),
			FormatCurrency(expenses),
			FormatCurrency(taxes),
			FormatCurrency(surplus),
			FormatCurrency(p.Portfolio.TotalValue),
			FormatCurrency(p.NetWorth),
		)
	}
	fmt.Fprintln(buf, t.String())
}

func writeYearlyAggregate(buf *bytes.Buffer, rows []domain.YearlyAggregateRow) {
	fmt.Fprintln(buf, "YEARLY DISTRIBUTION")
	if len(rows) == 0 {
		fmt.Fprintln(buf, "no completed trials")
		return
	}
	t := newTable("Age", "Accumulating", "Retired", "Bankrupt", "P10", "P50", "P90")
	for _, r := range rows {
		t.Row(
			fmt.Sprintf("%.1f", r.Age),
			FormatFraction(r.PercentAccumulation),
			FormatFraction(r.PercentRetirement),
			FormatFraction(r.PercentBankrupt),
			FormatCurrency(r.P10Portfolio),
			FormatCurrency(r.P50Portfolio),
			FormatCurrency(r.P90Portfolio),
		)
	}
	fmt.Fprintln(buf, t.String())
}

// FormatDebtPayoff renders the payoff estimate of every debt in the plan
func FormatDebtPayoff(debts []domain.Debt) string {
	if len(debts) == 0 {
		return "No debts in plan.\n"
	}
	t := newTable("Debt", "Balance", "APR", "Payment", "Months to payoff")
	for _, d := range debts {
		months := calculation.EstimatePayoffMonths(d)
		payoff := fmt.Sprintf("%d", months)
		if months == calculation.PayoffNever {
			payoff = "never"
		}
		name := d.Name
		if name == "" {
			name = d.ID
		}
		t.Row(name, FormatCurrency(d.Balance), FormatFraction(d.APR), FormatCurrency(d.MonthlyPayment), payoff)
	}
	return t.String() + "\n"
}
