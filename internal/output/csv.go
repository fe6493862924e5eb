package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// CSVFormatter writes one row per year: the trajectory of a single run, or the cross-trial
// distribution of a batch
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(r *Report) ([]byte, error) {
	switch {
	case r.MonteCarlo != nil:
		return writeCSV(yearlyAggregateRecords(r.MonteCarlo.YearlyRows))
	case r.Simulation != nil:
		return writeCSV(trajectoryRecords(r.Simulation.Data))
	default:
		return nil, errors.New("report has no results")
	}
}

// TrialsCSVFormatter writes the per-seed summary table of a batch
type TrialsCSVFormatter struct{}

func (c TrialsCSVFormatter) Name() string { return "csv-trials" }

func (c TrialsCSVFormatter) Format(r *Report) ([]byte, error) {
	if r.MonteCarlo == nil {
		return nil, errors.New("trial table needs a Monte Carlo result")
	}
	return writeCSV(trialRecords(r.MonteCarlo.TrialRows))
}

func writeCSV(records [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func ratio(d decimal.Decimal) string { return d.StringFixed(4) }

func optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return money(*d)
}

func optionalRatio(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return ratio(*d)
}

func optionalAge(age *float64) string {
	if age == nil {
		return ""
	}
	return strconv.FormatFloat(*age, 'f', 2, 64)
}

func trajectoryRecords(data []domain.SimulationDataPoint) [][]string {
	records := [][]string{{
		"Year", "Age", "Phase", "TotalIncome", "Expenses", "DebtPayments", "Taxes",
		"SurplusDeficit", "OutstandingShortfall", "Contributions", "EmployerMatch",
		"Withdrawals", "RMD", "Portfolio", "NetWorth",
	}}
	for _, p := range data {
		var cf domain.CashFlowBreakdown
		if p.CashFlow != nil {
			cf = *p.CashFlow
		}
		taxes := decimal.Zero
		if p.Taxes != nil {
			taxes = p.Taxes.TotalTaxAndPenalties()
		}
		records = append(records, []string{
			strconv.Itoa(p.Year),
			strconv.FormatFloat(p.Age, 'f', 2, 64),
			string(p.Phase),
			money(cf.TotalIncome),
			money(cf.Expenses),
			money(cf.DebtPayments),
			money(taxes),
			money(cf.SurplusDeficit),
			money(cf.OutstandingShortfall),
			money(p.Portfolio.TotalContributions),
			money(p.Portfolio.TotalEmployerMatch),
			money(p.Portfolio.TotalWithdrawals),
			money(p.Portfolio.TotalRMD),
			money(p.Portfolio.TotalValue),
			money(p.NetWorth),
		})
	}
	return records
}

func yearlyAggregateRecords(rows []domain.YearlyAggregateRow) [][]string {
	records := [][]string{{
		"Year", "Age", "PercentAccumulation", "PercentRetirement", "PercentBankrupt",
		"P10", "P25", "P50", "P75", "P90", "Min", "Max",
	}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.Age, 'f', 2, 64),
			ratio(r.PercentAccumulation),
			ratio(r.PercentRetirement),
			ratio(r.PercentBankrupt),
			money(r.P10Portfolio),
			money(r.P25Portfolio),
			money(r.P50Portfolio),
			money(r.P75Portfolio),
			money(r.P90Portfolio),
			optionalMoney(r.MinPortfolio),
			optionalMoney(r.MaxPortfolio),
		})
	}
	return records
}

func trialRecords(rows []domain.TrialSummaryRow) [][]string {
	records := [][]string{{
		"Seed", "Success", "RetirementAge", "BankruptcyAge", "FinalPhase", "FinalPortfolio",
		"AvgStockReturn", "AvgBondReturn", "AvgCashReturn", "AvgInflation",
	}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatBool(r.Success),
			optionalAge(r.RetirementAge),
			optionalAge(r.BankruptcyAge),
			string(r.FinalPhase),
			money(r.FinalPortfolioValue),
			optionalRatio(r.AverageStockReturn),
			optionalRatio(r.AverageBondReturn),
			optionalRatio(r.AverageCashReturn),
			optionalRatio(r.AverageInflationRate),
		})
	}
	return records
}
