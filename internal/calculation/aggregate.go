package calculation

import (
	"sort"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Percentile interpolates linearly between the closest ranks at index p*(n-1).
// values must be sorted ascending.
func Percentile(values []decimal.Decimal, p float64) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	index := decimal.NewFromFloat(p).Mul(decimal.NewFromInt(int64(len(values) - 1)))
	lowerIdx := int(index.IntPart())
	fraction := index.Sub(decimal.NewFromInt(int64(lowerIdx)))
	if fraction.IsZero() || lowerIdx+1 >= len(values) {
		return values[lowerIdx]
	}

	lower := values[lowerIdx]
	upper := values[lowerIdx+1]

	return lower.Add(upper.Sub(lower).Mul(fraction))
}

// PercentilesOf returns p10..p90 of unsorted values
func PercentilesOf(values []decimal.Decimal) domain.Percentiles {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return domain.Percentiles{
		P10: Percentile(sorted, 0.10),
		P25: Percentile(sorted, 0.25),
		P50: Percentile(sorted, 0.50),
		P75: Percentile(sorted, 0.75),
		P90: Percentile(sorted, 0.90),
	}
}

// pointAt returns the data point at index, carrying a trajectory that ended early (bankrupt)
// forward in its terminal state with no further activity
func pointAt(r *domain.SimulationResult, index int) domain.SimulationDataPoint {
	if index < len(r.Data) {
		return r.Data[index]
	}
	last := r.Data[len(r.Data)-1]
	return domain.SimulationDataPoint{
		Year:      index,
		Age:       last.Age + float64(index-last.Year),
		Phase:     last.Phase,
		Portfolio: domain.PortfolioSnapshot{TotalValue: decimal.Max(decimal.Zero, last.Portfolio.TotalValue)},
		NetWorth:  last.NetWorth,
	}
}

// AggregateTrials reduces finished trials into the batch result. Failed trials are counted
// but excluded from every statistic.
func AggregateTrials(trials []domain.TrialOutcome, asOfAge float64) *domain.MonteCarloResult {
	out := &domain.MonteCarloResult{
		TotalTrials: len(trials),
		Trials:      trials,
		Percentiles: []domain.PercentilePoint{},
		TrialRows:   []domain.TrialSummaryRow{},
		YearlyRows:  []domain.YearlyAggregateRow{},
	}

	var results []*domain.SimulationResult
	for _, t := range trials {
		if t.Failed || t.Result == nil || len(t.Result.Data) == 0 {
			out.FailedTrials++
			continue
		}
		results = append(results, t.Result)
		out.TrialRows = append(out.TrialRows, trialSummary(t))
	}
	out.CompletedTrials = len(results)
	if len(results) == 0 {
		return out
	}

	out.KeyMetrics = ExtractMonteCarloKeyMetrics(results, asOfAge)
	out.SuccessRate = out.KeyMetrics.Success

	steps := 0
	for _, r := range results {
		if len(r.Data) > steps {
			steps = len(r.Data)
		}
	}

	n := decimal.NewFromInt(int64(len(results)))
	for idx := 0; idx < steps; idx++ {
		portfolio := make([]decimal.Decimal, 0, len(results))
		netWorth := make([]decimal.Decimal, 0, len(results))
		taxes := make([]decimal.Decimal, 0, len(results))
		withdrawals := make([]decimal.Decimal, 0, len(results))
		retired := make([]decimal.Decimal, 0, len(results))
		var accumulating, retiredCount, bankrupt int64
		var age float64

		for i, r := range results {
			p := pointAt(r, idx)
			if i == 0 {
				age = p.Age
			}
			portfolio = append(portfolio, p.Portfolio.TotalValue)
			netWorth = append(netWorth, p.NetWorth)
			tax := decimal.Zero
			if p.Taxes != nil {
				tax = p.Taxes.TotalTaxAndPenalties()
			}
			taxes = append(taxes, tax)
			withdrawals = append(withdrawals, p.Portfolio.TotalWithdrawals)

			indicator := decimal.Zero
			switch p.Phase {
			case domain.PhaseAccumulating:
				accumulating++
			case domain.PhaseRetired:
				retiredCount++
				indicator = decimal.NewFromInt(1)
			case domain.PhaseBankrupt:
				bankrupt++
				indicator = decimal.NewFromInt(1)
			}
			retired = append(retired, indicator)
		}

		pp := domain.PercentilePoint{
			Year:            idx,
			Age:             age,
			PortfolioValue:  PercentilesOf(portfolio),
			NetWorth:        PercentilesOf(netWorth),
			TotalTax:        PercentilesOf(taxes),
			TotalWithdrawal: PercentilesOf(withdrawals),
			RetiredFraction: PercentilesOf(retired),
		}
		out.Percentiles = append(out.Percentiles, pp)

		minV, maxV := minMax(portfolio)
		out.YearlyRows = append(out.YearlyRows, domain.YearlyAggregateRow{
			Year:                idx,
			Age:                 age,
			PercentAccumulation: decimal.NewFromInt(accumulating).Div(n),
			PercentRetirement:   decimal.NewFromInt(retiredCount).Div(n),
			PercentBankrupt:     decimal.NewFromInt(bankrupt).Div(n),
			P10Portfolio:        pp.PortfolioValue.P10,
			P25Portfolio:        pp.PortfolioValue.P25,
			P50Portfolio:        pp.PortfolioValue.P50,
			P75Portfolio:        pp.PortfolioValue.P75,
			P90Portfolio:        pp.PortfolioValue.P90,
			MinPortfolio:        minV,
			MaxPortfolio:        maxV,
		})
	}

	finals := make([]decimal.Decimal, 0, len(results))
	for _, r := range results {
		last, _ := r.Last()
		finals = append(finals, last.Portfolio.TotalValue)
	}
	out.FinalPortfolio = PercentilesOf(finals)
	return out
}

func minMax(values []decimal.Decimal) (*decimal.Decimal, *decimal.Decimal) {
	if len(values) == 0 {
		return nil, nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = decimal.Min(lo, v)
		hi = decimal.Max(hi, v)
	}
	return &lo, &hi
}

// trialSummary builds the per-seed row of a completed trial
func trialSummary(t domain.TrialOutcome) domain.TrialSummaryRow {
	r := t.Result
	metrics := ExtractKeyMetrics(r, r.Context.StartAge)
	last, _ := r.Last()
	row := domain.TrialSummaryRow{
		Seed:                t.Seed,
		Success:             metrics.Success.Equal(decimal.NewFromInt(1)),
		RetirementAge:       metrics.RetirementAge,
		BankruptcyAge:       metrics.BankruptcyAge,
		FinalPhase:          last.Phase,
		FinalPortfolioValue: last.Portfolio.TotalValue,
		HistoricalRanges:    r.HistoricalRanges,
	}

	var stocks, bonds, cash, inflation []decimal.Decimal
	for _, p := range r.Data {
		if p.Returns == nil {
			continue
		}
		stocks = append(stocks, p.Returns.NominalStocks)
		bonds = append(bonds, p.Returns.NominalBonds)
		cash = append(cash, p.Returns.NominalCash)
		inflation = append(inflation, p.Returns.Inflation)
	}
	row.AverageStockReturn = mean(stocks)
	row.AverageBondReturn = mean(bonds)
	row.AverageCashReturn = mean(cash)
	row.AverageInflationRate = mean(inflation)
	return row
}

// mean returns nil for an empty series
func mean(values []decimal.Decimal) *decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	m := decimal.Avg(values[0], values[1:]...)
	return &m
}
