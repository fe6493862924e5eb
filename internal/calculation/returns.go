package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ReturnsProvider supplies one year of market returns per call. The phase is the
// household's phase at the start of the year; providers that replay history use it to
// jump the sequence at retirement.
type ReturnsProvider interface {
	Name() string
	Next(phase domain.Phase) domain.ReturnsSample
}

// HistoricalRangeReporter is implemented by providers that replay historical years
type HistoricalRangeReporter interface {
	HistoricalRanges() []domain.HistoricalRange
}

// RealReturn converts a nominal return to a real one with the Fisher equation
func RealReturn(nominal, inflation decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return one.Add(nominal).Div(one.Add(inflation)).Sub(one)
}

// NewReturnsProvider builds the provider for a plan's simulation mode and a trial seed.
// historicalBacktest maps the seed onto a start year; see BacktestStartYears.
func NewReturnsProvider(plan *domain.PlanInputs, seed int64) (ReturnsProvider, error) {
	sim := plan.Simulation
	switch sim.Mode {
	case domain.ModeFixed, "":
		return NewFixedReturnsProvider(plan.MarketAssumptions), nil
	case domain.ModeStochastic:
		return NewStochasticReturnsProvider(plan.MarketAssumptions, seed), nil
	case domain.ModeHistorical, domain.ModeHistoricalBacktest:
		start := sim.HistoricalStartYear
		if sim.Mode == domain.ModeHistoricalBacktest {
			year := int(seed)
			start = &year
		}
		p, err := NewHistoricalReturnsProvider(plan.MarketAssumptions, seed, start, sim.RetirementStartYear)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown simulation mode %q: %w", sim.Mode, domain.ErrInvalidInput)
	}
}

// FixedReturnsProvider returns the expected returns every year
type FixedReturnsProvider struct {
	sample domain.ReturnsSample
}

// NewFixedReturnsProvider creates a deterministic provider
func NewFixedReturnsProvider(m domain.MarketAssumptions) *FixedReturnsProvider {
	return &FixedReturnsProvider{
		sample: domain.ReturnsSample{
			NominalStocks: m.StockReturn,
			NominalBonds:  m.BondReturn,
			NominalCash:   m.CashReturn,
			RealStocks:    RealReturn(m.StockReturn, m.InflationRate),
			RealBonds:     RealReturn(m.BondReturn, m.InflationRate),
			RealCash:      RealReturn(m.CashReturn, m.InflationRate),
			Inflation:     m.InflationRate,
			StockYield:    m.StockYield,
			BondYield:     m.BondYield,
		},
	}
}

func (p *FixedReturnsProvider) Name() string { return string(domain.ModeFixed) }

func (p *FixedReturnsProvider) Next(domain.Phase) domain.ReturnsSample { return p.sample }

// Series order of the correlation matrix
const (
	seriesStock = iota
	seriesBond
	seriesCash
	seriesInflation
	seriesBondYield
	seriesStockYield
	seriesCount
)

// correlationMatrix holds post-1990 correlations between the six stochastic series
var correlationMatrix = [seriesCount][seriesCount]float64{
	{1.0, -0.1, 0.07, -0.02, 0.02, -0.27},
	{-0.1, 1.0, 0.21, -0.33, 0.04, 0.23},
	{0.07, 0.21, 1.0, 0.31, 0.81, 0.14},
	{-0.02, -0.33, 0.31, 1.0, 0.26, 0.01},
	{0.02, 0.04, 0.81, 0.26, 1.0, 0.36},
	{-0.27, 0.23, 0.14, 0.01, 0.36, 1.0},
}

var choleskyFactor = cholesky(correlationMatrix)

// cholesky returns the lower-triangular L with L·Lᵀ = m
func cholesky(m [seriesCount][seriesCount]float64) [seriesCount][seriesCount]float64 {
	var l [seriesCount][seriesCount]float64
	for i := 0; i < seriesCount; i++ {
		for j := 0; j <= i; j++ {
			var sum float64
			for k := 0; k < j; k++ {
				sum += l[i][k] * l[j][k]
			}
			if i == j {
				l[i][j] = math.Sqrt(m[i][i] - sum)
			} else {
				l[i][j] = (m[i][j] - sum) / l[j][j]
			}
		}
	}
	return l
}

// StochasticReturnsProvider draws correlated returns from the market assumptions.
// Stocks and yields are lognormal; bonds, cash and inflation are normal.
type StochasticReturnsProvider struct {
	rng   *SeededRandom
	means [seriesCount]float64
	vols  [seriesCount]float64
}

// NewStochasticReturnsProvider creates a provider seeded for one trial
func NewStochasticReturnsProvider(m domain.MarketAssumptions, seed int64) *StochasticReturnsProvider {
	return &StochasticReturnsProvider{
		rng: NewSeededRandom(seed),
		means: [seriesCount]float64{
			m.StockReturn.InexactFloat64(),
			m.BondReturn.InexactFloat64(),
			m.CashReturn.InexactFloat64(),
			m.InflationRate.InexactFloat64(),
			m.BondYield.InexactFloat64(),
			m.StockYield.InexactFloat64(),
		},
		vols: [seriesCount]float64{
			m.Volatility.Stocks,
			m.Volatility.Bonds,
			m.Volatility.Cash,
			m.Volatility.Inflation,
			m.Volatility.BondYield,
			m.Volatility.StockYield,
		},
	}
}

func (p *StochasticReturnsProvider) Name() string { return string(domain.ModeStochastic) }

// Next draws six independent normals, correlates them and maps each onto its distribution
func (p *StochasticReturnsProvider) Next(domain.Phase) domain.ReturnsSample {
	var z [seriesCount]float64
	for i := range z {
		z[i] = p.rng.NextGaussian()
	}
	var c [seriesCount]float64
	for i := 0; i < seriesCount; i++ {
		for j := 0; j <= i; j++ {
			c[i] += choleskyFactor[i][j] * z[j]
		}
	}

	stocks := lognormalReturn(p.means[seriesStock], p.vols[seriesStock], c[seriesStock])
	bonds := p.means[seriesBond] + p.vols[seriesBond]*c[seriesBond]
	cash := p.means[seriesCash] + p.vols[seriesCash]*c[seriesCash]
	inflation := p.means[seriesInflation] + p.vols[seriesInflation]*c[seriesInflation]
	bondYield := lognormalYield(p.means[seriesBondYield], p.vols[seriesBondYield], c[seriesBondYield])
	stockYield := lognormalYield(p.means[seriesStockYield], p.vols[seriesStockYield], c[seriesStockYield])

	return domain.ReturnsSample{
		NominalStocks: decimal.NewFromFloat(stocks),
		NominalBonds:  decimal.NewFromFloat(bonds),
		NominalCash:   decimal.NewFromFloat(cash),
		RealStocks:    decimal.NewFromFloat((1+stocks)/(1+inflation) - 1),
		RealBonds:     decimal.NewFromFloat((1+bonds)/(1+inflation) - 1),
		RealCash:      decimal.NewFromFloat((1+cash)/(1+inflation) - 1),
		Inflation:     decimal.NewFromFloat(inflation),
		StockYield:    decimal.NewFromFloat(stockYield),
		BondYield:     decimal.NewFromFloat(bondYield),
	}
}

// lognormalParams converts an arithmetic mean and standard deviation into log-space parameters
func lognormalParams(mean, vol float64) (mu, sigma float64) {
	sigma = math.Sqrt(math.Log(1 + (vol*vol)/(mean*mean)))
	mu = math.Log(mean) - 0.5*sigma*sigma
	return mu, sigma
}

// lognormalReturn treats the gross return 1+r as lognormal
func lognormalReturn(expected, vol, z float64) float64 {
	mu, sigma := lognormalParams(1+expected, vol)
	return math.Exp(mu+sigma*z) - 1
}

// lognormalYield keeps yields non-negative
func lognormalYield(expected, vol, z float64) float64 {
	if expected <= 0 {
		return 0
	}
	mu, sigma := lognormalParams(expected, vol)
	return math.Exp(mu + sigma*z)
}
