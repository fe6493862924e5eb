package calculation

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed data/historical_returns.csv
var historicalCSV []byte

// HistoricalYear is one year of real (inflation-adjusted) US market returns
type HistoricalYear struct {
	Year       int             `json:"year"`
	RealStocks decimal.Decimal `json:"real_stocks"`
	RealBonds  decimal.Decimal `json:"real_bonds"`
	RealCash   decimal.Decimal `json:"real_cash"`
	Inflation  decimal.Decimal `json:"inflation"`
}

var (
	historicalOnce sync.Once
	historicalData []HistoricalYear
	historicalErr  error
)

// HistoricalData returns the embedded dataset, parsed once and shared read-only
func HistoricalData() ([]HistoricalYear, error) {
	historicalOnce.Do(func() {
		historicalData, historicalErr = parseHistoricalCSV(bytes.NewReader(historicalCSV))
	})
	return historicalData, historicalErr
}

func parseHistoricalCSV(r io.Reader) ([]HistoricalYear, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 5 {
		return nil, fmt.Errorf("invalid CSV format: expected 5 columns, got %d", len(header))
	}

	var years []HistoricalYear
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}

		year, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", record[0], err)
		}
		var values [4]decimal.Decimal
		for i := range values {
			values[i], err = decimal.NewFromString(record[i+1])
			if err != nil {
				return nil, fmt.Errorf("year %d column %s: %w", year, header[i+1], err)
			}
		}
		if n := len(years); n > 0 && years[n-1].Year+1 != year {
			return nil, fmt.Errorf("historical data is not contiguous at %d", year)
		}
		years = append(years, HistoricalYear{
			Year:       year,
			RealStocks: values[0],
			RealBonds:  values[1],
			RealCash:   values[2],
			Inflation:  values[3],
		})
	}

	if len(years) == 0 {
		return nil, errors.New("no valid data points found in historical data")
	}
	return years, nil
}

// HistoricalYearRange returns the first and last year of the embedded data
func HistoricalYearRange() (int, int, error) {
	data, err := HistoricalData()
	if err != nil {
		return 0, 0, err
	}
	return data[0].Year, data[len(data)-1].Year, nil
}

// BacktestStartYears lists every start year replayed by a historicalBacktest batch
func BacktestStartYears() ([]int, error) {
	first, last, err := HistoricalYearRange()
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years, nil
}

// HistoricalReturnsProvider replays history year by year from a seeded random (or pinned)
// start year, wrapping to the first year after the last. With a retirement start year it
// jumps to that year once the household retires.
type HistoricalReturnsProvider struct {
	data        []HistoricalYear
	first, last int
	stockYield  decimal.Decimal
	bondYield   decimal.Decimal

	current             int
	replayed            int
	ranges              []domain.HistoricalRange
	retirementStartYear *int
	jumped              bool
}

// NewHistoricalReturnsProvider creates a provider for one trial. The seed is only used
// when startYear is nil.
func NewHistoricalReturnsProvider(m domain.MarketAssumptions, seed int64, startYear, retirementStartYear *int) (*HistoricalReturnsProvider, error) {
	data, err := HistoricalData()
	if err != nil {
		return nil, fmt.Errorf("loading historical data: %w", err)
	}
	p := &HistoricalReturnsProvider{
		data:                data,
		first:               data[0].Year,
		last:                data[len(data)-1].Year,
		stockYield:          m.StockYield,
		bondYield:           m.BondYield,
		retirementStartYear: retirementStartYear,
	}

	if startYear != nil {
		p.current = *startYear
	} else {
		rng := NewSeededRandom(seed)
		p.current = p.first + int(rng.Next()*float64(p.last-p.first+1))
	}
	if !p.inRange(p.current) {
		return nil, fmt.Errorf("historical start year %d outside %d-%d: %w", p.current, p.first, p.last, domain.ErrInvalidInput)
	}
	if retirementStartYear != nil && !p.inRange(*retirementStartYear) {
		return nil, fmt.Errorf("retirement start year %d outside %d-%d: %w", *retirementStartYear, p.first, p.last, domain.ErrInvalidInput)
	}
	p.ranges = []domain.HistoricalRange{{StartYear: p.current, EndYear: p.current}}
	return p, nil
}

func (p *HistoricalReturnsProvider) inRange(year int) bool {
	return year >= p.first && year <= p.last
}

func (p *HistoricalReturnsProvider) Name() string { return string(domain.ModeHistorical) }

// Next returns the current historical year and advances the pointer
func (p *HistoricalReturnsProvider) Next(phase domain.Phase) domain.ReturnsSample {
	switch {
	case p.retirementStartYear != nil && !p.jumped && phase == domain.PhaseRetired:
		p.jumped = true
		p.current = *p.retirementStartYear
		if p.replayed == 0 {
			p.ranges = p.ranges[:0]
		}
		p.ranges = append(p.ranges, domain.HistoricalRange{StartYear: p.current, EndYear: p.current})
	case p.current <= p.last:
		p.ranges[len(p.ranges)-1].EndYear = p.current
	default:
		p.current = p.first
		p.ranges = append(p.ranges, domain.HistoricalRange{StartYear: p.current, EndYear: p.current})
	}

	y := p.data[p.current-p.first]
	p.current++
	p.replayed++

	return domain.ReturnsSample{
		NominalStocks:  nominalFromReal(y.RealStocks, y.Inflation),
		NominalBonds:   nominalFromReal(y.RealBonds, y.Inflation),
		NominalCash:    nominalFromReal(y.RealCash, y.Inflation),
		RealStocks:     y.RealStocks,
		RealBonds:      y.RealBonds,
		RealCash:       y.RealCash,
		Inflation:      y.Inflation,
		StockYield:     p.stockYield,
		BondYield:      p.bondYield,
		HistoricalYear: y.Year,
	}
}

// HistoricalRanges returns a copy of the year ranges replayed so far
func (p *HistoricalReturnsProvider) HistoricalRanges() []domain.HistoricalRange {
	out := make([]domain.HistoricalRange, len(p.ranges))
	copy(out, p.ranges)
	return out
}

func nominalFromReal(realReturn, inflation decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return one.Add(realReturn).Mul(one.Add(inflation)).Sub(one)
}
