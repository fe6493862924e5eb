package output

import (
	"fmt"
	"os"
	"time"

	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Report is what a formatter renders: one trajectory or one Monte Carlo batch
type Report struct {
	PlanName   string
	Simulation *domain.SimulationResult
	MonteCarlo *domain.MonteCarloResult
	Metrics    domain.KeyMetrics
}

// NewSimulationReport wraps a single run and derives its key metrics
func NewSimulationReport(planName string, result *domain.SimulationResult) *Report {
	return &Report{
		PlanName:   planName,
		Simulation: result,
		Metrics:    calculation.ExtractKeyMetrics(result, result.Context.StartAge),
	}
}

// NewMonteCarloReport wraps a batch; its metrics were averaged during aggregation
func NewMonteCarloReport(planName string, result *domain.MonteCarloResult) *Report {
	return &Report{
		PlanName:   planName,
		MonteCarlo: result,
		Metrics:    result.KeyMetrics,
	}
}

// Formatter renders a report into bytes
type Formatter interface {
	Name() string
	Format(r *Report) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(r *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(r *Report) ([]byte, error) { return f.F(r) }

// GetFormatter returns the formatter registered under name
func GetFormatter(name string) (Formatter, error) {
	switch name {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "json":
		return JSONFormatter{Indent: true}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "csv-trials":
		return TrialsCSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
}

// WriteFormatted renders the report into a timestamped file in the working directory
// and returns its name
func WriteFormatted(f Formatter, r *Report, ext string) (string, error) {
	data, err := f.Format(r)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("fireplan_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatFraction formats a 0-1 fraction as a percentage
func FormatFraction(fraction decimal.Decimal) string {
	return FormatPercentage(fraction.Mul(decimal.NewFromInt(100)))
}

func formatAge(age *float64) string {
	if age == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *age)
}

func formatOptionalCurrency(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return FormatCurrency(*d)
}

func formatOptionalFraction(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return FormatFraction(*d)
}
