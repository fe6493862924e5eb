package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// Plan file formats accepted by Parse
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// InputParser handles parsing of plan files
type InputParser struct {
	// now supplies the as-of date for plans that do not pin one
	now func() time.Time
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{now: time.Now}
}

// FormatForPath picks the plan format from a file extension. Anything that is not .json is YAML.
func FormatForPath(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFromFile loads a plan from a YAML or JSON file, applies defaults and validates it
func (ip *InputParser) LoadFromFile(filename string) (*domain.PlanInputs, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	plan, err := ip.Parse(data, FormatForPath(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return plan, nil
}

// Parse decodes a plan, applies defaults and validates it
func (ip *InputParser) Parse(data []byte, format string) (*domain.PlanInputs, error) {
	var plan domain.PlanInputs
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}

	ip.ApplyDefaults(&plan)

	if err := ValidatePlan(&plan); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}
	return &plan, nil
}

// ApplyDefaults fills the parts of a plan that may be omitted from the file
func (ip *InputParser) ApplyDefaults(plan *domain.PlanInputs) {
	if plan.Timeline.AsOf == nil {
		asOf := ip.now()
		plan.Timeline.AsOf = &asOf
	}
	if plan.Timeline.RetirementStrategy.Type == "" {
		plan.Timeline.RetirementStrategy.Type = domain.RetirementFixedAge
	}
	if plan.BaseRule == "" {
		plan.BaseRule = domain.BaseRuleSave
	}
	if len(plan.TaxSettings.OrdinaryBrackets) == 0 {
		plan.TaxSettings = domain.DefaultTaxSettings()
	}
	if marketUnset(plan.MarketAssumptions) {
		plan.MarketAssumptions = domain.DefaultMarketAssumptions()
	}
	if plan.Simulation.Mode == "" {
		plan.Simulation.Mode = domain.ModeFixed
	}
	for i := range plan.Incomes {
		if plan.Incomes[i].Frequency == "" {
			plan.Incomes[i].Frequency = domain.FrequencyYearly
		}
	}
	for i := range plan.Expenses {
		if plan.Expenses[i].Frequency == "" {
			plan.Expenses[i].Frequency = domain.FrequencyYearly
		}
	}
}

func marketUnset(m domain.MarketAssumptions) bool {
	return m.StockReturn.IsZero() && m.BondReturn.IsZero() && m.CashReturn.IsZero() &&
		m.InflationRate.IsZero() && m.Volatility == (domain.Volatility{})
}
