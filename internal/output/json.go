package output

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/fireplan/internal/domain"
)

// JSONFormatter renders the full result; identical inputs give byte-identical output
type JSONFormatter struct {
	Indent bool
}

func (j JSONFormatter) Name() string { return "json" }

type jsonReport struct {
	Plan       string                   `json:"plan,omitempty"`
	KeyMetrics domain.KeyMetrics        `json:"key_metrics"`
	Simulation *domain.SimulationResult `json:"simulation,omitempty"`
	MonteCarlo *domain.MonteCarloResult `json:"monte_carlo,omitempty"`
}

func (j JSONFormatter) Format(r *Report) ([]byte, error) {
	if r.Simulation == nil && r.MonteCarlo == nil {
		return nil, errors.New("report has no results")
	}
	doc := jsonReport{
		Plan:       r.PlanName,
		KeyMetrics: r.Metrics,
		Simulation: r.Simulation,
		MonteCarlo: r.MonteCarlo,
	}
	if j.Indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
