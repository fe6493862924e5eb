package tui

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
)

// Scene is a tab of the results view
type Scene int

const (
	SceneSummary Scene = iota
	SceneYearly
	SceneTrials
	sceneCount
)

// String returns the tab title
func (s Scene) String() string {
	switch s {
	case SceneSummary:
		return "Summary"
	case SceneYearly:
		return "Yearly"
	case SceneTrials:
		return "Trials"
	default:
		return "Unknown"
	}
}

// Message types for the Bubble Tea update cycle

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// PlanLoadedMsg signals the plan file has been parsed and validated
type PlanLoadedMsg struct {
	Plan *domain.PlanInputs
}

// ProgressMsg reports finished trials of the run with the given generation
type ProgressMsg struct {
	Run       int
	Completed int
	Total     int
}

// MonteCarloCompleteMsg signals a batch has finished or failed
type MonteCarloCompleteMsg struct {
	Run    int
	Result *domain.MonteCarloResult
	Err    error
}
