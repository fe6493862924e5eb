package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(10, min(80, msg.Width-4))
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		m.running = false
		return m, nil

	case PlanLoadedMsg:
		m.plan = msg.Plan
		m.seed = msg.Plan.Simulation.Seed
		if m.opts.Seed != nil {
			m.seed = *m.opts.Seed
		}
		return m.startRun()

	case ProgressMsg:
		if msg.Run != m.run {
			return m, nil
		}
		if msg.Completed > m.completed {
			m.completed = msg.Completed
		}
		m.total = msg.Total
		return m, waitForProgress(m.progressCh)

	case MonteCarloCompleteMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.running = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		m.completed = msg.Result.TotalTrials
		m.total = msg.Result.TotalTrials
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reseed):
		if m.running || m.plan == nil {
			return m, nil
		}
		m.seed++
		return m.startRun()
	}

	if m.result == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.currentScene = (m.currentScene + 1) % sceneCount
		m.offset = 0
	case key.Matches(msg, m.keys.Prev):
		m.currentScene = (m.currentScene + sceneCount - 1) % sceneCount
		m.offset = 0
	case key.Matches(msg, m.keys.Down):
		if m.offset < m.maxOffset() {
			m.offset++
		}
	case key.Matches(msg, m.keys.Up):
		if m.offset > 0 {
			m.offset--
		}
	}
	return m, nil
}

// visibleRows is the number of table rows that fit under the header and status bar
func (m Model) visibleRows() int {
	return max(3, m.height-12)
}

func (m Model) maxOffset() int {
	var n int
	switch m.currentScene {
	case SceneYearly:
		n = len(m.result.YearlyRows)
	case SceneTrials:
		n = len(m.result.TrialRows)
	}
	return max(0, n-m.visibleRows())
}
