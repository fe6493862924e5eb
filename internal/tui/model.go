package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/config"
	"github.com/rgehrsitz/fireplan/internal/domain"
)

// Options override the plan's simulation settings. Zero values keep the plan's.
type Options struct {
	Trials  int
	Mode    domain.SimulationMode
	Seed    *int64
	Workers int
	Logger  calculation.Logger
}

// Model represents the entire application state
type Model struct {
	currentScene Scene

	// Terminal dimensions
	width  int
	height int

	planPath string
	plan     *domain.PlanInputs
	opts     Options
	seed     int64

	orchestrator *calculation.MonteCarloOrchestrator

	// Current run; progress messages from older runs are dropped
	run        int
	running    bool
	completed  int
	total      int
	progressCh chan ProgressMsg
	cancel     context.CancelFunc

	result *domain.MonteCarloResult
	offset int

	keys     keyMap
	help     help.Model
	progress progress.Model

	err error
}

// NewModel creates a new application model
func NewModel(planPath string, opts Options) Model {
	orchestrator := calculation.NewMonteCarloOrchestrator()
	orchestrator.SetLogger(opts.Logger)
	return Model{
		currentScene: SceneSummary,
		planPath:     planPath,
		opts:         opts,
		orchestrator: orchestrator,
		keys:         defaultKeyMap(),
		help:         help.New(),
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		width:        100,
		height:       30,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return loadPlanCmd(m.planPath)
}

// loadPlanCmd returns a command that loads the plan file
func loadPlanCmd(path string) tea.Cmd {
	return func() tea.Msg {
		plan, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return PlanLoadedMsg{Plan: plan}
	}
}

// startRun launches a batch with the current seed and listens for its progress
func (m Model) startRun() (Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.run++
	m.running = true
	m.completed = 0
	m.total = 0
	m.result = nil
	m.offset = 0
	m.err = nil
	m.cancel = cancel
	m.progressCh = make(chan ProgressMsg, 64)

	opts := calculation.MonteCarloOptions{
		Trials:   m.opts.Trials,
		Mode:     m.opts.Mode,
		BaseSeed: m.seed,
		Workers:  m.opts.Workers,
	}
	return m, tea.Batch(
		runMonteCarloCmd(ctx, m.orchestrator, m.plan, opts, m.run, m.progressCh),
		waitForProgress(m.progressCh),
	)
}

// runMonteCarloCmd runs the batch and closes ch once every worker has reported
func runMonteCarloCmd(ctx context.Context, o *calculation.MonteCarloOrchestrator, plan *domain.PlanInputs, opts calculation.MonteCarloOptions, run int, ch chan ProgressMsg) tea.Cmd {
	return func() tea.Msg {
		opts.Progress = func(completed, total int) {
			// Progress callbacks must not block; drop the update when the buffer is full
			select {
			case ch <- ProgressMsg{Run: run, Completed: completed, Total: total}:
			default:
			}
		}
		result, err := o.Run(ctx, plan, opts)
		close(ch)
		return MonteCarloCompleteMsg{Run: run, Result: result, Err: err}
	}
}

// waitForProgress delivers the next progress update, or nothing once the run has closed ch
func waitForProgress(ch <-chan ProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
