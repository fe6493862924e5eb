package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rgehrsitz/fireplan/internal/domain"
)

const (
	// DefaultTrials is used when neither the options nor the plan set a trial count
	DefaultTrials = 500
	// seedStride spaces consecutive trial seeds
	seedStride = 1009
)

// runNamespace scopes the name-based run IDs
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rgehrsitz/fireplan/monte-carlo"))

// RunID names a batch by its inputs: the same plan, mode, base seed and trial count always give
// the same ID.
func RunID(plan *domain.PlanInputs, mode domain.SimulationMode, baseSeed int64, trials int) (string, error) {
	data, err := json.Marshal(struct {
		Plan     *domain.PlanInputs    `json:"plan"`
		Mode     domain.SimulationMode `json:"mode"`
		BaseSeed int64                 `json:"base_seed"`
		Trials   int                   `json:"trials"`
	}{plan, mode, baseSeed, trials})
	if err != nil {
		return "", fmt.Errorf("failed to encode run inputs: %w", err)
	}
	return uuid.NewSHA1(runNamespace, data).String(), nil
}

// MonteCarloOptions configures a batch. Zero values fall back to the plan's settings.
type MonteCarloOptions struct {
	Trials   int
	Mode     domain.SimulationMode
	BaseSeed int64
	Workers  int
	// Progress is called from worker goroutines after each trial; it must not block
	Progress func(completed, total int)
}

// MonteCarloOrchestrator runs many independent trials of the simulation engine
type MonteCarloOrchestrator struct {
	logger Logger
}

// NewMonteCarloOrchestrator creates a new orchestrator
func NewMonteCarloOrchestrator() *MonteCarloOrchestrator {
	return &MonteCarloOrchestrator{logger: NopLogger{}}
}

// SetLogger sets the logger handed to every trial's engine
func (o *MonteCarloOrchestrator) SetLogger(l Logger) {
	o.logger = loggerOrNop(l)
}

// TrialSeed returns the seed of trial i
func TrialSeed(baseSeed int64, i int) int64 {
	return baseSeed + int64(i)*seedStride
}

// RunTrial reproduces one trial for drill-down. The plan's mode selects the returns model.
func (o *MonteCarloOrchestrator) RunTrial(ctx context.Context, plan *domain.PlanInputs, seed int64) (*domain.SimulationResult, error) {
	provider, err := NewReturnsProvider(plan, seed)
	if err != nil {
		return nil, err
	}
	engine := NewSimulationEngine()
	engine.SetLogger(o.logger)
	result, err := engine.Run(ctx, plan, provider)
	if err != nil {
		return nil, err
	}
	result.Context.Seed = seed
	return result, nil
}

// Run executes the batch. Each worker writes only its own trial slot; the aggregate is
// built after every worker has joined. A cancelled context returns ctx.Err() and no result.
func (o *MonteCarloOrchestrator) Run(ctx context.Context, plan *domain.PlanInputs, opts MonteCarloOptions) (*domain.MonteCarloResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan: %w", domain.ErrInvalidInput)
	}

	trialPlan := *plan
	if opts.Mode != "" {
		trialPlan.Simulation.Mode = opts.Mode
	}
	mode := trialPlan.Simulation.Mode

	seeds, err := trialSeeds(&trialPlan, opts)
	if err != nil {
		return nil, err
	}
	total := len(seeds)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	o.logger.Infof("monte carlo: %d trials, mode %s, %d workers", total, mode, workers)

	trials := make([]domain.TrialOutcome, total)
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var completed atomic.Int64

dispatch:
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			trials[idx] = o.runTrial(ctx, &trialPlan, idx, seeds[idx])
			done := completed.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(done), total)
			}
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baseSeed := opts.BaseSeed
	if mode == domain.ModeHistoricalBacktest && total > 0 {
		baseSeed = seeds[0]
	}
	runID, err := RunID(&trialPlan, mode, baseSeed, total)
	if err != nil {
		return nil, err
	}
	result := AggregateTrials(trials, trialPlan.Timeline.CurrentAge())
	result.RunID = runID
	result.Mode = mode
	result.BaseSeed = baseSeed
	o.logger.Infof("monte carlo %s: %d/%d trials completed, %d failed, success rate %s",
		result.RunID, result.CompletedTrials, total, result.FailedTrials, result.SuccessRate.StringFixed(4))
	return result, nil
}

// trialSeeds lists one seed per trial. historicalBacktest uses every available start year.
func trialSeeds(plan *domain.PlanInputs, opts MonteCarloOptions) ([]int64, error) {
	if plan.Simulation.Mode == domain.ModeHistoricalBacktest {
		years, err := BacktestStartYears()
		if err != nil {
			return nil, err
		}
		seeds := make([]int64, len(years))
		for i, y := range years {
			seeds[i] = int64(y)
		}
		return seeds, nil
	}

	n := opts.Trials
	if n <= 0 {
		n = plan.Simulation.Trials
	}
	if n <= 0 {
		n = DefaultTrials
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = TrialSeed(opts.BaseSeed, i)
	}
	return seeds, nil
}

// runTrial captures errors and panics as a failed outcome
func (o *MonteCarloOrchestrator) runTrial(ctx context.Context, plan *domain.PlanInputs, index int, seed int64) (out domain.TrialOutcome) {
	out = domain.TrialOutcome{Index: index, Seed: seed}
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Failed = true
			out.FailureReason = fmt.Sprintf("panic: %v", r)
			o.logger.Errorf("trial %d (seed %d) panicked: %v", index, seed, r)
		}
	}()

	result, err := o.RunTrial(ctx, plan, seed)
	if err != nil {
		out.Failed = true
		out.FailureReason = err.Error()
		o.logger.Warnf("trial %d (seed %d) failed: %v", index, seed, err)
		return out
	}
	out.Result = result
	return out
}
