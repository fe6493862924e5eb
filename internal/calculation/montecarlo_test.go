package calculation

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monteCarloPlan() *domain.PlanInputs {
	plan := testPlan()
	plan.MarketAssumptions = domain.DefaultMarketAssumptions()
	plan.Simulation = domain.SimulationSettings{Mode: domain.ModeStochastic}
	brk := account("brk", domain.AccountTaxableBrokerage, "100000")
	brk.CostBasis = dec("80000")
	plan.Accounts = []domain.Account{brk, account("sav", domain.AccountSavings, "10000")}
	plan.Incomes = []domain.Income{yearly("salary", "90000", domain.IncomeWage)}
	plan.Expenses = []domain.Expense{yearlyExpense("living", "50000")}
	return plan
}

func TestTrialSeed(t *testing.T) {
	assert.Equal(t, int64(1000), TrialSeed(1000, 0))
	assert.Equal(t, int64(4027), TrialSeed(1000, 3))
}

func TestMonteCarloOrchestrator_Run(t *testing.T) {
	orchestrator := NewMonteCarloOrchestrator()
	result, err := orchestrator.Run(context.Background(), monteCarloPlan(), MonteCarloOptions{Trials: 20, BaseSeed: 1000, Workers: 4})
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Equal(t, domain.ModeStochastic, result.Mode)
	assert.Equal(t, int64(1000), result.BaseSeed)
	assert.Equal(t, 20, result.TotalTrials)
	assert.Equal(t, 20, result.CompletedTrials)
	assert.Zero(t, result.FailedTrials)
	assert.Len(t, result.TrialRows, 20)
	assert.Len(t, result.Percentiles, 6)
	assert.Len(t, result.YearlyRows, 6)
	assert.True(t, result.SuccessRate.GreaterThanOrEqual(dec("0")))
	assert.True(t, result.SuccessRate.LessThanOrEqual(dec("1")))

	for i, trial := range result.Trials {
		assert.Equal(t, i, trial.Index)
		assert.Equal(t, TrialSeed(1000, i), trial.Seed)
		require.NotNil(t, trial.Result)
		assert.Equal(t, trial.Seed, trial.Result.Context.Seed)
	}
	for _, p := range result.Percentiles {
		pv := p.PortfolioValue
		assert.True(t, pv.P10.LessThanOrEqual(pv.P25) && pv.P25.LessThanOrEqual(pv.P50) &&
			pv.P50.LessThanOrEqual(pv.P75) && pv.P75.LessThanOrEqual(pv.P90), "year %d", p.Year)
	}
}

func TestMonteCarloOrchestrator_DeterministicAcrossWorkerCounts(t *testing.T) {
	plan := monteCarloPlan()
	orchestrator := NewMonteCarloOrchestrator()

	serial, err := orchestrator.Run(context.Background(), plan, MonteCarloOptions{Trials: 12, BaseSeed: 7, Workers: 1})
	require.NoError(t, err)
	parallel, err := orchestrator.Run(context.Background(), plan, MonteCarloOptions{Trials: 12, BaseSeed: 7, Workers: 8})
	require.NoError(t, err)

	a, err := json.Marshal(serial.TrialRows)
	require.NoError(t, err)
	b, err := json.Marshal(parallel.TrialRows)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	a, err = json.Marshal(serial.YearlyRows)
	require.NoError(t, err)
	b, err = json.Marshal(parallel.YearlyRows)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, serial.RunID, parallel.RunID, "worker count is not part of the run inputs")
}

func TestMonteCarloOrchestrator_ReproducibleJSON(t *testing.T) {
	orchestrator := NewMonteCarloOrchestrator()
	opts := MonteCarloOptions{Trials: 3, BaseSeed: 42, Workers: 2}

	first, err := orchestrator.Run(context.Background(), monteCarloPlan(), opts)
	require.NoError(t, err)
	second, err := orchestrator.Run(context.Background(), monteCarloPlan(), opts)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	reseeded, err := orchestrator.Run(context.Background(), monteCarloPlan(), MonteCarloOptions{Trials: 3, BaseSeed: 43})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, reseeded.RunID)
}

func TestRunID(t *testing.T) {
	plan := monteCarloPlan()
	id, err := RunID(plan, domain.ModeStochastic, 1, 10)
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())

	again, err := RunID(monteCarloPlan(), domain.ModeStochastic, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	for name, other := range map[string]func() (string, error){
		"mode":   func() (string, error) { return RunID(plan, domain.ModeHistorical, 1, 10) },
		"seed":   func() (string, error) { return RunID(plan, domain.ModeStochastic, 2, 10) },
		"trials": func() (string, error) { return RunID(plan, domain.ModeStochastic, 1, 11) },
		"plan": func() (string, error) {
			changed := monteCarloPlan()
			changed.Expenses[0].Amount = dec("50001")
			return RunID(changed, domain.ModeStochastic, 1, 10)
		},
	} {
		got, err := other()
		require.NoError(t, err)
		assert.NotEqual(t, id, got, name)
	}
}

func TestMonteCarloOrchestrator_SuccessRateExtremes(t *testing.T) {
	t.Run("no expenses always succeed", func(t *testing.T) {
		plan := monteCarloPlan()
		plan.Expenses = nil
		result, err := NewMonteCarloOrchestrator().Run(context.Background(), plan, MonteCarloOptions{Trials: 10, BaseSeed: 5})
		require.NoError(t, err)
		assertDecimalEqual(t, dec("1"), result.SuccessRate)
	})

	t.Run("impossible expenses always fail", func(t *testing.T) {
		plan := monteCarloPlan()
		plan.Expenses = []domain.Expense{yearlyExpense("living", "10000000")}
		result, err := NewMonteCarloOrchestrator().Run(context.Background(), plan, MonteCarloOptions{Trials: 10, BaseSeed: 5})
		require.NoError(t, err)
		assert.True(t, result.SuccessRate.IsZero(), "success rate %s", result.SuccessRate)
		for _, row := range result.TrialRows {
			assert.False(t, row.Success)
		}
	})
}

func TestMonteCarloOrchestrator_RunTrialReproducesTrial(t *testing.T) {
	plan := monteCarloPlan()
	orchestrator := NewMonteCarloOrchestrator()
	batch, err := orchestrator.Run(context.Background(), plan, MonteCarloOptions{Trials: 5, BaseSeed: 99})
	require.NoError(t, err)

	single, err := orchestrator.RunTrial(context.Background(), plan, TrialSeed(99, 3))
	require.NoError(t, err)

	a, err := json.Marshal(batch.Trials[3].Result)
	require.NoError(t, err)
	b, err := json.Marshal(single)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMonteCarloOrchestrator_Progress(t *testing.T) {
	var mu sync.Mutex
	calls, highest := 0, 0
	progress := func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if completed > highest {
			highest = completed
		}
		assert.Equal(t, 10, total)
	}

	_, err := NewMonteCarloOrchestrator().Run(context.Background(), monteCarloPlan(), MonteCarloOptions{Trials: 10, Workers: 3, Progress: progress})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Equal(t, 10, highest)
}

func TestMonteCarloOrchestrator_TrialCountFallbacks(t *testing.T) {
	plan := monteCarloPlan()
	plan.Simulation.Trials = 3

	result, err := NewMonteCarloOrchestrator().Run(context.Background(), plan, MonteCarloOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalTrials, "plan trials apply when options leave it unset")

	seeds, err := trialSeeds(&domain.PlanInputs{}, MonteCarloOptions{})
	require.NoError(t, err)
	assert.Len(t, seeds, DefaultTrials)
}

func TestMonteCarloOrchestrator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewMonteCarloOrchestrator().Run(ctx, monteCarloPlan(), MonteCarloOptions{Trials: 50})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestMonteCarloOrchestrator_HistoricalBacktest(t *testing.T) {
	result, err := NewMonteCarloOrchestrator().Run(context.Background(), monteCarloPlan(), MonteCarloOptions{Mode: domain.ModeHistoricalBacktest, Trials: 5})
	require.NoError(t, err)

	years, err := BacktestStartYears()
	require.NoError(t, err)
	assert.Equal(t, len(years), result.TotalTrials, "every start year is replayed regardless of the trial count")
	assert.Equal(t, domain.ModeHistoricalBacktest, result.Mode)
	assert.Equal(t, int64(years[0]), result.BaseSeed)
	for i, row := range result.TrialRows {
		assert.Equal(t, int64(years[i]), row.Seed)
		require.NotEmpty(t, row.HistoricalRanges)
		assert.Equal(t, years[i], row.HistoricalRanges[0].StartYear)
	}
}

func TestMonteCarloOrchestrator_FailedTrialsExcluded(t *testing.T) {
	plan := monteCarloPlan()
	plan.Simulation = domain.SimulationSettings{Mode: domain.ModeHistorical, HistoricalStartYear: intPtr(1800)}

	logger := &TestLogger{}
	orchestrator := NewMonteCarloOrchestrator()
	orchestrator.SetLogger(logger)
	result, err := orchestrator.Run(context.Background(), plan, MonteCarloOptions{Trials: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalTrials)
	assert.Equal(t, 4, result.FailedTrials)
	assert.Zero(t, result.CompletedTrials)
	assert.Empty(t, result.TrialRows)
	assert.True(t, result.SuccessRate.IsZero())
	for _, trial := range result.Trials {
		assert.True(t, trial.Failed)
		assert.Contains(t, trial.FailureReason, "outside")
	}
}

func TestMonteCarloOrchestrator_NilPlan(t *testing.T) {
	_, err := NewMonteCarloOrchestrator().Run(context.Background(), nil, MonteCarloOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
