package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of the shared command tree to its default
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func testdata(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	return path
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "fireplan", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestCommandSubcommands(t *testing.T) {
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range []string{"run", "monte-carlo", "trial", "validate", "debt-payoff", "serve", "version"} {
		assert.True(t, registered[name], "missing command %s", name)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "monte-carlo")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fireplan dev (commit none"))
}

func TestRun_JSON(t *testing.T) {
	out, err := execute(t, "run", testdata(t, "plan.yaml"), "--format", "json", "--mode", "fixed")
	require.NoError(t, err)

	var report struct {
		Plan       string                  `json:"plan"`
		KeyMetrics domain.KeyMetrics       `json:"key_metrics"`
		Simulation domain.SimulationResult `json:"simulation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "cli test", report.Plan)
	assert.Equal(t, domain.ModeFixed, report.Simulation.Context.Mode)
	require.NotEmpty(t, report.Simulation.Data)
	require.NotNil(t, report.KeyMetrics.RetirementAge)
	assert.InDelta(t, 40.0, *report.KeyMetrics.RetirementAge, 1.0)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := execute(t, "run", testdata(t, "plan.yaml"), "--format", "csv", "--seed", "11")
	require.NoError(t, err)
	second, err := execute(t, "run", testdata(t, "plan.yaml"), "--format", "csv", "--seed", "11")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "Year,Age,Phase"))
}

func TestRun_Console(t *testing.T) {
	out, err := execute(t, "run", testdata(t, "plan.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "FINANCIAL PROJECTION: cli test")
}

func TestRun_UnsupportedFormat(t *testing.T) {
	_, err := execute(t, "run", testdata(t, "plan.yaml"), "--format", "html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format: html")
}

func TestRun_InvalidModeOverride(t *testing.T) {
	_, err := execute(t, "run", testdata(t, "plan.yaml"), "--mode", "lottery")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRun_Save(t *testing.T) {
	plan := testdata(t, "plan.yaml")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := execute(t, "run", plan, "--format", "json", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to fireplan_report_")

	matches, err := filepath.Glob(filepath.Join(dir, "fireplan_report_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMonteCarlo_TrialsCSV(t *testing.T) {
	out, err := execute(t, "monte-carlo", testdata(t, "plan.yaml"), "--format", "csv-trials", "--trials", "5", "--workers", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Seed,Success"))
	assert.True(t, strings.HasPrefix(lines[1], "3,"), "first trial uses the plan seed")
	assert.True(t, strings.HasPrefix(lines[2], "1012,"))
}

func TestMonteCarlo_Console(t *testing.T) {
	out, err := execute(t, "monte-carlo", testdata(t, "plan.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "MONTE CARLO ANALYSIS: cli test")
	assert.Contains(t, out, "Trials:       12 (12 completed, 0 failed)")
}

func TestMonteCarlo_TrialLimit(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("simulation:\n  max_trials: 3\n"), 0o600))

	_, err := execute(t, "monte-carlo", testdata(t, "plan.yaml"), "--config", settings, "--trials", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "exceeds the limit of 3")
}

func TestTrial_MatchesBatchRow(t *testing.T) {
	batchOut, err := execute(t, "monte-carlo", testdata(t, "plan.yaml"), "--format", "json", "--trials", "3")
	require.NoError(t, err)
	var batch struct {
		MonteCarlo domain.MonteCarloResult `json:"monte_carlo"`
	}
	require.NoError(t, json.Unmarshal([]byte(batchOut), &batch))
	require.Len(t, batch.MonteCarlo.TrialRows, 3)
	row := batch.MonteCarlo.TrialRows[1]
	assert.Equal(t, int64(1012), row.Seed)

	trialOut, err := execute(t, "trial", testdata(t, "plan.yaml"), "--format", "json", "--seed", "1012")
	require.NoError(t, err)
	var trial struct {
		Simulation domain.SimulationResult `json:"simulation"`
	}
	require.NoError(t, json.Unmarshal([]byte(trialOut), &trial))
	assert.Equal(t, int64(1012), trial.Simulation.Context.Seed)
	last, ok := trial.Simulation.Last()
	require.True(t, ok)
	assert.True(t, row.FinalPortfolioValue.Equal(last.Portfolio.TotalValue))
}

func TestTrial_RequiresSeed(t *testing.T) {
	_, err := execute(t, "trial", testdata(t, "plan.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", testdata(t, "plan.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `Plan "cli test" is valid: 2 accounts, 1 incomes, 1 expenses, 1 debts, 0 assets`)
}

func TestValidate_Invalid(t *testing.T) {
	out, err := execute(t, "validate", testdata(t, "invalid.yaml"))
	require.Error(t, err)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, out, "is invalid:")
	assert.Contains(t, out, "timeline.birth_month")
}

func TestDebtPayoff(t *testing.T) {
	out, err := execute(t, "debt-payoff", testdata(t, "plan.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Credit card")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
