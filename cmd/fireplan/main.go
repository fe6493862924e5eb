package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rgehrsitz/fireplan/internal/config"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/logging"
	"github.com/rgehrsitz/fireplan/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "fireplan",
	Short: "Household financial projection and Monte Carlo CLI",
	Long: "Projects a household's accounts, incomes, expenses, debts and assets year by year " +
		"until life expectancy, and runs Monte Carlo batches over stochastic or historical returns",
	SilenceUsage: true,
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fireplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" && cmd.Flags().Changed("build-info") {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// loadSettings reads the runtime settings named by --config; --verbose forces debug logging
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadSettings(path)
	if err != nil {
		return config.Settings{}, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		settings.Log.Level = "debug"
		settings.Log.Development = true
	}
	return settings, nil
}

func newLogger(settings config.Settings) (*zap.Logger, error) {
	logger, err := logging.New(settings.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// loadPlan parses the plan file and applies the simulation overrides set on the command line
func loadPlan(cmd *cobra.Command, path string) (*domain.PlanInputs, error) {
	plan, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	changed := false
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		plan.Simulation.Mode = domain.SimulationMode(mode)
		changed = true
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		plan.Simulation.Seed, _ = flags.GetInt64("seed")
		changed = true
	}
	if flags.Lookup("trials") != nil && flags.Changed("trials") {
		plan.Simulation.Trials, _ = flags.GetInt("trials")
		changed = true
	}
	if changed {
		if err := config.ValidatePlan(plan); err != nil {
			return nil, fmt.Errorf("plan validation failed: %w", err)
		}
	}
	return plan, nil
}

// planName falls back to the file name for unnamed plans
func planName(plan *domain.PlanInputs, path string) string {
	if plan.Name != "" {
		return plan.Name
	}
	return path
}

// emit renders the report to stdout, or to a timestamped file with --save
func emit(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	f, err := output.GetFormatter(format)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		filename, err := output.WriteFormatted(f, report, extensionFor(f.Name()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
		return nil
	}

	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func extensionFor(format string) string {
	switch format {
	case "json":
		return "json"
	case "csv", "csv-trials":
		return "csv"
	default:
		return "txt"
	}
}

func addOutputFlags(cmd *cobra.Command, formats string) {
	cmd.Flags().StringP("format", "f", "console", "Output format ("+formats+")")
	cmd.Flags().Bool("save", false, "Write the report to a timestamped file instead of stdout")
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a settings file (yaml or json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose development logging")

	addOutputFlags(runCmd, "console, json, csv")
	runCmd.Flags().Int64("seed", 0, "Seed for stochastic and historical returns")
	runCmd.Flags().String("mode", "", "Returns mode (fixed, stochastic, historical)")

	addOutputFlags(monteCarloCmd, "console, json, csv, csv-trials")
	monteCarloCmd.Flags().Int("trials", 0, "Number of trials (default: plan setting or 500)")
	monteCarloCmd.Flags().Int64("seed", 0, "Base seed; trial i uses seed + i*1009")
	monteCarloCmd.Flags().String("mode", "", "Returns mode (stochastic, historical, historicalBacktest)")
	monteCarloCmd.Flags().Int("workers", 0, "Concurrent trials (default: settings or CPU count)")

	addOutputFlags(trialCmd, "console, json, csv")
	trialCmd.Flags().Int64("seed", 0, "Seed of the trial to reproduce")
	trialCmd.Flags().String("mode", "", "Returns mode of the batch the seed came from")
	_ = trialCmd.MarkFlagRequired("seed")

	serveCmd.Flags().String("addr", "", "Listen address (default: settings server.addr)")

	verCmd := versionCmd()
	verCmd.Flags().Bool("build-info", false, "Also print the module build information")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(monteCarloCmd)
	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(debtPayoffCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(verCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
