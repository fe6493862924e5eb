package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rgehrsitz/fireplan/internal/api"
	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/config"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/logging"
	"github.com/rgehrsitz/fireplan/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// engineSetup loads settings and returns the engine logger for a command
func engineSetup(cmd *cobra.Command) (config.Settings, *zap.Logger, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return config.Settings{}, nil, err
	}
	logger, err := newLogger(settings)
	if err != nil {
		return config.Settings{}, nil, err
	}
	return settings, logger, nil
}

var runCmd = &cobra.Command{
	Use:   "run [plan-file]",
	Short: "Run a single projection of the plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := engineSetup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		plan, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}

		engine := calculation.NewSimulationEngine()
		engine.SetLogger(logging.NewAdapter(logger, "engine"))
		result, err := engine.RunPlan(cmd.Context(), plan)
		if err != nil {
			return err
		}
		return emit(cmd, output.NewSimulationReport(planName(plan, args[0]), result))
	},
}

var monteCarloCmd = &cobra.Command{
	Use:   "monte-carlo [plan-file]",
	Short: "Run a Monte Carlo batch of the plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := engineSetup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		plan, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}
		if limit := settings.Simulation.MaxTrials; limit > 0 && plan.Simulation.Trials > limit {
			return fmt.Errorf("trials %d exceeds the limit of %d: %w", plan.Simulation.Trials, limit, domain.ErrInvalidInput)
		}

		workers, _ := cmd.Flags().GetInt("workers")
		if workers == 0 {
			workers = settings.Simulation.Workers
		}

		orchestrator := calculation.NewMonteCarloOrchestrator()
		orchestrator.SetLogger(logging.NewAdapter(logger, "engine"))
		result, err := orchestrator.Run(cmd.Context(), plan, calculation.MonteCarloOptions{
			BaseSeed: plan.Simulation.Seed,
			Workers:  workers,
			Progress: func(completed, total int) {
				if completed == total || completed%100 == 0 {
					logger.Debug("monte carlo progress", zap.Int("completed", completed), zap.Int("total", total))
				}
			},
		})
		if err != nil {
			return err
		}
		return emit(cmd, output.NewMonteCarloReport(planName(plan, args[0]), result))
	},
}

var trialCmd = &cobra.Command{
	Use:   "trial [plan-file]",
	Short: "Reproduce one Monte Carlo trial by its seed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := engineSetup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		plan, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}

		orchestrator := calculation.NewMonteCarloOrchestrator()
		orchestrator.SetLogger(logging.NewAdapter(logger, "engine"))
		result, err := orchestrator.RunTrial(cmd.Context(), plan, plan.Simulation.Seed)
		if err != nil {
			return err
		}
		return emit(cmd, output.NewSimulationReport(planName(plan, args[0]), result))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [plan-file]",
	Short: "Validate a plan file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		plan, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			var verrs domain.ValidationErrors
			if errors.As(err, &verrs) {
				fmt.Fprintf(out, "%s is invalid:\n", args[0])
				for _, ve := range verrs {
					fmt.Fprintf(out, "  - %s: %s\n", ve.Field, ve.Message)
				}
			}
			return err
		}
		fmt.Fprintf(out, "Plan %q is valid: %d accounts, %d incomes, %d expenses, %d debts, %d assets\n",
			planName(plan, args[0]), len(plan.Accounts), len(plan.Incomes), len(plan.Expenses),
			len(plan.Debts), len(plan.PhysicalAssets))
		return nil
	},
}

var debtPayoffCmd = &cobra.Command{
	Use:   "debt-payoff [plan-file]",
	Short: "Estimate the payoff month of every debt in the plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.FormatDebtPayoff(plan.Debts))
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over JSON HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := engineSetup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		addr := settings.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(settings, logger).ListenAndServe(ctx, addr)
	},
}
