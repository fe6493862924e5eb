package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fireplan/internal/config"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:          "fireplan-tui [plan-file]",
	Short:        "Run a Monte Carlo batch of a plan in an interactive viewer",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		planPath := args[0]
		if _, err := os.Stat(planPath); os.IsNotExist(err) {
			return fmt.Errorf("plan file not found: %s", planPath)
		}

		settingsPath, _ := cmd.Flags().GetString("config")
		settings, err := config.LoadSettings(settingsPath)
		if err != nil {
			return err
		}

		opts := tui.Options{Workers: settings.Simulation.Workers}
		opts.Trials, _ = cmd.Flags().GetInt("trials")
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			opts.Workers = workers
		}
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			opts.Mode = domain.SimulationMode(mode)
		}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetInt64("seed")
			opts.Seed = &seed
		}
		if limit := settings.Simulation.MaxTrials; limit > 0 && opts.Trials > limit {
			return fmt.Errorf("trials %d exceeds the limit of %d: %w", opts.Trials, limit, domain.ErrInvalidInput)
		}

		p := tea.NewProgram(tui.NewModel(planPath, opts), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.Flags().String("config", "", "Path to a settings file (yaml or json)")
	rootCmd.Flags().Int("trials", 0, "Number of trials (default: plan setting or 500)")
	rootCmd.Flags().Int64("seed", 0, "Base seed (default: plan setting)")
	rootCmd.Flags().String("mode", "", "Returns mode (stochastic, historical, historicalBacktest)")
	rootCmd.Flags().Int("workers", 0, "Concurrent trials (default: settings or CPU count)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
