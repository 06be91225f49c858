package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rhowell/gradesplit/cmd/cli/commands"
	"github.com/rhowell/gradesplit/pkg/utils/logging"
)

func main() {
	app := &commands.AppContext{
		Ctx: context.Background(),
	}

	var (
		logsDir string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:   "gradesplit",
		Short: "Split gradebook submissions between instructors",
		Long: `A CLI tool that splits the submissions in a gradebook export between instructors
in proportion to the hours each one works, and writes the result as text, JSON or a Google Sheets tab.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{
				Env:     app.Env,
				Dir:     logsDir,
				Verbose: verbose,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			app.Logger = logger

			app.Logger.Info("Starting gradesplit",
				zap.String("command", cmd.Name()),
				zap.String("environment", app.Env))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.Env, "env", "e", "", "Environment, selects gradesplit.<env>.yaml")
	rootCmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logsDir, "logs-dir", logging.DefaultDir, "Directory for log files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	rootCmd.AddCommand(commands.PartitionCmd(app))
	rootCmd.AddCommand(commands.SetupCmd(app))
	rootCmd.AddCommand(commands.QuotaCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
