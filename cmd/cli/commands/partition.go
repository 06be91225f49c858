package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rhowell/gradesplit/internal/config"
	"github.com/rhowell/gradesplit/pkg/clients/sheetsclient"
	"github.com/rhowell/gradesplit/pkg/core/services"
	"github.com/rhowell/gradesplit/pkg/output"
	"github.com/rhowell/gradesplit/pkg/submissions"
)

// PartitionCmd creates the partition command
func PartitionCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition <submissions.csv>",
		Short: "Split the submissions in a gradebook export between instructors",
		Long: `Split the submissions in a gradebook export between the configured instructors
in proportion to their hours. Solo and group submissions are shared out separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.Config()
			if err != nil {
				return err
			}

			cfg, err := applyPartitionFlags(cmd, loaded)
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")

			var sink output.Sink
			if !dryRun {
				sink, err = buildSink(app, cfg)
				if err != nil {
					return err
				}
			}

			result, err := services.PartitionSubmissions(
				app.Ctx,
				submissions.NewReader(),
				sink,
				cfg,
				app.Logger,
				args[0],
				services.PartitionOptions{DryRun: dryRun},
			)
			if err != nil {
				return err
			}

			printPartitionResult(os.Stdout, result)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output format: txt, json or googlesheets (overrides config)")
	cmd.Flags().Bool("shuffle", false, "Shuffle submissions before allocating")
	cmd.Flags().Int64("seed", 0, "Seed for the shuffle, implies --shuffle")
	cmd.Flags().Bool("dry-run", false, "Print the partition summary without writing any output")

	return cmd
}

// applyPartitionFlags returns a copy of cfg with any flags the user set applied
func applyPartitionFlags(cmd *cobra.Command, loaded *config.Config) (*config.Config, error) {
	cfg := *loaded
	flags := cmd.Flags()

	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("shuffle") {
		cfg.Shuffle, _ = flags.GetBool("shuffle")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		cfg.Seed = &seed
		cfg.Shuffle = true
	}

	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// buildSink creates the configured sink, connecting to Google Sheets if needed
func buildSink(app *AppContext, cfg *config.Config) (output.Sink, error) {
	var publisher output.PartitionPublisher

	if cfg.Output == config.OutputGoogleSheets {
		app.Logger.Info("Loading service account credentials", zap.String("path", cfg.CredentialsFile))
		key, err := config.LoadServiceAccountFromPath(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials: %w", err)
		}

		app.Logger.Info("Initializing sheets client", zap.String("client_email", key.ClientEmail))
		client, err := sheetsclient.NewClient(app.Ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		app.Logger.Debug("Sheets client initialized successfully")
		publisher = client
	}

	return output.New(cfg, publisher, app.Logger)
}
