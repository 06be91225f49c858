package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rhowell/gradesplit/pkg/core/services"
)

// QuotaCmd creates the quota command
func QuotaCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quota <solo_count> <group_count>",
		Short: "Show each instructor's ideal share for the given submission counts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			soloCount, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("solo_count must be a number: %w", err)
			}
			groupCount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("group_count must be a number: %w", err)
			}

			cfg, err := app.Config()
			if err != nil {
				return err
			}

			summaries, excluded, err := services.Quotas(cfg, soloCount, groupCount)
			if err != nil {
				return err
			}

			printQuotas(os.Stdout, soloCount, groupCount, summaries, excluded)
			return nil
		},
	}
}
