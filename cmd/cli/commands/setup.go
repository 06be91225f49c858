package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rhowell/gradesplit/internal/config"
)

// SetupCmd creates the setup command
func SetupCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write a sample config file to the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigPath
			if path == "" {
				path = config.FileName(app.Env)
			}

			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			app.Logger.Info("Config template written", zap.String("path", path))

			fmt.Printf("\n✓ Config written to %s\n\n", path)
			fmt.Println("Edit the instructors and their hours, then run:")
			fmt.Println("  gradesplit partition <submissions.csv>")
			fmt.Println()

			return nil
		},
	}
}
