package cmd

import (
	"github.com/spf13/cobra"

	"github.com/example/routine-bot/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load tasks, employees and special dates from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		file, err := seed.ParseFile(args[0])
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, a.store, file); err != nil {
			return err
		}

		a.logger.Info("seed applied",
			"tasks", len(file.Tasks),
			"employees", len(file.Employees),
			"special_dates", len(file.SpecialDates),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
