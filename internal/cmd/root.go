// Package cmd defines the routinebot CLI. The serve subcommand runs the
// event intake server; post, remind and remote-summary are cron entry points
// sharing the same wiring; seed populates a fresh store.
package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "routinebot",
	Short:         "Workspace routine task and duty bot",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
