package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var remoteSummaryCmd = &cobra.Command{
	Use:   "remote-summary",
	Short: "Post next week's remote-work overview (cron entry point)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		now := time.Now().In(a.cal.Location())
		message, err := a.production.Schedule.ComposeRemoteSummary(ctx, now)
		if err != nil {
			return err
		}

		if _, err := a.chat.PostMessage(ctx, a.cfg.ChannelID, message); err != nil {
			return err
		}
		a.logger.Info("remote work summary posted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remoteSummaryCmd)
}
