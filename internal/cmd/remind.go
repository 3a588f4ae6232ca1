package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Post a reminder about unfinished tasks (cron entry point)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		now := time.Now().In(a.cal.Location())
		if !a.cal.IsWeekday(now) {
			a.logger.Info("today is a weekend, tasks are not sent")
			return nil
		}

		message, err := a.production.Schedule.ComposeReminder(ctx, now)
		if err != nil {
			return err
		}
		if message == "" {
			a.logger.Info("no tasks to remind about")
			return nil
		}

		// Prefer the day's thread so the reminder lands next to the schedule.
		threadID, err := a.production.Ledger.ThreadID(ctx, now)
		if err == nil && threadID != "" {
			if err := a.chat.PostInThread(ctx, a.cfg.ChannelID, threadID, message); err != nil {
				return err
			}
			a.logger.Info("reminder posted in thread", "thread", threadID)
			return nil
		}

		if _, err := a.chat.PostMessage(ctx, a.cfg.ChannelID, message); err != nil {
			return err
		}
		a.logger.Info("reminder posted to channel")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
}
