package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/routine-bot/internal/application"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post today's schedule message (cron entry point)",
	Long: `Posts the daily schedule message to the channel: the weekly shape with
duty assignments on Mondays, the plain daily shape Tuesday through Friday.
Weekends are skipped. Safe to fire twice; the second run refuses to replace
the already-recorded thread.`,
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

		monday := now.Weekday() == time.Monday
		var message string
		if monday {
			message, err = a.production.Schedule.ComposeWeekly(ctx, now)
		} else {
			message, err = a.production.Schedule.ComposeDaily(ctx, now)
		}
		if err != nil {
			return err
		}

		ts, err := a.chat.PostMessage(ctx, a.cfg.ChannelID, message)
		if err != nil {
			return err
		}
		a.logger.Info("schedule message posted", "ts", ts, "weekly", monday)

		if err := a.production.Ledger.EnsureThread(ctx, now, ts); err != nil {
			if errors.Is(err, application.ErrThreadAlreadySet) {
				a.logger.Warn("thread already recorded for today, keeping existing", "ts", ts)
			} else {
				return err
			}
		}

		if monday {
			if err := a.chat.PinMessage(ctx, a.cfg.ChannelID, ts); err != nil {
				a.logger.Warn("could not pin Monday message", "error", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
}
