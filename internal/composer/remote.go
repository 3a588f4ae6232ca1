package composer

import (
	"fmt"
	"strings"

	"github.com/example/routine-bot/internal/calendar"
)

// RemoteDay pairs one weekday of the summarised week with the employees who
// marked it as a remote-work day.
type RemoteDay struct {
	Weekday string
	Date    calendar.DayMonth
	Remote  []Mention
}

// RemoteSummaryInput carries next week's remote-day snapshot.
type RemoteSummaryInput struct {
	Days []RemoteDay
}

// RemoteSummary renders the weekly remote-work overview posted on Fridays.
func RemoteSummary(in RemoteSummaryInput) string {
	if len(in.Days) < 5 {
		return "⚠️ Could not generate remote days summary - invalid week dates"
	}

	parts := []string{
		fmt.Sprintf("📅 *Remote Work Schedule for Week %s - %s*", in.Days[0].Date, in.Days[4].Date),
		"",
	}

	hasRemote := false
	for _, day := range in.Days {
		if len(day.Remote) == 0 {
			continue
		}
		hasRemote = true
		mentions := make([]string, 0, len(day.Remote))
		for _, emp := range day.Remote {
			if emp.ChatUserID != "" {
				mentions = append(mentions, fmt.Sprintf("<@%s>", emp.ChatUserID))
			} else {
				mentions = append(mentions, emp.Name)
			}
		}
		parts = append(parts, fmt.Sprintf("🏠 *%s* (%s): %s", day.Weekday, day.Date, strings.Join(mentions, " ")))
	}

	if !hasRemote {
		parts = append(parts, "_No remote days scheduled for next week_")
	}

	parts = append(parts, "", "_Remote days are self-reported and may change._")
	return strings.Join(parts, "\n")
}
