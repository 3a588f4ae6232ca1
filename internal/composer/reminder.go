package composer

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
)

// ReminderInput carries the unfinished-task snapshot for the escalation
// message posted into the day's thread.
type ReminderInput struct {
	Now         time.Time
	Calendar    calendar.Calendar
	Overdue     []catalog.Task
	Incomplete  []catalog.Task
	TeamMention string
}

// Reminder renders the escalation message. It returns an empty string when
// there is nothing left to remind about.
func Reminder(in ReminderInput) string {
	if len(in.Overdue)+len(in.Incomplete) == 0 {
		return ""
	}

	local := in.Now.In(in.Calendar.Location())
	parts := []string{
		fmt.Sprintf("⏰ Reminder at %s - %s", local.Format("15:04"), local.Format("02 January (Monday)")),
	}

	if len(in.Overdue) > 0 {
		parts = append(parts, "\n🚨 *OVERDUE TASKS:*")
		parts = appendReminderLines(parts, in.Overdue, true)
	}

	if len(in.Incomplete) > 0 {
		parts = append(parts, "\n📋 *INCOMPLETE TASKS:*")
		parts = appendReminderLines(parts, in.Incomplete, false)
	}

	if in.TeamMention != "" {
		parts = append(parts, "\n"+in.TeamMention)
	}

	return strings.Join(parts, "\n")
}

func appendReminderLines(parts []string, tasks []catalog.Task, overdue bool) []string {
	morning, evening, ungrouped := catalog.GroupByPeriod(tasks)
	for _, group := range [][]catalog.Task{morning, evening, ungrouped} {
		for _, task := range group {
			parts = append(parts, reminderLine(task, overdue))
		}
	}
	return parts
}

func reminderLine(task catalog.Task, overdue bool) string {
	var emoji string
	switch task.Period {
	case catalog.PeriodMorning:
		emoji = "🌅 "
	case catalog.PeriodEvening:
		emoji = "🌙 "
	}

	if overdue && task.Deadline != nil {
		return fmt.Sprintf("• %s*%s* (deadline was at %s)", emoji, task.Name, task.Deadline)
	}
	line := fmt.Sprintf("• %s*%s*", emoji, task.Name)
	if task.Deadline != nil {
		line += fmt.Sprintf(" (by %s)", task.Deadline)
	}
	return line
}
