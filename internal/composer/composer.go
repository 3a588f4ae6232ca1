// Package composer assembles the human-readable schedule messages from
// already-fetched state. Every function is pure: identical inputs always
// yield byte-identical text, so production and debug output can be verified
// by direct string comparison.
package composer

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
)

// DebugPrefix marks messages produced by the debug instance of the engine.
const DebugPrefix = "🔧 DEBUG: "

// Mention identifies an employee in outgoing text. When ChatUserID is empty
// the plain name is used instead of a platform mention.
type Mention struct {
	Name       string
	ChatUserID string
}

// TaskView pairs a task definition with its per-day presentation state.
type TaskView struct {
	Task        catalog.Task
	AssignedTo  string
	CompletedBy string
}

// DutyView is one row of the weekly duty-assignment block. Assignee is empty
// for unassigned duties; the composer renders the placeholder explicitly.
type DutyView struct {
	Type     catalog.DutyType
	Assignee string
}

// DailyInput carries everything needed for a Tuesday-to-Friday message.
type DailyInput struct {
	Date     time.Time
	Calendar calendar.Calendar
	Debug    bool
	Special  *calendar.SpecialDate

	Morning   []TaskView
	Evening   []TaskView
	Ungrouped []TaskView

	MorningEmployees []Mention
	EveningEmployees []Mention
}

// WeeklyInput extends the daily shape with the Monday-only blocks.
type WeeklyInput struct {
	DailyInput

	WeekDates []calendar.DayMonth
	Duties    []DutyView
	DutyTasks []catalog.Task
}

// Daily renders the schedule message for a regular working day.
func Daily(in DailyInput) string {
	header := dailyHeader(in)

	if len(in.Morning)+len(in.Evening)+len(in.Ungrouped) == 0 {
		return header + "\n\n_No tasks for today_"
	}

	parts := []string{header}
	parts = appendTaskGroups(parts, in)
	return strings.Join(parts, "\n")
}

// Weekly renders the Monday message: week banner, duty assignments, the
// day's regular tasks and finally the duty task definitions.
func Weekly(in WeeklyInput) string {
	var header string
	if len(in.WeekDates) == 5 {
		header = fmt.Sprintf("%s📅 Week %s - %s\n\n%s",
			prefix(in.Debug), in.WeekDates[0], in.WeekDates[4], dailyHeaderBare(in.DailyInput))
	} else {
		header = dailyHeader(in.DailyInput)
	}

	parts := []string{header}

	if len(in.Duties) > 0 {
		parts = append(parts, "\n📋 Duties for the week:")
		for _, duty := range in.Duties {
			if duty.Assignee != "" {
				parts = append(parts, fmt.Sprintf("• *%s* → <@%s>", duty.Type.Label(), duty.Assignee))
			} else {
				parts = append(parts, fmt.Sprintf("• *%s* → _unassigned_", duty.Type.Label()))
			}
		}
	}

	if len(in.Morning)+len(in.Evening)+len(in.Ungrouped) == 0 {
		parts = append(parts, "\n_No regular tasks for today_")
	} else {
		parts = append(parts, "\n📝 Tasks for today:")
		parts = appendTaskGroups(parts, in.DailyInput)
	}

	if len(in.DutyTasks) > 0 {
		parts = append(parts, "\n📌 Duty tasks:")
		for _, task := range in.DutyTasks {
			line := fmt.Sprintf("• *%s*", task.Name)
			if task.Comments != "" {
				line += fmt.Sprintf("\n  _%s_", task.Comments)
			}
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, "\n")
}

func dailyHeader(in DailyInput) string {
	return prefix(in.Debug) + dailyHeaderBare(in)
}

func dailyHeaderBare(in DailyInput) string {
	local := in.Date.In(in.Calendar.Location())
	header := fmt.Sprintf("🎓 Today %s (%s)", local.Format("02/01/2006"), in.Calendar.WeekdayName(in.Date))
	if in.Special != nil {
		header += specialHeader(*in.Special)
	}
	return header
}

func specialHeader(special calendar.SpecialDate) string {
	var emoji, greeting, notice string
	switch special.Kind {
	case calendar.SpecialChristmas:
		emoji = "🎄✨"
		greeting = fmt.Sprintf("Happy Holidays! %s!", special.Description)
		notice = "⚠️ _Note: Working on a holiday, staff may be reduced_"
	case calendar.SpecialNewYear:
		emoji = "🎆❄️"
		greeting = fmt.Sprintf("Happy New Year! %s!", special.Description)
		notice = "⚠️ _Note: Working on a holiday, processing speed may be reduced_"
	default:
		emoji = "⚡"
		greeting = fmt.Sprintf("Special day: %s", special.Description)
		notice = "⚠️ _Note: Special working mode_"
	}
	return fmt.Sprintf("\n%s *%s*\n%s\n", emoji, greeting, notice)
}

// appendTaskGroups emits the period sections: morning first, then evening,
// then tasks without a period.
func appendTaskGroups(parts []string, in DailyInput) []string {
	if len(in.Morning) > 0 {
		if mentions := formatMentions(in.MorningEmployees); mentions != "" {
			parts = append(parts, fmt.Sprintf("\n*Morning*:\n%s", mentions))
		} else {
			parts = append(parts, "\n*Morning*:")
		}
		for _, view := range in.Morning {
			parts = append(parts, taskLine(view))
		}
	}

	if len(in.Evening) > 0 {
		if mentions := formatMentions(in.EveningEmployees); mentions != "" {
			parts = append(parts, fmt.Sprintf("\n*Evening* _(done after 3:00 PM)_:\n%s", mentions))
		} else {
			parts = append(parts, "\n*Evening*:")
		}
		for _, view := range in.Evening {
			parts = append(parts, taskLine(view))
		}
	}

	if len(in.Ungrouped) > 0 {
		parts = append(parts, "")
		for _, view := range in.Ungrouped {
			parts = append(parts, taskLine(view))
		}
	}

	return parts
}

func taskLine(view TaskView) string {
	task := view.Task

	var marker string
	switch {
	case view.CompletedBy != "":
		marker = "[x]"
	case view.AssignedTo != "":
		marker = fmt.Sprintf("[<@%s>]", view.AssignedTo)
	default:
		marker = "[ ]"
	}

	line := fmt.Sprintf("- %s *%s*", marker, task.Name)
	if task.Deadline != nil {
		line += fmt.Sprintf(" by %s", task.Deadline)
	}
	if task.AsanaURL != "" {
		line += fmt.Sprintf(" • <%s|Asana>", task.AsanaURL)
	}
	if task.Comments != "" {
		line += fmt.Sprintf("     _%s_", task.Comments)
	}
	return line
}

func formatMentions(employees []Mention) string {
	if len(employees) == 0 {
		return ""
	}
	mentions := make([]string, 0, len(employees))
	for _, emp := range employees {
		if emp.ChatUserID != "" {
			mentions = append(mentions, fmt.Sprintf("<@%s>", emp.ChatUserID))
		} else if emp.Name != "" {
			mentions = append(mentions, emp.Name)
		} else {
			mentions = append(mentions, "Unknown")
		}
	}
	return "[" + strings.Join(mentions, " + ") + "]"
}

func prefix(debug bool) string {
	if debug {
		return DebugPrefix
	}
	return ""
}
