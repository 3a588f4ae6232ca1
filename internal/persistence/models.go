// Package persistence defines the logical document shapes stored by the
// engine. The store holds whole-document blobs keyed by stable names; no
// multi-key transaction is ever assumed across them.
package persistence

// Document keys. Daily state is kept per operating mode under independent
// keys so debug runs never touch production tracking.
const (
	KeyTaskBase        = "task_base"
	KeyEmployees       = "employees"
	KeyProductionState = "slack_routine_state"
	KeyDebugState      = "debug_routine_state"
	KeyDutyAssignments = "duty_assignments"
	KeyTaskAssignments = "task_assignments"
	KeySpecialDates    = "special_dates"
	KeyRemoteDays      = "remote_days"
)

// TaskRecord is one entry of the task base document. Days is either "all" or
// a comma-separated list of lowercase weekday names.
type TaskRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Days     string `json:"days"`
	Period   string `json:"period,omitempty"`
	Deadline string `json:"deadline,omitempty"`
	AsanaURL string `json:"asana_url,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// EmployeeRecord is one entry of the employee directory document. Date sets
// use year-agnostic "dd/mm" keys.
type EmployeeRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	SlackID      string   `json:"slack_id"`
	MorningDates []string `json:"morning_dates,omitempty"`
	EveningDates []string `json:"evening_dates,omitempty"`
}

// CompletionRecord captures who completed a task and at what wall-clock time.
type CompletionRecord struct {
	User string `json:"user"`
	Time string `json:"time"`
}

// DailyState is the per-mode tracking document for one operating day.
type DailyState struct {
	Date      string                      `json:"date"`
	ThreadTS  string                      `json:"thread_ts"`
	Completed map[string]CompletionRecord `json:"completed"`
}

// SpecialDateRecord marks a "dd/mm" day as special.
type SpecialDateRecord struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// DutyAssignments maps ISO week-Monday dates to duty-type → chat user ID.
type DutyAssignments map[string]map[string]string

// TaskAssignments maps uppercase task names to the chat user ID responsible
// for them.
type TaskAssignments map[string]string

// SpecialDates maps "dd/mm" day keys to their special-date records.
type SpecialDates map[string]SpecialDateRecord

// RemoteDays maps employee IDs to ISO week-Monday dates to the "dd/mm" days
// the employee works remotely that week.
type RemoteDays map[string]map[string][]string
