package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/application"
	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/chat"
)

const setDutyUsage = "❌ Invalid command format\n" +
	"Usage:\n" +
	"• `/set-duty <duty-type> @username <week>` - assign\n" +
	"• `/set-duty <duty-type> <week>` - remove assignment\n\n" +
	"Duty types: fin, asana, tg, notification, supervision\n" +
	"Week: current, next, or dd/mm (Monday date)"

const remoteDaysUsage = "❌ Invalid command format\n" +
	"Usage:\n" +
	"• `/remote-days <week> <day> [day]` - set your remote days (max 2)\n\n" +
	"Week: current, next, or dd/mm (Monday date)\n" +
	"Day: dd/mm within that week"

// CommandHandler processes the /set-duty and /remote-days slash commands.
type CommandHandler struct {
	rotation  *application.RotationService
	remote    *application.RemoteService
	directory *application.DirectoryService
	ledger    *application.LedgerService
	chat      chat.Client
	cal       calendar.Calendar
	channel   string
	now       func() time.Time
	responder responder
}

func NewCommandHandler(rotation *application.RotationService, remote *application.RemoteService, directory *application.DirectoryService, productionLedger *application.LedgerService, chatClient chat.Client, cal calendar.Calendar, channel string, now func() time.Time, logger *slog.Logger) *CommandHandler {
	if now == nil {
		now = time.Now
	}
	return &CommandHandler{
		rotation:  rotation,
		remote:    remote,
		directory: directory,
		ledger:    productionLedger,
		chat:      chatClient,
		cal:       cal,
		channel:   channel,
		now:       now,
		responder: newResponder(logger),
	}
}

func (h *CommandHandler) SetDuty(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rotation == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	ctx := r.Context()
	text := strings.TrimSpace(r.PostFormValue("text"))
	parts := strings.Fields(text)
	if len(parts) < 2 || len(parts) > 3 {
		h.responder.writeText(ctx, w, setDutyUsage)
		return
	}

	dutyType, err := catalog.ParseDutyType(parts[0])
	if err != nil {
		types := make([]string, 0, 5)
		for _, t := range catalog.DutyTypes() {
			types = append(types, string(t))
		}
		h.responder.writeText(ctx, w, fmt.Sprintf("❌ Unknown duty type: `%s`\nAvailable types: %s", strings.ToLower(parts[0]), strings.Join(types, ", ")))
		return
	}

	now := h.now().In(h.cal.Location())

	if len(parts) == 3 {
		h.assign(ctx, w, dutyType, parts[1], parts[2], now)
		return
	}
	h.clear(ctx, w, dutyType, parts[1], now)
}

// RemoteDays records the invoking user's remote days for a week. The command
// text carries a week token followed by one or two dd/mm day keys.
func (h *CommandHandler) RemoteDays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.remote == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	ctx := r.Context()
	parts := strings.Fields(strings.TrimSpace(r.PostFormValue("text")))
	if len(parts) < 2 || len(parts) > 3 {
		h.responder.writeText(ctx, w, remoteDaysUsage)
		return
	}

	now := h.now().In(h.cal.Location())
	weekMonday, err := h.rotation.ResolveWeek(parts[0], now)
	if err != nil {
		h.responder.writeText(ctx, w, fmt.Sprintf("❌ Could not determine week from '%s'\nUse: current, next, or dd/mm", parts[0]))
		return
	}

	days := make([]calendar.DayMonth, 0, 2)
	for _, raw := range parts[1:] {
		dm, err := calendar.ParseDayMonth(raw)
		if err != nil {
			h.responder.writeText(ctx, w, fmt.Sprintf("❌ '%s' is not a valid day, use dd/mm", raw))
			return
		}
		days = append(days, dm)
	}

	employee, err := h.directory.ByChatID(ctx, r.PostFormValue("user_id"))
	if err != nil {
		if errors.Is(err, application.ErrUnknownEmployee) {
			h.responder.writeText(ctx, w, "❌ You are not registered in the employee directory")
			return
		}
		h.responder.writeText(ctx, w, outcomeText(err))
		return
	}

	if err := h.remote.SetRemoteDays(ctx, employee.ID, weekMonday, days); err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			h.responder.writeText(ctx, w, fmt.Sprintf("❌ %s", vErr.FieldErrors["dates"]))
			return
		}
		h.responder.writeText(ctx, w, outcomeText(err))
		return
	}

	labels := make([]string, 0, len(days))
	for _, dm := range days {
		labels = append(labels, string(dm))
	}
	h.responder.writeText(ctx, w, fmt.Sprintf("✅ Remote days for week %s set: %s", weekMonday.Format("2006-01-02"), strings.Join(labels, ", ")))
}

func (h *CommandHandler) assign(ctx context.Context, w http.ResponseWriter, dutyType catalog.DutyType, username, weekInput string, now time.Time) {
	employee, err := h.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, application.ErrUnknownEmployee) {
			h.responder.writeText(ctx, w, fmt.Sprintf("❌ Employee with username '%s' not found in database", strings.TrimPrefix(username, "@")))
			return
		}
		h.responder.writeText(ctx, w, outcomeText(err))
		return
	}

	weekMonday, err := h.rotation.ResolveWeek(weekInput, now)
	if err != nil {
		h.responder.writeText(ctx, w, fmt.Sprintf("❌ Could not determine week from '%s'\nUse: current, next, or dd/mm", weekInput))
		return
	}

	if err := h.rotation.Assign(ctx, dutyType, employee.ChatUserID, weekMonday); err != nil {
		if errors.Is(err, application.ErrNotEligible) {
			h.responder.writeText(ctx, w, fmt.Sprintf("❌ %s", err))
			return
		}
		h.responder.writeText(ctx, w, outcomeText(err))
		return
	}

	h.responder.writeText(ctx, w, fmt.Sprintf("✅ User <@%s> assigned to *%s* for week %s", employee.ChatUserID, dutyType.Label(), weekMonday.Format("2006-01-02")))
	h.notifyCurrentWeek(ctx, weekMonday, now, fmt.Sprintf("📝 *Duty change:*\n<@%s> assigned to *%s*", employee.ChatUserID, dutyType.Label()))
}

func (h *CommandHandler) clear(ctx context.Context, w http.ResponseWriter, dutyType catalog.DutyType, weekInput string, now time.Time) {
	weekMonday, err := h.rotation.ResolveWeek(weekInput, now)
	if err != nil {
		h.responder.writeText(ctx, w, fmt.Sprintf("❌ Could not determine week from '%s'\nUse: current, next, or dd/mm", weekInput))
		return
	}

	if err := h.rotation.Clear(ctx, dutyType, weekMonday); err != nil {
		h.responder.writeText(ctx, w, outcomeText(err))
		return
	}

	h.responder.writeText(ctx, w, fmt.Sprintf("✅ Assignment removed from *%s* for week %s", dutyType.Label(), weekMonday.Format("2006-01-02")))
	h.notifyCurrentWeek(ctx, weekMonday, now, fmt.Sprintf("📝 *Duty change:*\nAssignment removed from *%s*", dutyType.Label()))
}

// notifyCurrentWeek posts a duty-change note into the active production
// thread when the affected week is the one in progress. Failures are logged
// only; the command itself already succeeded.
func (h *CommandHandler) notifyCurrentWeek(ctx context.Context, weekMonday, now time.Time, text string) {
	if h.ledger == nil || h.chat == nil {
		return
	}
	if !weekMonday.Equal(h.cal.MondayOf(now)) {
		return
	}

	threadID, err := h.ledger.ThreadID(ctx, now)
	if err != nil || threadID == "" {
		return
	}
	if err := h.chat.PostInThread(ctx, h.channel, threadID, text); err != nil {
		h.responder.loggerFor(ctx).WarnContext(ctx, "could not post duty change notification", "error", err)
	}
}
