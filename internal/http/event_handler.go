package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/application"
	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/chat"
	"github.com/example/routine-bot/internal/composer"
	"github.com/example/routine-bot/internal/matcher"
)

// Engine bundles the per-mode services a handler switches between. The two
// operating modes are two parameterized instances of the same types.
type Engine struct {
	Ledger   *application.LedgerService
	Schedule *application.ScheduleService
}

// EventHandler processes channel mention events: debug posting commands and
// free-text task completions.
type EventHandler struct {
	production Engine
	debug      Engine
	catalog    application.CatalogSource
	chat       chat.Client
	cal        calendar.Calendar
	channel    string
	now        func() time.Time
	responder  responder
}

func NewEventHandler(production, debug Engine, catalogSource application.CatalogSource, chatClient chat.Client, cal calendar.Calendar, channel string, now func() time.Time, logger *slog.Logger) *EventHandler {
	if now == nil {
		now = time.Now
	}
	return &EventHandler{
		production: production,
		debug:      debug,
		catalog:    catalogSource,
		chat:       chatClient,
		cal:        cal,
		channel:    channel,
		now:        now,
		responder:  newResponder(logger),
	}
}

type eventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type     string `json:"type"`
		User     string `json:"user"`
		Text     string `json:"text"`
		Channel  string `json:"channel"`
		TS       string `json:"ts"`
		ThreadTS string `json:"thread_ts"`
	} `json:"event"`
}

func (h *EventHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.chat == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var envelope eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	switch envelope.Type {
	case "url_verification":
		h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"challenge": envelope.Challenge})
		return
	case "event_callback":
		if envelope.Event.Type == "app_mention" {
			h.handleMention(r.Context(), envelope)
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, nil)
		return
	default:
		h.responder.writeJSON(r.Context(), w, http.StatusOK, nil)
	}
}

func (h *EventHandler) handleMention(ctx context.Context, envelope eventEnvelope) {
	logger := h.responder.loggerFor(ctx)
	event := envelope.Event
	now := h.now().In(h.cal.Location())

	if strings.Contains(strings.ToLower(event.Text), "debug") {
		h.handleDebugCommand(ctx, event.User, event.Text, event.ThreadTS, now)
		return
	}

	engine := h.production
	replyThread := event.ThreadTS

	prodThread, _ := h.production.Ledger.ThreadID(ctx, now)
	debugThread, _ := h.debug.Ledger.ThreadID(ctx, now)
	switch {
	case event.ThreadTS != "" && event.ThreadTS == debugThread:
		engine = h.debug
	case event.ThreadTS != "" && event.ThreadTS == prodThread:
		// production thread, default engine
	default:
		if prodThread != "" {
			replyThread = prodThread
		}
	}
	if replyThread == "" {
		replyThread = event.TS
	}

	prefix := ""
	if engine.Ledger.Mode().IsDebug() {
		prefix = composer.DebugPrefix
	}

	cat, err := h.catalog.Snapshot(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "catalog snapshot failed", "error", err)
		h.reply(ctx, replyThread, fmt.Sprintf("%s<@%s> %s", prefix, event.User, outcomeText(err)))
		return
	}

	task, ok := matcher.Match(cat, event.Text)
	if !ok {
		h.reply(ctx, replyThread, fmt.Sprintf("%s<@%s> %s", prefix, event.User, outcomeText(application.ErrUnknownTask)))
		return
	}

	if _, err := engine.Ledger.RecordCompletion(ctx, task.Name, event.User, now); err != nil {
		h.reply(ctx, replyThread, fmt.Sprintf("%s<@%s> %s", prefix, event.User, outcomeText(err)))
		return
	}

	if delay, late := engine.Ledger.Delay(task, now); late {
		h.reply(ctx, replyThread, fmt.Sprintf("%s<@%s> ⚠️ %s marked as completed (delay: %s)", prefix, event.User, task.Name, formatDelay(delay)))
		return
	}

	if err := h.chat.AddReaction(ctx, event.Channel, event.TS, "white_check_mark"); err != nil {
		logger.WarnContext(ctx, "could not add reaction", "error", err)
	}
}

// handleDebugCommand posts a simulated schedule message with the debug
// engine. An optional weekday name in the command picks the simulated day;
// "monday" or "weekly" produces the weekly shape.
func (h *EventHandler) handleDebugCommand(ctx context.Context, user, text, originThread string, now time.Time) {
	logger := h.responder.loggerFor(ctx)
	lowered := strings.ToLower(text)

	weekly := strings.Contains(lowered, "monday") || strings.Contains(lowered, "weekly")
	target := now
	label := "daily (today)"
	for offset, name := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		if strings.Contains(lowered, name) {
			target = h.cal.MondayOf(now).AddDate(0, 0, offset)
			label = fmt.Sprintf("daily (%s)", h.cal.WeekdayName(target))
			break
		}
	}
	if weekly {
		label = "weekly (Monday)"
	}

	var message string
	var err error
	if weekly {
		message, err = h.debug.Schedule.ComposeWeekly(ctx, target)
	} else {
		message, err = h.debug.Schedule.ComposeDaily(ctx, target)
	}
	if err != nil {
		logger.ErrorContext(ctx, "debug compose failed", "error", err)
		h.reply(ctx, originThread, fmt.Sprintf("<@%s> ❌ Error sending debug message", user))
		return
	}

	ts, err := h.chat.PostMessage(ctx, h.channel, message)
	if err != nil {
		logger.ErrorContext(ctx, "debug post failed", "error", err)
		h.reply(ctx, originThread, fmt.Sprintf("<@%s> ❌ Error sending debug message", user))
		return
	}

	if err := h.debug.Ledger.EnsureThread(ctx, now, ts); err != nil {
		logger.WarnContext(ctx, "could not record debug thread", "error", err)
	}

	if weekly {
		if err := h.chat.PinMessage(ctx, h.channel, ts); err != nil {
			logger.WarnContext(ctx, "could not pin debug message", "error", err)
		}
	}

	h.reply(ctx, ts, fmt.Sprintf("<@%s> sent debug message: %s", user, label))
}

func (h *EventHandler) reply(ctx context.Context, threadID, text string) {
	if err := h.chat.PostInThread(ctx, h.channel, threadID, text); err != nil {
		h.responder.loggerFor(ctx).ErrorContext(ctx, "thread reply failed", "error", err)
	}
}

func formatDelay(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}
