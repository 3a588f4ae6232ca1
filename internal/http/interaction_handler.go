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
)

const (
	actionOpenCompletionModal = "open_task_completion_modal"
	callbackCompletionSubmit  = "task_completion_submit"
)

// InteractionHandler processes interactive payloads: the checklist modal
// open action and its submission.
type InteractionHandler struct {
	production Engine
	debug      Engine
	catalog    application.CatalogSource
	chat       chat.Client
	cal        calendar.Calendar
	channel    string
	now        func() time.Time
	responder  responder
}

func NewInteractionHandler(production, debug Engine, catalogSource application.CatalogSource, chatClient chat.Client, cal calendar.Calendar, channel string, now func() time.Time, logger *slog.Logger) *InteractionHandler {
	if now == nil {
		now = time.Now
	}
	return &InteractionHandler{
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

type interactionPayload struct {
	Type      string `json:"type"`
	TriggerID string `json:"trigger_id"`
	User      struct {
		ID string `json:"id"`
	} `json:"user"`
	Message struct {
		TS string `json:"ts"`
	} `json:"message"`
	Actions []struct {
		ActionID string `json:"action_id"`
	} `json:"actions"`
	View struct {
		CallbackID      string `json:"callback_id"`
		PrivateMetadata string `json:"private_metadata"`
		State           struct {
			Values map[string]map[string]struct {
				SelectedOptions []struct {
					Value string `json:"value"`
				} `json:"selected_options"`
			} `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

func (h *InteractionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.chat == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var payload interactionPayload
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &payload); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	ctx := r.Context()
	switch payload.Type {
	case "block_actions":
		for _, action := range payload.Actions {
			if action.ActionID == actionOpenCompletionModal {
				h.openCompletionModal(ctx, payload)
				break
			}
		}
	case "view_submission":
		if payload.View.CallbackID == callbackCompletionSubmit {
			h.submitCompletions(ctx, payload)
		}
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, nil)
}

// openCompletionModal shows a checkbox list of today's still-open tasks. The
// operating mode travels through private_metadata to the submission handler.
func (h *InteractionHandler) openCompletionModal(ctx context.Context, payload interactionPayload) {
	logger := h.responder.loggerFor(ctx)
	now := h.now().In(h.cal.Location())

	engine := h.production
	debugThread, _ := h.debug.Ledger.ThreadID(ctx, now)
	if payload.Message.TS != "" && payload.Message.TS == debugThread {
		engine = h.debug
	}

	cat, err := h.catalog.Snapshot(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "catalog snapshot failed", "error", err)
		return
	}
	completed, err := engine.Ledger.CompletedTasks(ctx, now)
	if err != nil {
		logger.ErrorContext(ctx, "completed tasks lookup failed", "error", err)
		return
	}

	options := make([]map[string]any, 0)
	for _, task := range cat.TasksFor(now, h.cal) {
		key := strings.ToUpper(task.Name)
		if _, done := completed[key]; done {
			continue
		}
		display := fmt.Sprintf("*%s*", task.Name)
		if task.Deadline != nil {
			display = fmt.Sprintf("*%s* by %s", task.Name, task.Deadline)
		}
		options = append(options, map[string]any{
			"text":  map[string]any{"type": "mrkdwn", "text": display},
			"value": key,
		})
	}
	if len(options) == 0 {
		options = append(options, map[string]any{
			"text":  map[string]any{"type": "plain_text", "text": "All tasks already completed ✓"},
			"value": "none",
		})
	}

	title := "Mark tasks"
	if engine.Ledger.Mode().IsDebug() {
		title = composer.DebugPrefix + title
	}
	view := map[string]any{
		"type":             "modal",
		"callback_id":      callbackCompletionSubmit,
		"title":            map[string]any{"type": "plain_text", "text": title},
		"submit":           map[string]any{"type": "plain_text", "text": "Done"},
		"close":            map[string]any{"type": "plain_text", "text": "Cancel"},
		"private_metadata": fmt.Sprintf("%t", engine.Ledger.Mode().IsDebug()),
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": "Select completed tasks:"},
			},
			{
				"type":     "input",
				"block_id": "task_selection",
				"optional": true,
				"element": map[string]any{
					"type":      "checkboxes",
					"action_id": "selected_tasks",
					"options":   options,
				},
				"label": map[string]any{"type": "plain_text", "text": "Tasks"},
			},
		},
	}

	if err := h.chat.OpenView(ctx, payload.TriggerID, view); err != nil {
		logger.ErrorContext(ctx, "could not open modal", "error", err)
	}
}

// submitCompletions records every selected task and posts one confirmation
// in the active thread, with a late section for tasks past their deadline.
func (h *InteractionHandler) submitCompletions(ctx context.Context, payload interactionPayload) {
	logger := h.responder.loggerFor(ctx)
	now := h.now().In(h.cal.Location())

	engine := h.production
	if payload.View.PrivateMetadata == "true" {
		engine = h.debug
	}

	selected := make([]string, 0)
	if block, ok := payload.View.State.Values["task_selection"]; ok {
		for _, option := range block["selected_tasks"].SelectedOptions {
			if option.Value != "none" {
				selected = append(selected, option.Value)
			}
		}
	}
	if len(selected) == 0 {
		return
	}

	cat, err := h.catalog.Snapshot(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "catalog snapshot failed", "error", err)
		return
	}

	var completed, late []string
	for _, name := range selected {
		if _, err := engine.Ledger.RecordCompletion(ctx, name, payload.User.ID, now); err != nil {
			logger.WarnContext(ctx, "modal completion declined", "task", name, "error", err)
			continue
		}
		completed = append(completed, name)

		if task, ok := cat.ByName(name); ok {
			if delay, isLate := engine.Ledger.Delay(task, now); isLate {
				late = append(late, fmt.Sprintf("• %s (delay: %s)", name, formatDelay(delay)))
			}
		}
	}
	if len(completed) == 0 {
		return
	}

	threadID, err := engine.Ledger.ThreadID(ctx, now)
	if err != nil || threadID == "" {
		return
	}

	prefix := ""
	if engine.Ledger.Mode().IsDebug() {
		prefix = composer.DebugPrefix
	}
	confirmation := fmt.Sprintf("%s<@%s> marked as completed tasks:\n• %s ✅", prefix, payload.User.ID, strings.Join(completed, "\n• "))
	if len(late) > 0 {
		confirmation += "\n\n⚠️ *Completed with delay:*\n" + strings.Join(late, "\n")
	}

	if err := h.chat.PostInThread(ctx, h.channel, threadID, confirmation); err != nil {
		logger.ErrorContext(ctx, "confirmation reply failed", "error", err)
	}
}
