package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/example/routine-bot/internal/composer"
	"github.com/example/routine-bot/internal/testfixtures"
)

func postInteraction(t *testing.T, handler *InteractionHandler, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	form := url.Values{"payload": {string(encoded)}}
	req := httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.Receive(rec, req)
	return rec
}

func openModalPayload(messageTS string) map[string]any {
	return map[string]any{
		"type":       "block_actions",
		"trigger_id": "trigger-1",
		"user":       map[string]any{"id": "U000111"},
		"message":    map[string]any{"ts": messageTS},
		"actions":    []map[string]any{{"action_id": "open_task_completion_modal"}},
	}
}

func submitPayload(privateMetadata string, values ...string) map[string]any {
	options := make([]map[string]any, 0, len(values))
	for _, value := range values {
		options = append(options, map[string]any{"value": value})
	}
	return map[string]any{
		"type": "view_submission",
		"user": map[string]any{"id": "U000111"},
		"view": map[string]any{
			"callback_id":      "task_completion_submit",
			"private_metadata": privateMetadata,
			"state": map[string]any{
				"values": map[string]any{
					"task_selection": map[string]any{
						"selected_tasks": map[string]any{"selected_options": options},
					},
				},
			},
		},
	}
}

// modalOptionTexts digs the checkbox labels out of the recorded view.
func modalOptionTexts(t *testing.T, view any) []string {
	t.Helper()
	root, ok := view.(map[string]any)
	if !ok {
		t.Fatalf("view shape %T", view)
	}
	blocks := root["blocks"].([]map[string]any)
	options := blocks[1]["element"].(map[string]any)["options"].([]map[string]any)
	texts := make([]string, 0, len(options))
	for _, option := range options {
		texts = append(texts, option["text"].(map[string]any)["text"].(string))
	}
	return texts
}

func TestInteractionHandler_OpenModal(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h,
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskDeadline("11:00")),
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Backup")),
	)
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.production.Ledger.RecordCompletion(ctx, "Backup", "U000222", now); err != nil {
		t.Fatal(err)
	}

	rec := postInteraction(t, h.interactionHandler(t), openModalPayload("100.200"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if len(h.chat.views) != 1 {
		t.Fatalf("views = %d", len(h.chat.views))
	}
	opened := h.chat.views[0]
	if opened.triggerID != "trigger-1" {
		t.Errorf("trigger = %q", opened.triggerID)
	}

	texts := modalOptionTexts(t, opened.view)
	if len(texts) != 1 || texts[0] != "*Report* by 11:00" {
		t.Errorf("modal options = %v, completed tasks must be excluded", texts)
	}

	root := opened.view.(map[string]any)
	if root["private_metadata"] != "false" {
		t.Errorf("private_metadata = %v", root["private_metadata"])
	}
	title := root["title"].(map[string]any)["text"].(string)
	if strings.Contains(title, composer.DebugPrefix) {
		t.Errorf("production modal title carries debug prefix: %q", title)
	}
}

func TestInteractionHandler_OpenModal_AllDone(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.production.Ledger.RecordCompletion(ctx, "Report", "U000222", now); err != nil {
		t.Fatal(err)
	}

	postInteraction(t, h.interactionHandler(t), openModalPayload("100.200"))

	texts := modalOptionTexts(t, h.chat.views[0].view)
	if len(texts) != 1 || texts[0] != "All tasks already completed ✓" {
		t.Errorf("modal options = %v", texts)
	}
}

func TestInteractionHandler_OpenModal_DebugThread(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()

	if err := h.debug.Ledger.EnsureThread(ctx, testfixtures.ReferenceTime(), "900.800"); err != nil {
		t.Fatal(err)
	}

	postInteraction(t, h.interactionHandler(t), openModalPayload("900.800"))

	root := h.chat.views[0].view.(map[string]any)
	if root["private_metadata"] != "true" {
		t.Errorf("private_metadata = %v", root["private_metadata"])
	}
	title := root["title"].(map[string]any)["text"].(string)
	if !strings.HasPrefix(title, composer.DebugPrefix) {
		t.Errorf("debug modal title = %q", title)
	}
}

func TestInteractionHandler_Submit(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h,
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskDeadline("08:30")),
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Backup")),
	)
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}

	postInteraction(t, h.interactionHandler(t), submitPayload("false", "REPORT", "BACKUP"))

	completed, err := h.production.Ledger.CompletedTasks(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"REPORT", "BACKUP"} {
		if completed[key].User != "U000111" {
			t.Errorf("completion %s = %+v", key, completed[key])
		}
	}

	reply := h.chat.lastReply(t)
	if reply.threadID != "100.200" {
		t.Errorf("confirmation thread = %q", reply.threadID)
	}
	if !strings.Contains(reply.text, "<@U000111> marked as completed tasks:") {
		t.Errorf("confirmation = %q", reply.text)
	}
	if !strings.Contains(reply.text, "⚠️ *Completed with delay:*") || !strings.Contains(reply.text, "REPORT (delay: 30 min)") {
		t.Errorf("late section = %q", reply.text)
	}
}

func TestInteractionHandler_Submit_SkipsFailures(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.production.Ledger.RecordCompletion(ctx, "Report", "U000222", now); err != nil {
		t.Fatal(err)
	}

	// Both selections fail: one is a duplicate, one is unknown. No
	// confirmation is posted.
	postInteraction(t, h.interactionHandler(t), submitPayload("false", "REPORT", "LAUNDRY"))

	if len(h.chat.replies) != 0 {
		t.Errorf("replies = %v", h.chat.replies)
	}
}

func TestInteractionHandler_Submit_NoneSentinel(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))

	postInteraction(t, h.interactionHandler(t), submitPayload("false", "none"))

	if len(h.chat.replies) != 0 {
		t.Errorf("placeholder selection posted a reply: %v", h.chat.replies)
	}
}

func TestInteractionHandler_Submit_DebugMode(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.debug.Ledger.EnsureThread(ctx, now, "900.800"); err != nil {
		t.Fatal(err)
	}

	postInteraction(t, h.interactionHandler(t), submitPayload("true", "REPORT"))

	debugCompleted, err := h.debug.Ledger.CompletedTasks(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := debugCompleted["REPORT"]; !ok {
		t.Error("debug ledger missing completion")
	}

	reply := h.chat.lastReply(t)
	if reply.threadID != "900.800" {
		t.Errorf("confirmation thread = %q", reply.threadID)
	}
	if !strings.HasPrefix(reply.text, composer.DebugPrefix) {
		t.Errorf("debug confirmation not prefixed: %q", reply.text)
	}
}
