package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/routine-bot/internal/composer"
	"github.com/example/routine-bot/internal/persistence"
	"github.com/example/routine-bot/internal/testfixtures"
)

func postEvent(t *testing.T, handler *EventHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Receive(rec, req)
	return rec
}

func mentionEvent(user, text, ts, threadTS string) string {
	body, _ := json.Marshal(map[string]any{
		"type": "event_callback",
		"event": map[string]any{
			"type":      "app_mention",
			"user":      user,
			"text":      text,
			"channel":   testChannel,
			"ts":        ts,
			"thread_ts": threadTS,
		},
	})
	return string(body)
}

func seedTask(t *testing.T, h *transportHarness, records ...persistence.TaskRecord) {
	t.Helper()
	if err := h.store.SaveTaskBase(context.Background(), records); err != nil {
		t.Fatal(err)
	}
}

func TestEventHandler_URLVerification(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	rec := postEvent(t, h.eventHandler(t), `{"type": "url_verification", "challenge": "abc123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var reply map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if reply["challenge"] != "abc123" {
		t.Fatalf("challenge echo = %q", reply["challenge"])
	}
}

func TestEventHandler_MalformedBody(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	rec := postEvent(t, h.eventHandler(t), "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEventHandler_CompletionMention(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}

	rec := postEvent(t, h.eventHandler(t), mentionEvent("U000111", "<@UBOT> Report done", "100.300", "100.200"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if len(h.chat.reactions) != 1 {
		t.Fatalf("reactions = %v", h.chat.reactions)
	}
	got := h.chat.reactions[0]
	if got.name != "white_check_mark" || got.ts != "100.300" {
		t.Errorf("reaction = %+v", got)
	}

	completed, err := h.production.Ledger.CompletedTasks(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if completed["REPORT"].User != "U000111" {
		t.Errorf("ledger record = %+v", completed["REPORT"])
	}
}

func TestEventHandler_LateCompletionMention(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskDeadline("08:30")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime() // 09:00, thirty minutes past deadline

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "Report done", "100.300", "100.200"))

	reply := h.chat.lastReply(t)
	if reply.threadID != "100.200" {
		t.Errorf("reply thread = %q", reply.threadID)
	}
	want := "⚠️ Report marked as completed (delay: 30 min)"
	if !strings.Contains(reply.text, want) {
		t.Errorf("reply %q missing %q", reply.text, want)
	}
	if len(h.chat.reactions) != 0 {
		t.Error("late completion should reply in thread, not react")
	}
}

func TestEventHandler_UnknownTaskMention(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()

	if err := h.production.Ledger.EnsureThread(ctx, testfixtures.ReferenceTime(), "100.200"); err != nil {
		t.Fatal(err)
	}

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "Laundry done", "100.300", "100.200"))

	reply := h.chat.lastReply(t)
	if !strings.Contains(reply.text, "I didn't understand which task") {
		t.Errorf("reply = %q", reply.text)
	}
}

func TestEventHandler_DuplicateMention(t *testing.T) {
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

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "Report done", "100.300", "100.200"))

	reply := h.chat.lastReply(t)
	if !strings.Contains(reply.text, "already marked as completed earlier") {
		t.Errorf("reply = %q", reply.text)
	}
}

func TestEventHandler_MentionOutsideThread(t *testing.T) {
	t.Parallel()

	// A top-level mention still lands in the production ledger and the reply
	// is redirected into the active production thread.
	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "Laundry done", "100.300", ""))

	reply := h.chat.lastReply(t)
	if reply.threadID != "100.200" {
		t.Errorf("reply thread = %q, want the production thread", reply.threadID)
	}
}

func TestEventHandler_DebugThreadCompletion(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	if err := h.production.Ledger.EnsureThread(ctx, now, "100.200"); err != nil {
		t.Fatal(err)
	}
	if err := h.debug.Ledger.EnsureThread(ctx, now, "900.800"); err != nil {
		t.Fatal(err)
	}

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "Report done", "900.900", "900.800"))

	// The completion lands in the debug ledger only.
	debugCompleted, err := h.debug.Ledger.CompletedTasks(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := debugCompleted["REPORT"]; !ok {
		t.Error("debug ledger missing the completion")
	}
	prodCompleted, err := h.production.Ledger.CompletedTasks(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(prodCompleted) != 0 {
		t.Errorf("production ledger polluted: %v", prodCompleted)
	}
}

func TestEventHandler_DebugCommand(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "<@UBOT> debug", "100.300", ""))

	if len(h.chat.messages) != 1 {
		t.Fatalf("messages = %v", h.chat.messages)
	}
	if !strings.HasPrefix(h.chat.messages[0].text, composer.DebugPrefix) {
		t.Errorf("debug post not prefixed: %q", h.chat.messages[0].text)
	}
	if len(h.chat.pins) != 0 {
		t.Error("daily debug message should not be pinned")
	}

	reply := h.chat.lastReply(t)
	if reply.threadID != "1000.0001" {
		t.Errorf("confirmation thread = %q", reply.threadID)
	}
	if !strings.Contains(reply.text, "sent debug message: daily (today)") {
		t.Errorf("confirmation = %q", reply.text)
	}

	// The debug thread is now tracked for follow-up completions.
	id, err := h.debug.Ledger.ThreadID(context.Background(), testfixtures.ReferenceTime())
	if err != nil {
		t.Fatal(err)
	}
	if id != "1000.0001" {
		t.Errorf("debug thread = %q", id)
	}
}

func TestEventHandler_DebugCommandWeekly(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "debug monday", "100.300", ""))

	if len(h.chat.messages) != 1 {
		t.Fatalf("messages = %v", h.chat.messages)
	}
	if !strings.Contains(h.chat.messages[0].text, "📅 Week 02/06 - 06/06") {
		t.Errorf("weekly banner missing: %q", h.chat.messages[0].text)
	}
	if len(h.chat.pins) != 1 || h.chat.pins[0] != "1000.0001" {
		t.Errorf("pins = %v", h.chat.pins)
	}
	if !strings.Contains(h.chat.lastReply(t).text, "sent debug message: weekly (Monday)") {
		t.Errorf("confirmation = %q", h.chat.lastReply(t).text)
	}
}

func TestEventHandler_DebugCommandWeekday(t *testing.T) {
	t.Parallel()

	h := newTransportHarness(t)
	seedTask(t, h,
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Midweek sync"), testfixtures.WithTaskDays("wednesday")),
	)

	postEvent(t, h.eventHandler(t), mentionEvent("U000111", "debug wednesday", "100.300", ""))

	if len(h.chat.messages) != 1 {
		t.Fatalf("messages = %v", h.chat.messages)
	}
	if !strings.Contains(h.chat.messages[0].text, "Midweek sync") {
		t.Errorf("simulated Wednesday missing its task: %q", h.chat.messages[0].text)
	}
	if !strings.Contains(h.chat.lastReply(t).text, "daily (Wednesday)") {
		t.Errorf("confirmation = %q", h.chat.lastReply(t).text)
	}
}

func TestEventHandler_RepeatedDebugCommand(t *testing.T) {
	t.Parallel()

	// A second debug post the same day keeps the original thread but still
	// posts the message.
	h := newTransportHarness(t)
	seedTask(t, h, testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")))
	handler := h.eventHandler(t)

	postEvent(t, handler, mentionEvent("U000111", "debug", "100.300", ""))
	h.chat.nextTS = "2000.0002"
	postEvent(t, handler, mentionEvent("U000111", "debug", "100.400", ""))

	if len(h.chat.messages) != 2 {
		t.Fatalf("messages = %d", len(h.chat.messages))
	}
	id, err := h.debug.Ledger.ThreadID(context.Background(), testfixtures.ReferenceTime())
	if err != nil {
		t.Fatal(err)
	}
	if id != "1000.0001" {
		t.Errorf("debug thread redirected to %q", id)
	}
}

func TestFormatDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minutes int
		want    string
	}{
		{5, "5 min"},
		{59, "59 min"},
		{60, "1h 0min"},
		{95, "1h 35min"},
		{125, "2h 5min"},
	}
	for _, tc := range cases {
		got := formatDelay(time.Duration(tc.minutes) * time.Minute)
		if got != tc.want {
			t.Errorf("formatDelay(%d min) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}
