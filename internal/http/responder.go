package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/routine-bot/internal/application"
)

var errBadRequestBody = errors.New("invalid request format")

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeText sends a plain text body with 200, the shape Slack expects for
// in-channel command responses.
func (r responder) writeText(ctx context.Context, w http.ResponseWriter, text string) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	Message string `json:"message"`
}

// outcomeText maps a declined-operation sentinel to the reply shown in the
// channel. Unexpected errors get a generic line so internals never leak.
func outcomeText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, application.ErrAlreadyCompleted):
		return "This task was already marked as completed earlier."
	case errors.Is(err, application.ErrUnknownTask):
		return "I didn't understand which task you're referring to 🤔. Try writing, for example: `@bot LPB done`"
	case errors.Is(err, application.ErrStaleState):
		return "Old state - new morning, no active thread."
	case errors.Is(err, application.ErrNotEligible):
		return fmt.Sprintf("❌ %s", err)
	default:
		return "Error processing command"
	}
}
