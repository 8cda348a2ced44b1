package clarification

import (
	"context"

	"cdr.dev/slog/v3"

	"github.com/viant/hitl/service/event"
)

// AnswerFunc answers a pending request. Return (text, true) to record the
// answer, or ("", false) to leave the request to a human.
type AnswerFunc func(r *Request) (text string, answered bool)

// Responder returns an Observer that answers every clarification request
// with fn as it becomes pending, on the goroutine that marked it.
func Responder(svc Service, fn AnswerFunc, logger slog.Logger) event.Observer {
	return func(ctx context.Context, e *event.Event) {
		if e.Kind != Kind || e.Topic != event.TopicSlotPending {
			return
		}
		text, answered := fn(&Request{ID: e.Identity, RequestedAt: e.CreatedAt})
		if !answered {
			return
		}
		if !svc.SetResult(ctx, e.Identity, text) {
			logger.Debug(ctx, "clarification already answered", slog.F("request_id", e.Identity))
		}
	}
}

// AutoAnswer replies text to every pending request.
func AutoAnswer(svc Service, text string, logger slog.Logger) event.Observer {
	return Responder(svc, func(*Request) (string, bool) { return text, true }, logger)
}
