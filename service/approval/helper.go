package approval

import (
	"context"

	"cdr.dev/slog/v3"

	"github.com/viant/hitl/service/event"
)

// DecisionFunc decides what to do with a pending request.
// Return (approved, true) to record a decision, or (_, false) to leave the
// request to a human.
type DecisionFunc func(r *Request) (approved bool, decided bool)

// Decider returns an Observer that applies fn to every plan as it becomes
// pending. It runs synchronously on the goroutine that marked the plan, so
// no pending plan can be missed; attach it with awaiter.WithObserver.
func Decider(svc Service, fn DecisionFunc, logger slog.Logger) event.Observer {
	return func(ctx context.Context, e *event.Event) {
		if e.Kind != Kind || e.Topic != event.TopicSlotPending {
			return
		}
		approved, decided := fn(&Request{ID: e.Identity, RequestedAt: e.CreatedAt})
		if !decided {
			return
		}
		if !svc.SetResult(ctx, e.Identity, approved) {
			logger.Debug(ctx, "plan already decided", slog.F("plan_id", e.Identity))
		}
	}
}

// AutoApprove approves every plan as soon as it is pending.
func AutoApprove(svc Service, logger slog.Logger) event.Observer {
	return Decider(svc, func(*Request) (bool, bool) { return true, true }, logger)
}

// AutoReject rejects every plan as soon as it is pending.
func AutoReject(svc Service, logger slog.Logger) event.Observer {
	return Decider(svc, func(*Request) (bool, bool) { return false, true }, logger)
}
