package approval

import (
	"context"

	"github.com/viant/hitl/service/awaiter"
)

// Service defines the approval service interface.
type Service interface {
	// MarkPending announces that planID awaits a decision.
	MarkPending(ctx context.Context, planID string)
	// Wait blocks until a decision is recorded or the timeout elapses, in
	// which case the plan is rejected. An error is returned only when ctx
	// ends first; the decision then still carries the rejection.
	Wait(ctx context.Context, planID string, options ...awaiter.WaitOption) (*Decision, error)
	// SetResult records a decision and reports whether it was accepted.
	SetResult(ctx context.Context, planID string, approved bool) bool
	// Cleanup forgets planID. Waiting goroutines are not interrupted.
	Cleanup(ctx context.Context, planID string)
}
