package clarification

import (
	"context"

	"github.com/viant/hitl/service/awaiter"
)

// Service defines the clarification service interface.
type Service interface {
	// MarkPending announces that requestID awaits an answer.
	MarkPending(ctx context.Context, requestID string)
	// Wait blocks until an answer is recorded or the timeout elapses, in
	// which case the fallback text is returned. An error is returned only
	// when ctx ends first; the answer then still carries the fallback.
	Wait(ctx context.Context, requestID string, options ...awaiter.WaitOption) (*Answer, error)
	// SetResult records an answer and reports whether it was accepted.
	SetResult(ctx context.Context, requestID string, answer string) bool
	// Cleanup forgets requestID. Waiting goroutines are not interrupted.
	Cleanup(ctx context.Context, requestID string)
}
