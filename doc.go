// Package hitl lets orchestration workers pause until a human supplies a
// result: an approval decision for a plan, or an answer to a clarification
// question.
//
// Waiting never polls. A worker goroutine parks until the result is delivered
// or its timeout elapses, at which point it receives a fallback (a rejection
// for approvals, a proceed-on-your-own text for clarifications):
//
//	srv, _ := hitl.New(hitl.WithLogger(logger))
//	_ = srv.Start(ctx)
//	defer srv.Shutdown(ctx)
//
//	srv.MarkApprovalPending(ctx, planID)
//	// ... the transport layer relays the question to a human, who answers
//	// through srv.SetApprovalResult(ctx, planID, true)
//	approved, err := srv.WaitForApproval(ctx, planID, awaiter.WithTimeoutSec(30))
//	srv.CleanupApproval(ctx, planID)
//
// A result delivered before anybody waits is kept, so the order of delivery
// and wait does not matter. Slot lifecycle events can be consumed with
// Service.Subscribe; the service/awaiter package holds the underlying
// registry.
package hitl
