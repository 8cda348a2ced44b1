package memory

import (
	"context"
	"fmt"

	"cdr.dev/slog/v3"

	approval "github.com/viant/hitl/service/approval"
	"github.com/viant/hitl/service/awaiter"
)

type service struct {
	registry *awaiter.Registry[bool]
	logger   slog.Logger
}

// New creates an approval service backed by registry.
func New(registry *awaiter.Registry[bool], options ...Option) approval.Service {
	ret := &service{registry: registry}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) MarkPending(ctx context.Context, planID string) {
	s.registry.MarkPending(ctx, planID)
}

func (s *service) Wait(ctx context.Context, planID string, options ...awaiter.WaitOption) (*approval.Decision, error) {
	outcome := s.registry.Wait(ctx, planID, options...)
	decision := &approval.Decision{
		ID:        planID,
		Approved:  outcome.Resolved() && outcome.Value,
		Status:    outcome.Status,
		Waited:    outcome.Waited,
		DecidedAt: outcome.SettledAt,
	}
	if outcome.Err != nil {
		return decision, fmt.Errorf("failed to wait for plan %s approval: %w", planID, outcome.Err)
	}
	if decision.TimedOut() {
		s.logger.Info(ctx, "plan approval timed out, rejecting",
			slog.F("plan_id", planID),
			slog.F("waited", outcome.Waited))
	}
	return decision, nil
}

func (s *service) SetResult(ctx context.Context, planID string, approved bool) bool {
	accepted := s.registry.Deliver(ctx, planID, approved)
	if accepted {
		s.logger.Info(ctx, "plan decision recorded",
			slog.F("plan_id", planID),
			slog.F("approved", approved))
	}
	return accepted
}

func (s *service) Cleanup(ctx context.Context, planID string) {
	s.registry.Remove(ctx, planID)
}

var _ approval.Service = (*service)(nil)
