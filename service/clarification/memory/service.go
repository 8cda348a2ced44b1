package memory

import (
	"context"
	"fmt"

	"cdr.dev/slog/v3"

	"github.com/viant/hitl/service/awaiter"
	clarification "github.com/viant/hitl/service/clarification"
)

type service struct {
	registry *awaiter.Registry[string]
	fallback string
	logger   slog.Logger
}

// New creates a clarification service backed by registry.
func New(registry *awaiter.Registry[string], options ...Option) clarification.Service {
	ret := &service{registry: registry, fallback: clarification.DefaultFallback}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) MarkPending(ctx context.Context, requestID string) {
	s.registry.MarkPending(ctx, requestID)
}

func (s *service) Wait(ctx context.Context, requestID string, options ...awaiter.WaitOption) (*clarification.Answer, error) {
	outcome := s.registry.Wait(ctx, requestID, options...)
	answer := &clarification.Answer{
		ID:         requestID,
		Text:       outcome.Value,
		Status:     outcome.Status,
		Waited:     outcome.Waited,
		AnsweredAt: outcome.SettledAt,
	}
	if !outcome.Resolved() {
		answer.Text = s.fallback
	}
	if outcome.Err != nil {
		return answer, fmt.Errorf("failed to wait for clarification %s: %w", requestID, outcome.Err)
	}
	if answer.TimedOut() {
		s.logger.Info(ctx, "clarification timed out, using fallback",
			slog.F("request_id", requestID),
			slog.F("waited", outcome.Waited))
	}
	return answer, nil
}

func (s *service) SetResult(ctx context.Context, requestID string, answer string) bool {
	accepted := s.registry.Deliver(ctx, requestID, answer)
	if accepted {
		s.logger.Info(ctx, "clarification answered", slog.F("request_id", requestID))
	}
	return accepted
}

func (s *service) Cleanup(ctx context.Context, requestID string) {
	s.registry.Remove(ctx, requestID)
}

var _ clarification.Service = (*service)(nil)
