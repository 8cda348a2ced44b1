package hitl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/hitl/metrics"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/approval"
	memApproval "github.com/viant/hitl/service/approval/memory"
	"github.com/viant/hitl/service/awaiter"
	"github.com/viant/hitl/service/clarification"
	memClarification "github.com/viant/hitl/service/clarification/memory"
	"github.com/viant/hitl/service/event"
	"github.com/viant/hitl/tracing"
)

// ErrNotStarted is returned by Shutdown on a service that was never started.
var ErrNotStarted = errors.New("service not started")

// Service owns the approval and clarification registries. It is safe for
// concurrent use; create one per process and pass it to the workers.
type Service struct {
	config     *Config
	logger     slog.Logger
	clock      quartz.Clock
	registerer prometheus.Registerer
	observers  []event.Observer
	tracing    bool
	initErrs   []error

	publisher      *event.Publisher
	metrics        *metrics.Metrics
	approvalReg    *awaiter.Registry[bool]
	clarifyReg     *awaiter.Registry[string]
	approvals      approval.Service
	clarifications clarification.Service

	mux     sync.Mutex
	started bool
	janitor *awaiter.Janitor
	// decider is set while an unattended policy is active
	decider atomic.Pointer[event.Observer]
}

// New creates a Service; call Start to enable the janitor and the policy.
func New(options ...Option) (*Service, error) {
	s := &Service{logger: slog.Make(sloghuman.Sink(os.Stderr)).Leveled(slog.LevelInfo)}
	for _, option := range options {
		option(s)
	}
	if err := errors.Join(s.initErrs...); err != nil {
		return nil, fmt.Errorf("failed to initialise tracing: %w", err)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	s.publisher = event.NewPublisher(s.config.Events.Buffer, s.logger.Named("events"))
	observer := event.Observers(append(s.observers, s.observe, s.decide)...)

	registryOptions := []awaiter.Option{
		awaiter.WithDefaultTimeout(s.config.Timeout()),
		awaiter.WithClock(s.clock),
		awaiter.WithLogger(s.logger),
		awaiter.WithObserver(observer),
	}
	s.approvalReg = awaiter.New[bool](approval.Kind, registryOptions...)
	s.clarifyReg = awaiter.New[string](clarification.Kind, registryOptions...)
	s.approvals = memApproval.New(s.approvalReg, memApproval.WithLogger(s.logger.Named(approval.Kind)))
	s.clarifications = memClarification.New(s.clarifyReg,
		memClarification.WithFallback(s.config.Clarification.Fallback),
		memClarification.WithLogger(s.logger.Named(clarification.Kind)))

	if s.registerer != nil {
		m, err := metrics.New(s.registerer, s.approvalReg, s.clarifyReg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		s.metrics = m
	}
	return s, nil
}

func (s *Service) observe(ctx context.Context, e *event.Event) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, e)
	}
	s.publisher.Observe(ctx, e)
}

// Start launches the janitor and, for unattended policies, settles pending
// slots automatically from then on. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.started {
		return nil
	}
	s.started = true
	if !s.config.Janitor.Disabled {
		s.janitor = awaiter.NewJanitor(ctx, s.logger.Named("janitor"), s.clock,
			s.config.JanitorInterval(), s.config.JanitorRetention(),
			s.approvalReg, s.clarifyReg)
	}
	if p := policy.FromConfig(s.config.Policy); p.Unattended() {
		s.startPolicy(ctx, p)
	}
	s.logger.Info(ctx, "hitl service started",
		slog.F("timeout", s.config.Timeout()),
		slog.F("janitor", !s.config.Janitor.Disabled))
	return nil
}

func (s *Service) startPolicy(ctx context.Context, p *policy.Policy) {
	logger := s.logger.Named("policy")
	observers := []event.Observer{approval.Decider(s.approvals, func(r *approval.Request) (bool, bool) {
		verdict := p.Evaluate(r.ID)
		if verdict != policy.VerdictAsk {
			logger.Info(ctx, "plan decided by policy",
				slog.F("plan_id", r.ID),
				slog.F("verdict", verdict.String()))
		}
		return verdict == policy.VerdictApprove, verdict != policy.VerdictAsk
	}, logger)}
	if p.Mode == policy.ModeAuto || p.Mode == policy.ModeDeny {
		// nobody is around to answer, so clarifications get the fallback at once
		observers = append(observers, clarification.AutoAnswer(s.clarifications, s.config.Clarification.Fallback, logger))
	}
	decide := event.Observers(observers...)
	s.decider.Store(&decide)
}

// decide settles pending slots on behalf of an unattended policy. It runs
// synchronously inside MarkPending and Wait, after subscribers were notified.
func (s *Service) decide(ctx context.Context, e *event.Event) {
	if decide := s.decider.Load(); decide != nil {
		(*decide)(ctx, e)
	}
}

// Subscribe consumes slot lifecycle events on a dedicated goroutine until
// stop is called or ctx is done. Events are dropped for a subscriber whose
// queue is full, so handlers should be quick.
func (s *Service) Subscribe(ctx context.Context, name string, handler event.Handler) (stop func()) {
	listener := event.NewListener(s.publisher.Subscribe(name), handler, s.logger.Named("subscriber").With(slog.F("name", name)))
	listener.Start(ctx)
	var once sync.Once
	return func() {
		once.Do(func() {
			listener.Stop()
			s.publisher.Unsubscribe(name)
		})
	}
}

// Shutdown stops the janitor and the policy. Goroutines still waiting
// keep waiting until delivery or timeout.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	s.started = false
	s.decider.Store(nil)
	var errs []error
	if s.janitor != nil {
		errs = append(errs, s.janitor.Close())
		s.janitor = nil
	}
	if s.tracing {
		errs = append(errs, tracing.Shutdown(ctx))
	}
	s.logger.Info(ctx, "hitl service stopped")
	return errors.Join(errs...)
}

// Approvals returns the approval service.
func (s *Service) Approvals() approval.Service { return s.approvals }

// Clarifications returns the clarification service.
func (s *Service) Clarifications() clarification.Service { return s.clarifications }

// Registries exposes the underlying registries for diagnostics.
func (s *Service) Registries() (*awaiter.Registry[bool], *awaiter.Registry[string]) {
	return s.approvalReg, s.clarifyReg
}

// MarkApprovalPending announces that planID awaits a decision.
func (s *Service) MarkApprovalPending(ctx context.Context, planID string) {
	s.approvals.MarkPending(ctx, planID)
}

// WaitForApproval blocks until planID is decided and returns the decision;
// a plan that is not decided in time is rejected. An error is returned only
// when ctx ends before either happens.
func (s *Service) WaitForApproval(ctx context.Context, planID string, options ...awaiter.WaitOption) (bool, error) {
	decision, err := s.approvals.Wait(ctx, planID, options...)
	return decision.Approved, err
}

// SetApprovalResult records the decision for planID and reports whether it
// was accepted; a plan already decided or timed out keeps its first outcome.
func (s *Service) SetApprovalResult(ctx context.Context, planID string, approved bool) bool {
	return s.approvals.SetResult(ctx, planID, approved)
}

// CleanupApproval forgets planID. It never fails and never interrupts a
// goroutine that is still waiting.
func (s *Service) CleanupApproval(ctx context.Context, planID string) {
	s.approvals.Cleanup(ctx, planID)
}

// MarkClarificationPending announces that requestID awaits an answer.
func (s *Service) MarkClarificationPending(ctx context.Context, requestID string) {
	s.clarifications.MarkPending(ctx, requestID)
}

// WaitForClarification blocks until requestID is answered; without an
// answer in time it returns the configured fallback text.
func (s *Service) WaitForClarification(ctx context.Context, requestID string, options ...awaiter.WaitOption) (string, error) {
	answer, err := s.clarifications.Wait(ctx, requestID, options...)
	return answer.Text, err
}

// SetClarificationResult records the answer for requestID and reports
// whether it was accepted; a request already answered or timed out keeps its
// first outcome.
func (s *Service) SetClarificationResult(ctx context.Context, requestID string, answer string) bool {
	return s.clarifications.SetResult(ctx, requestID, answer)
}

// CleanupClarification forgets requestID. It never fails and never
// interrupts a goroutine that is still waiting.
func (s *Service) CleanupClarification(ctx context.Context, requestID string) {
	s.clarifications.Cleanup(ctx, requestID)
}
